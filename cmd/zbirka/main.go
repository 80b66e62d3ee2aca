package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/zbirka/internal/api"
	"github.com/erazemk/zbirka/internal/auth"
	"github.com/erazemk/zbirka/internal/config"
	"github.com/erazemk/zbirka/internal/db"
	"github.com/erazemk/zbirka/internal/game"
	"github.com/erazemk/zbirka/internal/generator"
	"github.com/erazemk/zbirka/internal/housekeeping"
	"github.com/erazemk/zbirka/internal/store"
	"github.com/erazemk/zbirka/internal/web"
)

func main() {
	fs := flag.NewFlagSet("zbirka", flag.ContinueOnError)

	var configFile string
	fs.StringVar(&configFile, "config", "", "")
	fs.StringVar(&configFile, "c", "", "")

	var envPath string
	fs.StringVar(&envPath, "env", "", "")
	fs.StringVar(&envPath, "e", "", "")

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var addr string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: zbirka [flags]

Flags:
  -c, -config <path>      YAML config file (default: ./config.yaml if present)
  -e, -env <dir>          directory holding .env and .env.local (default: .)
  -d, -db <path>          SQLite database path (default: zbirka.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Every setting can also be given as a ZBIRKA_* environment variable,
e.g. ZBIRKA_GENERATOR_TOKEN.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configFile, envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Flags win over the config file and environment.
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if logPath != "" {
		cfg.Log.Path = logPath
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(1)
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(cfg.Log.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg); err != nil {
		slog.Error("zbirka stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	slog.Info("database ready", "path", cfg.Database.Path)

	if err := ensurePassphrase(ctx, database); err != nil {
		return err
	}
	if err := store.InitBalance(ctx, database, cfg.Game.InitialBalance); err != nil {
		return err
	}

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	client := generator.New(cfg.Generator.BaseURL, cfg.Generator.Token,
		generator.WithTimeout(cfg.Generator.Timeout))
	coordinator := game.New(store.NewLocal(database), client, cfg.Game.Cost)
	if err := coordinator.Load(ctx); err != nil {
		return err
	}
	state := coordinator.State()
	slog.Info("game loaded", "balance", state.Balance, "pokemon", len(state.Collection),
		"score", state.Score, "generator", cfg.Generator.BaseURL)

	scheduler := housekeeping.New(database)
	if err := scheduler.Register(cfg.Housekeeping.Schedule); err != nil {
		return err
	}
	scheduler.Start()

	// Set up routers.
	apiRouter := api.NewRouter(database, jwtSecret, coordinator)
	webRouter, err := web.NewRouter(database, jwtSecret, coordinator)
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// Combine: API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Generate responses wait for the generator.
		WriteTimeout: cfg.Generator.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
	}

	slog.Info("server started", "addr", ln.Addr().String())
	// In-flight generations may need the full generator timeout to settle.
	if err := serve(server, ln, quit, cfg.Generator.Timeout+5*time.Second, scheduler.Stop); err != nil {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}

// serve runs server on ln until a signal arrives on quit, then shuts it down. It
// returns only after in-flight requests have finished (or grace ran out) and
// stop has been called, so the caller can safely close the database.
func serve(server *http.Server, ln net.Listener, quit <-chan os.Signal, grace time.Duration, stop func(context.Context)) error {
	done := make(chan struct{})
	go func() {
		defer close(done)

		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
		stop(ctx)
	}()

	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	<-done
	return nil
}

// ensurePassphrase creates the player passphrase on first run and prints it once.
func ensurePassphrase(ctx context.Context, database *sql.DB) error {
	_, err := store.GetSetting(ctx, database, store.SettingPassphraseHash)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	passphrase, err := auth.GeneratePassphrase(4)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassphrase(passphrase)
	if err != nil {
		return err
	}
	if err := store.SetSetting(ctx, database, store.SettingPassphraseHash, hash); err != nil {
		return err
	}

	printPassphrase(passphrase)
	return nil
}

// printPassphrase prints the first-run passphrase to stdout.
func printPassphrase(passphrase string) {
	fmt.Println("Player passphrase created:")
	fmt.Printf("  %s\n", passphrase)
	fmt.Println()
	fmt.Println("Save this passphrase, it cannot be recovered.")
	fmt.Println("It can be changed after logging in.")
	fmt.Println()
}
