package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.Server.Addr)
	}
	if cfg.Database.Path != "zbirka.sqlite3" {
		t.Errorf("expected zbirka.sqlite3, got %q", cfg.Database.Path)
	}
	if cfg.Generator.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.Generator.Timeout)
	}
	if cfg.Game.Cost != 10 || cfg.Game.InitialBalance != 100 {
		t.Errorf("unexpected game defaults: %+v", cfg.Game)
	}
	if cfg.Housekeeping.Schedule != "@every 1h" {
		t.Errorf("unexpected schedule %q", cfg.Housekeeping.Schedule)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "zbirka.yaml", `
server:
  addr: ":9999"
generator:
  base_url: "https://gen.example.com"
  token: "file-token"
  timeout: "5s"
game:
  cost: 15
`)

	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":9999" {
		t.Errorf("expected :9999, got %q", cfg.Server.Addr)
	}
	if cfg.Generator.BaseURL != "https://gen.example.com" || cfg.Generator.Token != "file-token" {
		t.Errorf("unexpected generator config: %+v", cfg.Generator)
	}
	if cfg.Generator.Timeout != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.Generator.Timeout)
	}
	if cfg.Game.Cost != 15 {
		t.Errorf("expected cost 15, got %d", cfg.Game.Cost)
	}
	// Unset keys keep their defaults.
	if cfg.Game.InitialBalance != 100 {
		t.Errorf("expected initial balance 100, got %d", cfg.Game.InitialBalance)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "zbirka.yaml", "generator:\n  token: \"file-token\"\n")
	t.Setenv("ZBIRKA_GENERATOR_TOKEN", "env-token")
	t.Setenv("ZBIRKA_GAME_INITIAL_BALANCE", "250")

	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generator.Token != "env-token" {
		t.Errorf("expected env to override file, got %q", cfg.Generator.Token)
	}
	if cfg.Game.InitialBalance != 250 {
		t.Errorf("expected 250, got %d", cfg.Game.InitialBalance)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "ZBIRKA_GAME_COST=20\nZBIRKA_DATABASE_PATH=base.sqlite3\n")
	writeFile(t, dir, ".env.local", "ZBIRKA_DATABASE_PATH=local.sqlite3\n")

	// Registers cleanup for the variables the .env files set.
	t.Setenv("ZBIRKA_GAME_COST", "")
	t.Setenv("ZBIRKA_DATABASE_PATH", "")

	cfg, err := Load("", dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Game.Cost != 20 {
		t.Errorf("expected cost 20, got %d", cfg.Game.Cost)
	}
	if cfg.Database.Path != "local.sqlite3" {
		t.Errorf("expected .env.local to win, got %q", cfg.Database.Path)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "zbirka.yaml", "game:\n  cost: [not, a, number\n")

	if _, err := Load(path, dir); err == nil {
		t.Error("expected error for invalid yaml")
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml"), dir); err == nil {
		t.Error("expected error for an explicit config file that does not exist")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database:  DatabaseConfig{Path: "zbirka.sqlite3"},
			Generator: GeneratorConfig{BaseURL: "http://gen", Token: "t", Timeout: time.Second},
			Game:      GameConfig{Cost: 10, InitialBalance: 100},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing token", func(c *Config) { c.Generator.Token = "" }, "generator.token"},
		{"zero timeout", func(c *Config) { c.Generator.Timeout = 0 }, "generator.timeout"},
		{"zero cost", func(c *Config) { c.Game.Cost = 0 }, "game.cost"},
		{"negative balance", func(c *Config) { c.Game.InitialBalance = -1 }, "game.initial_balance"},
		{"missing database", func(c *Config) { c.Database.Path = "" }, "database.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}
