package web

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/zbirka/internal/game"
	webembed "github.com/erazemk/zbirka/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string, coordinator *game.Coordinator) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
		Game:      coordinator,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.CollectionPage)))
	mux.Handle("POST /generate", cookieAuth(http.HandlerFunc(s.GenerateSubmit)))
	mux.Handle("POST /sort", cookieAuth(http.HandlerFunc(s.SortSubmit)))
	mux.Handle("POST /pokemon/{id}/resell", cookieAuth(http.HandlerFunc(s.ResellSubmit)))
	mux.Handle("GET /pokemon/{id}/image", cookieAuth(http.HandlerFunc(s.PokemonImage)))
	mux.Handle("GET /ledger", cookieAuth(http.HandlerFunc(s.LedgerPage)))

	return mux, nil
}
