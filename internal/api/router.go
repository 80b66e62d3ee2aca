package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/zbirka/internal/game"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, coordinator *game.Coordinator) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	gameHandler := &GameHandler{Game: coordinator}
	pokemonHandler := &PokemonHandler{DB: db, Game: coordinator}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/passphrase", authMW(http.HandlerFunc(authHandler.ChangePassphrase)))

	mux.Handle("GET /api/state", authMW(http.HandlerFunc(gameHandler.State)))
	mux.Handle("POST /api/generate", authMW(http.HandlerFunc(gameHandler.Generate)))
	mux.Handle("PUT /api/sort", authMW(http.HandlerFunc(gameHandler.SetSort)))
	mux.Handle("POST /api/pokemon/{id}/resell", authMW(http.HandlerFunc(gameHandler.Resell)))
	mux.Handle("GET /api/pokemon/{id}/image", authMW(http.HandlerFunc(pokemonHandler.GetImage)))

	mux.Handle("GET /api/ledger", authMW(http.HandlerFunc(pokemonHandler.ListLedger)))

	return mux
}
