package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/zbirka/internal/game"
	"github.com/erazemk/zbirka/internal/imaging"
	"github.com/erazemk/zbirka/internal/store"
)

// DefaultLedgerLimit is the number of ledger entries returned without ?limit.
const DefaultLedgerLimit = 50

// PokemonHandler serves per-Pokemon resources and the token ledger.
type PokemonHandler struct {
	DB   *sql.DB
	Game *game.Coordinator
}

// GetImage handles GET /api/pokemon/{id}/image.
func (h *PokemonHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Game.Pokemon(r.PathValue("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "pokemon not found")
		return
	}

	img, err := imaging.Decode(p.ImageBase64)
	if err != nil {
		slog.Warn("unservable image payload", "pokemon", p.ID, "error", err)
		jsonError(w, http.StatusUnprocessableEntity, "image payload is not a valid image")
		return
	}

	w.Header().Set("Content-Type", img.MIME)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=86400, immutable")
	if _, err := w.Write(img.Data); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}

// ListLedger handles GET /api/ledger.
func (h *PokemonHandler) ListLedger(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLedgerLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := store.ListLedger(r.Context(), h.DB, limit)
	if err != nil {
		slog.Error("failed to list ledger", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list ledger")
		return
	}

	jsonResponse(w, http.StatusOK, entries)
}
