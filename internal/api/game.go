package api

import (
	"errors"
	"net/http"

	"github.com/erazemk/zbirka/internal/game"
	"github.com/erazemk/zbirka/internal/model"
)

// GameHandler exposes the coordinator's flows.
type GameHandler struct {
	Game *game.Coordinator
}

type sortRequest struct {
	Order model.SortOrder `json:"order"`
}

type generateResponse struct {
	Pokemon model.Pokemon `json:"pokemon"`
	State   game.State    `json:"state"`
}

// stripImages drops image payloads; clients fetch them from the image route.
func stripImages(state game.State) game.State {
	for i := range state.Collection {
		state.Collection[i].ImageBase64 = ""
	}
	return state
}

// State handles GET /api/state.
func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, stripImages(h.Game.State()))
}

// Generate handles POST /api/generate.
func (h *GameHandler) Generate(w http.ResponseWriter, r *http.Request) {
	p, err := h.Game.Generate(r.Context())
	if err != nil {
		writeFlowError(w, err)
		return
	}

	created := *p
	created.ImageBase64 = ""
	jsonResponse(w, http.StatusCreated, generateResponse{
		Pokemon: created,
		State:   stripImages(h.Game.State()),
	})
}

// Resell handles POST /api/pokemon/{id}/resell.
func (h *GameHandler) Resell(w http.ResponseWriter, r *http.Request) {
	p, err := h.Game.Resell(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFlowError(w, err)
		return
	}

	resold := *p
	resold.ImageBase64 = ""
	jsonResponse(w, http.StatusOK, generateResponse{
		Pokemon: resold,
		State:   stripImages(h.Game.State()),
	})
}

// SetSort handles PUT /api/sort.
func (h *GameHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Game.SetSortOrder(req.Order); err != nil {
		if errors.Is(err, game.ErrInvalidSortOrder) {
			writeFlowError(w, err)
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to set sort order")
		return
	}

	jsonResponse(w, http.StatusOK, stripImages(h.Game.State()))
}
