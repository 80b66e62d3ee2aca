package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/erazemk/zbirka/internal/game"
)

// errorResponse is the body of every failed API call.
type errorResponse struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	Refunded bool   `json:"refunded"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorResponse{Error: message})
}

// writeFlowError maps a coordinator error onto a status code and writes it
// with its kind and refund annotation.
func writeFlowError(w http.ResponseWriter, err error) {
	kind := game.Kind(err)
	jsonResponse(w, statusForKind(kind), errorResponse{
		Error:    err.Error(),
		Kind:     kind,
		Refunded: game.Refunded(err),
	})
}

func statusForKind(kind string) int {
	switch kind {
	case "InsufficientFunds":
		return http.StatusPaymentRequired
	case "NotResellable", "DuplicateId", "InvalidTransition":
		return http.StatusConflict
	case "NotFound":
		return http.StatusNotFound
	case "InvalidValue":
		return http.StatusBadRequest
	case "Timeout":
		return http.StatusGatewayTimeout
	case "NetworkUnavailable", "RemoteError", "MalformedResponse", "UnknownError":
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
