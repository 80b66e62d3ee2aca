package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/zbirka/internal/auth"
	"github.com/erazemk/zbirka/internal/store"
)

// MinPassphraseLength is the shortest passphrase accepted on change.
const MinPassphraseLength = 8

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type loginRequest struct {
	Passphrase string `json:"passphrase"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type changePassphraseRequest struct {
	CurrentPassphrase string `json:"current_passphrase"`
	NewPassphrase     string `json:"new_passphrase"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Passphrase == "" {
		jsonError(w, http.StatusBadRequest, "passphrase required")
		return
	}

	hash, err := store.GetSetting(r.Context(), h.DB, store.SettingPassphraseHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		slog.Error("failed to load passphrase", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !auth.CheckPassphrase(hash, req.Passphrase) {
		slog.Warn("login failed", "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("player logged in", "remote", r.RemoteAddr)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		slog.Error("failed to revoke token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	slog.Info("player logged out")
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassphrase handles PUT /api/auth/passphrase.
func (h *AuthHandler) ChangePassphrase(w http.ResponseWriter, r *http.Request) {
	var req changePassphraseRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CurrentPassphrase == "" || len(req.NewPassphrase) < MinPassphraseLength {
		jsonError(w, http.StatusBadRequest, "current passphrase and a new passphrase of at least 8 characters required")
		return
	}

	hash, err := store.GetSetting(r.Context(), h.DB, store.SettingPassphraseHash)
	if err != nil {
		slog.Error("failed to load passphrase", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !auth.CheckPassphrase(hash, req.CurrentPassphrase) {
		jsonError(w, http.StatusUnauthorized, "current passphrase is incorrect")
		return
	}

	newHash, err := auth.HashPassphrase(req.NewPassphrase)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash passphrase")
		return
	}

	if err := store.SetSetting(r.Context(), h.DB, store.SettingPassphraseHash, newHash); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update passphrase")
		return
	}

	slog.Info("passphrase changed")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "passphrase updated"})
}
