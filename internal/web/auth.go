package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/zbirka/internal/auth"
	"github.com/erazemk/zbirka/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Prijava"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	passphrase := r.FormValue("passphrase")

	if passphrase == "" {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Prijava",
			Error: "Vnesite geslo.",
		})
		return
	}

	hash, err := store.GetSetting(r.Context(), s.DB, store.SettingPassphraseHash)
	if err != nil || !auth.CheckPassphrase(hash, passphrase) {
		slog.Warn("login failed", "remote", r.RemoteAddr)
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Prijava",
			Error: "Napačno geslo.",
		})
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret)
	if err != nil {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Prijava",
			Error: "Napaka pri prijavi.",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil {
			if err := store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
				slog.Error("failed to revoke token", "error", err)
			}
		}
	}

	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
