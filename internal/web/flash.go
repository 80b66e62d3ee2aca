package web

import (
	"net/http"
	"net/url"
	"strings"
)

const flashCookie = "flash"

// setFlash stores a one-shot message shown on the next page load.
func setFlash(w http.ResponseWriter, isError bool, message string) {
	prefix := "ok:"
	if isError {
		prefix = "err:"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(prefix + message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// popFlash reads and clears the flash message. It returns the success and
// error texts; at most one is non-empty.
func popFlash(w http.ResponseWriter, r *http.Request) (success, failure string) {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return "", ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	value, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", ""
	}
	if msg, ok := strings.CutPrefix(value, "err:"); ok {
		return "", msg
	}
	if msg, ok := strings.CutPrefix(value, "ok:"); ok {
		return msg, ""
	}
	return "", ""
}
