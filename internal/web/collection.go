package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/zbirka/internal/game"
	"github.com/erazemk/zbirka/internal/generator"
	"github.com/erazemk/zbirka/internal/imaging"
	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// ledgerPageSize is the number of entries shown on the ledger page.
const ledgerPageSize = 100

// maxRemoteMessage caps the generator's error text so the flash cookie stays
// well under the browser's 4 KB limit.
const maxRemoteMessage = 200

// sortOption is one entry of the sort selector.
type sortOption struct {
	Value model.SortOrder
	Label string
}

var sortOptions = []sortOption{
	{model.SortNewest, "Najnovejši"},
	{model.SortOldest, "Najstarejši"},
	{model.SortRarityDesc, "Redkost (padajoče)"},
	{model.SortRarityAsc, "Redkost (naraščajoče)"},
	{model.SortName, "Ime"},
}

// CollectionPage handles GET /.
func (s *Server) CollectionPage(w http.ResponseWriter, r *http.Request) {
	success, failure := popFlash(w, r)

	s.Templates.Render(w, "collection.html", &struct {
		PageData
		State       game.State
		SortOptions []sortOption
	}{
		PageData: PageData{
			Title:         "Zbirka",
			Authenticated: true,
			Success:       success,
			Error:         failure,
		},
		State:       s.Game.State(),
		SortOptions: sortOptions,
	})
}

// GenerateSubmit handles POST /generate.
func (s *Server) GenerateSubmit(w http.ResponseWriter, r *http.Request) {
	p, err := s.Game.Generate(r.Context())
	if err != nil {
		setFlash(w, true, flowMessage(err))
	} else {
		setFlash(w, false, fmt.Sprintf("Nov Pokémon: %s (%s).", p.Name, p.Rarity))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ResellSubmit handles POST /pokemon/{id}/resell.
func (s *Server) ResellSubmit(w http.ResponseWriter, r *http.Request) {
	p, err := s.Game.Resell(r.Context(), r.PathValue("id"))
	if err != nil {
		setFlash(w, true, flowMessage(err))
	} else {
		setFlash(w, false, fmt.Sprintf("%s prodan za %d žetonov.", p.Name, model.ResellValue(p.Rarity)))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// SortSubmit handles POST /sort.
func (s *Server) SortSubmit(w http.ResponseWriter, r *http.Request) {
	if err := s.Game.SetSortOrder(model.SortOrder(r.FormValue("order"))); err != nil {
		setFlash(w, true, "Neznan vrstni red.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LedgerPage handles GET /ledger.
func (s *Server) LedgerPage(w http.ResponseWriter, r *http.Request) {
	entries, err := store.ListLedger(r.Context(), s.DB, ledgerPageSize)
	if err != nil {
		slog.Error("failed to list ledger", "error", err)
	}

	s.Templates.Render(w, "ledger.html", &struct {
		PageData
		Entries []model.LedgerEntry
	}{
		PageData: PageData{Title: "Žetoni", Authenticated: true},
		Entries:  entries,
	})
}

// PokemonImage handles GET /pokemon/{id}/image (web route, cookie-authenticated).
func (s *Server) PokemonImage(w http.ResponseWriter, r *http.Request) {
	p, ok := s.Game.Pokemon(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	img, err := imaging.Decode(p.ImageBase64)
	if err != nil {
		slog.Warn("unservable image payload", "pokemon", p.ID, "error", err)
		http.Error(w, "invalid image", http.StatusUnprocessableEntity)
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

// flowMessage turns a coordinator error into a message for the player.
func flowMessage(err error) string {
	var msg string
	switch game.Kind(err) {
	case "InsufficientFunds":
		msg = "Premalo žetonov za novega Pokémona."
	case "NotResellable":
		msg = "Tega Pokémona ni mogoče prodati."
	case "Timeout":
		msg = "Generator se ni odzval pravočasno."
	case "NetworkUnavailable":
		msg = "Generator ni dosegljiv. Preverite omrežno povezavo, TLS certifikate ter nastavitve CORS ali posrednika."
	case "RemoteError":
		var remote *generator.RemoteError
		errors.As(err, &remote)
		msg = "Generator je vrnil napako: " + truncate(remote.Message, maxRemoteMessage)
	case "MalformedResponse":
		msg = "Generator je vrnil neveljaven odgovor."
	case "UnknownError":
		msg = "Nepričakovan odgovor generatorja."
	default:
		if errors.Is(err, game.ErrPersistence) {
			msg = "Shranjevanje Pokémona ni uspelo."
		} else {
			msg = "Prišlo je do napake."
		}
	}

	if game.Refunded(err) {
		msg += " Žetoni so bili vrnjeni."
	}
	return msg
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
