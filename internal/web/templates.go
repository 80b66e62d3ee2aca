package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/zbirka/internal/game"
	"github.com/erazemk/zbirka/internal/model"
	webembed "github.com/erazemk/zbirka/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"rarityClass": func(r model.Rarity) string {
			if r == model.RaritySPlus {
				return "rarity-splus"
			}
			return "rarity-" + string(r)
		},
		"statusName": func(status model.Status) string {
			switch status {
			case model.StatusOwned:
				return "V lasti"
			case model.StatusResold:
				return "Prodan"
			default:
				return string(status)
			}
		},
		"ledgerKindName": func(kind string) string {
			switch kind {
			case model.LedgerDebit:
				return "Generiranje"
			case model.LedgerRefund:
				return "Vračilo"
			case model.LedgerCredit:
				return "Prodaja"
			default:
				return kind
			}
		},
		"resellValue": model.ResellValue,
		"formatTime": func(t time.Time) string {
			return t.Local().Format("2. 1. 2006 15:04")
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	// Read layout.
	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"login.html",
		"collection.html",
		"ledger.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title         string
	Authenticated bool
	Error         string
	Success       string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Templates *Templates
	JWTSecret string
	Game      *game.Coordinator
}
