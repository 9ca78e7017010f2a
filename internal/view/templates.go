package view

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/coffeestock/coffeestock/internal/identity"
	"github.com/coffeestock/coffeestock/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// MenuEntry is one navigation item the active identity may reach.
type MenuEntry struct {
	ViewID string
	Title  string
	Active bool
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CurrentPath string
	Identity    *identity.Identity
	Menu        []MenuEntry
	Data        any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04:05")
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
