// Package view renders the server-side HTML pages. Templates are embedded in
// the binary; each page is parsed together with the shared layout at startup
// so a broken template fails the boot instead of the first request.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/utafrali/brandhub/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{
	"login.html",
	"register.html",
	"brands.html",
	"brand_form.html",
	"brand_delete.html",
	"error.html",
}

// Renderer executes the embedded page templates.
type Renderer struct {
	templates map[string]*template.Template
	logoHosts map[string]bool
	logger    *slog.Logger
}

// Data is the template context shared by all pages. Handlers fill in the
// fields their page needs and leave the rest zero.
type Data struct {
	Title string

	// Flash is a one-shot success banner carried through a redirect.
	Flash string

	// Error is a page-level failure message, e.g. the backend being down.
	Error string

	// FieldErrors maps wire field names to validation messages.
	FieldErrors map[string]string

	// LoggedIn switches the navigation between the auth links and logout.
	LoggedIn bool

	// Auth pages.
	Email      string
	Registered bool

	// Brand pages.
	Brands []domain.Brand
	Brand  *domain.Brand
	Form   domain.BrandForm
	Fields []domain.FormField

	// Action is the URL a form posts to; Nonce is its single-use token.
	Action string
	Nonce  string
	Mode   string
}

// New parses every page template. logoAllowedHosts restricts which hosts logo
// images may be loaded from; an empty list allows any http(s) host.
func New(logoAllowedHosts []string, logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template, len(pages)),
		logoHosts: make(map[string]bool, len(logoAllowedHosts)),
		logger:    logger,
	}
	for _, h := range logoAllowedHosts {
		if h != "" {
			r.logoHosts[h] = true
		}
	}

	funcs := template.FuncMap{
		"logoSrc": r.logoSrc,
		"initial": initial,
	}

	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.templates[page] = t
	}
	return r, nil
}

// Render writes the page with the given status. The template is executed into
// a buffer first so a mid-render failure never leaks a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data *Data) {
	t, ok := r.templates[page]
	if !ok {
		r.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		r.logger.Error("render template", slog.String("page", page), slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// logoSrc returns a renderable image URL or "" when the URL is absent,
// malformed, or points at a host outside the allow-list. Templates fall back
// to the initial-letter placeholder on "".
func (r *Renderer) logoSrc(raw *string) string {
	if raw == nil || *raw == "" {
		return ""
	}
	u, err := url.Parse(*raw)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if len(r.logoHosts) > 0 && !r.logoHosts[u.Hostname()] {
		return ""
	}
	return *raw
}

// initial returns the uppercased first letter of a name for the logo
// placeholder.
func initial(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}
