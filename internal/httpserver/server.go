// Package httpserver wires the public storefront and the admin panel onto a
// chi router. Pages are rendered server-side from embedded templates; the
// admin table rows swap in place via htmx fragments.
package httpserver

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/wassimtechnew/Techsatwassim/internal/admin/editor"
	"github.com/wassimtechnew/Techsatwassim/internal/auth"
	"github.com/wassimtechnew/Techsatwassim/internal/catalog"
	"github.com/wassimtechnew/Techsatwassim/internal/content"
	mw "github.com/wassimtechnew/Techsatwassim/internal/httpserver/middleware"
	"github.com/wassimtechnew/Techsatwassim/internal/i18n"
	"github.com/wassimtechnew/Techsatwassim/internal/platform/observability"
	"github.com/wassimtechnew/Techsatwassim/internal/session"
	"github.com/wassimtechnew/Techsatwassim/internal/whatsapp"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

// Config carries the server's collaborators.
type Config struct {
	Logger        *zap.Logger
	Catalog       *catalog.State
	Sessions      *session.Manager
	Verifier      auth.Verifier
	Bundle        *i18n.Bundle
	Copy          *content.Library
	WhatsApp      whatsapp.Linker
	SecureCookies bool
	Clock         func() time.Time
}

// Server renders the storefront and admin panel.
type Server struct {
	logger   *zap.Logger
	catalog  *catalog.State
	sessions *session.Manager
	verifier auth.Verifier
	bundle   *i18n.Bundle
	siteCopy *content.Library
	wa       whatsapp.Linker
	editors  *editor.Registry
	tmpl     *template.Template
	secure   bool
	clock    func() time.Time
}

// New parses the embedded templates and builds the server.
func New(cfg Config) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Server{
		logger:   logger,
		catalog:  cfg.Catalog,
		sessions: cfg.Sessions,
		verifier: cfg.Verifier,
		bundle:   cfg.Bundle,
		siteCopy: cfg.Copy,
		wa:       cfg.WhatsApp,
		editors:  editor.NewRegistry(),
		tmpl:     tmpl,
		secure:   cfg.SecureCookies,
		clock:    clock,
	}, nil
}

// Routes builds the router with the shared middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.RequestLogger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(mw.HTMX())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", s.handleReady)

	assets, _ := fs.Sub(assetFS, "assets")
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assets))))

	r.Get("/", s.handleHome)
	r.Get("/lang", s.handleLang)
	r.Post("/contact", s.handleContact)

	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.NoStore)
		r.Use(mw.LoadSession(s.sessions))
		r.Use(mw.CSRF(mw.CSRFConfig{Secure: s.secure}))

		r.Get("/login", s.handleLoginForm)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth("/admin/login"))

			r.Get("/", s.handleDashboard)
			r.Post("/settings", s.handleSaveSettings)

			r.Route("/offers", func(r chi.Router) {
				r.Post("/", s.handleCreateOffer)
				r.Group(func(r chi.Router) {
					r.Use(mw.RequireHTMX())
					r.Get("/{id}/edit", s.handleEditOffer)
					r.Get("/{id}/row", s.handleOfferRow)
					r.Put("/{id}", s.handleSaveOffer)
					r.Delete("/{id}", s.handleDeleteOffer)
				})
			})

			r.Route("/boxes", func(r chi.Router) {
				r.Post("/", s.handleCreateBox)
				r.Group(func(r chi.Router) {
					r.Use(mw.RequireHTMX())
					r.Get("/{id}/edit", s.handleEditBox)
					r.Get("/{id}/row", s.handleBoxRow)
					r.Put("/{id}", s.handleSaveBox)
					r.Delete("/{id}", s.handleDeleteBox)
				})
			})
		})
	})

	return r
}

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"now": time.Now,
		"join": func(values []string, sep string) string {
			return strings.Join(values, sep)
		},
	}
	var files []string
	if err := fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates embedded")
	}
	return template.New("_root").Funcs(funcMap).ParseFS(templateFS, files...)
}

// render executes a named template. Fragment handlers pass fragment names,
// page handlers pass full-document names.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template exec failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
