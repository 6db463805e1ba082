// Package server exposes rendering, export and document storage over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alnah/go-tex2pdf"
	"github.com/alnah/go-tex2pdf/internal/store"
)

// Engine renders and exports documents. *tex2pdf.Converter satisfies it.
type Engine interface {
	Render(ctx context.Context, in tex2pdf.Input) (*tex2pdf.Document, error)
	HTML(ctx context.Context, doc *tex2pdf.Document) (string, error)
	Export(ctx context.Context, doc *tex2pdf.Document, page *tex2pdf.PageSettings) ([]byte, error)
}

var _ Engine = (*tex2pdf.Converter)(nil)

// Config configures a Server.
type Config struct {
	Engine Engine
	Store  store.Store
	// Page is used when a request names no page settings. Nil uses the
	// library defaults.
	Page   *tex2pdf.PageSettings
	Logger *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	router chi.Router
	engine Engine
	store  store.Store
	page   *tex2pdf.PageSettings
	log    *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	exporting map[string]struct{}
}

// New creates and configures the HTTP server. A nil store keeps documents
// in memory.
func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	st := cfg.Store
	if st == nil {
		st = store.NewMemory()
	}
	s := &Server{
		engine:    cfg.Engine,
		store:     st,
		page:      cfg.Page,
		log:       log,
		now:       time.Now,
		exporting: make(map[string]struct{}),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Post("/export", s.handleExport)

		r.Get("/documents", s.handleListDocuments)
		r.Route("/documents/{key}", func(r chi.Router) {
			r.Put("/", s.handlePutDocument)
			r.Get("/", s.handleGetDocument)
			r.Delete("/", s.handleDeleteDocument)
			r.Get("/render", s.handleRenderDocument)
			r.Post("/export", s.handleExportDocument)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// beginExport marks key as exporting. It reports false when an export for
// key is already running.
func (s *Server) beginExport(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.exporting[key]; busy {
		return false
	}
	s.exporting[key] = struct{}{}
	return true
}

func (s *Server) endExport(key string) {
	s.mu.Lock()
	delete(s.exporting, key)
	s.mu.Unlock()
}
