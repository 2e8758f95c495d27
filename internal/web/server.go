// Package web provides the HTTP API and dashboard for the import pipeline:
// input file discovery, header templates, dry-run previews, run triggering
// and the in-memory run history.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/giotroni/DB-VP/internal/config"
	"github.com/giotroni/DB-VP/internal/report"
	mw "github.com/giotroni/DB-VP/internal/web/middleware"
)

// Server is the HTTP server around the import pipeline.
type Server struct {
	pool    *pgxpool.Pool
	cfg     *config.Config
	history *report.History
	router  *chi.Mux
	server  *http.Server

	// importMu serializes runs: the pipeline uses one connection serially,
	// so concurrent import requests are refused rather than queued.
	importMu sync.Mutex
}

// NewServer creates a Server ready to start.
func NewServer(pool *pgxpool.Pool, cfg *config.Config) *Server {
	s := &Server{
		pool:    pool,
		cfg:     cfg,
		history: report.NewHistory(report.DefaultHistorySize),
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Pages
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/runs/{runID}/report", s.handleRunReportPage)

	s.router.Get("/healthz", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/tables", s.handleListTables)
		r.Get("/files", s.handleListFiles)
		r.Get("/template/{table}", s.handleDownloadTemplate)
		r.Get("/preview/{table}", s.handlePreview)

		r.Post("/import", s.handleImport)

		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
