// Package server exposes the console service over HTTP: the JSON API,
// health and metrics endpoints, and the embedded browser client.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/docdeck/internal/console"
	"github.com/koustreak/docdeck/internal/logger"
	"github.com/koustreak/docdeck/internal/web"
	"github.com/rs/cors"
)

// Options configures a Server. Zero values pick defaults.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// CORSOrigins lists allowed origins. Empty means any origin.
	CORSOrigins []string

	Logger  *logger.Logger
	Metrics *Metrics
}

// Server is the HTTP front of the console.
type Server struct {
	svc     *console.Service
	log     *logger.Logger
	metrics *Metrics
	handler http.Handler
	http    *http.Server
}

// New builds the router for svc.
func New(svc *console.Service, opts Options) *Server {
	s := &Server{
		svc:     svc,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
	if s.log == nil {
		s.log = logger.Global()
	}
	s.log = s.log.Component("http")
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if opts.Addr == "" {
		opts.Addr = ":3000"
	}

	s.handler = s.routes(opts.CORSOrigins)
	s.http = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.handler,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ListenAndServe serves until Shutdown is called. A clean shutdown
// returns nil.
func (s *Server) ListenAndServe() error {
	s.log.InfoWith("http server listening", logger.Fields{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) routes(origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(s.log))
	r.Use(s.metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
	}).Handler)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.NotFound(s.handleAPINotFound)
		r.MethodNotAllowed(s.handleAPIMethodNotAllowed)

		r.Post("/connect", s.handleConnect)
		r.Get("/status", s.handleStatus)
		r.Post("/query", s.handleQuery)

		r.Get("/databases", s.handleListDatabases)
		r.Get("/databases/{db}/collections", s.handleListCollections)
		r.Route("/databases/{db}/collections/{col}", func(r chi.Router) {
			r.Get("/documents", s.handleListDocuments)
			r.Post("/documents", s.handleInsertDocument)
			r.Put("/documents/{id}", s.handleReplaceDocument)
			r.Delete("/documents/{id}", s.handleDeleteDocument)
			r.Post("/export", s.handleExport)
		})
	})

	r.Handle("/*", web.Handler())
	return r
}
