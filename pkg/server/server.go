// Package server exposes the pipeline and the collection over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/user/ainspire/pkg/orchestrator"
	"github.com/user/ainspire/pkg/ports"
)

// DefaultMaxUploadSize limits one upload request.
const DefaultMaxUploadSize = 1 << 30

// Options configures the HTTP surface.
type Options struct {
	MaxUploadSize int64
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// Server handles API requests.
type Server struct {
	orch        *orchestrator.Orchestrator
	fs          ports.FileSystem
	credentials ports.CredentialStore
	logger      ports.Logger
	opts        Options
}

// New creates a new Server.
func New(orch *orchestrator.Orchestrator, fs ports.FileSystem, credentials ports.CredentialStore, logger ports.Logger, opts Options) *Server {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = DefaultMaxUploadSize
	}
	return &Server{
		orch:        orch,
		fs:          fs,
		credentials: credentials,
		logger:      logger.WithComponent("server"),
		opts:        opts,
	}
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", s.handlePing)

	r.Route("/videos", func(r chi.Router) {
		r.Post("/", s.handleUpload)
		r.Post("/cancel", s.handleCancel)
	})
	r.Get("/status", s.handleStatus)
	r.Put("/language", s.handleLanguage)

	r.Route("/images", func(r chi.Router) {
		r.Get("/", s.handleImages)
		r.Delete("/{id}", s.handleDeleteImage)
	})
	r.Get("/filters", s.handleFilters)
	r.Get("/export", s.handleExport)
	r.Post("/import", s.handleImport)
	r.Get("/download", s.handleDownload)

	r.Route("/credential", func(r chi.Router) {
		r.Put("/", s.handleSaveCredential)
		r.Delete("/", s.handleClearCredential)
	})

	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics)
	}

	return r
}

// HTTPServer returns an http.Server bound to addr and serving Router.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
