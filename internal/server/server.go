// Package server exposes layer extraction over HTTP: upload a PSD, get back a ZIP of PNGs.
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hellenic-development/psd-extractor/pkg/config"
	"github.com/hellenic-development/psd-extractor/pkg/psd"
)

// Loader decodes an uploaded document. psd.DecodeBytes is used when none is given.
type Loader func(data []byte, name string) (*psd.Document, error)

// Server is the HTTP API server for psd-extractor.
type Server struct {
	router chi.Router
	load   Loader
	log    *log.Logger
	cfg    config.Server
}

// New creates and configures the HTTP server.
func New(cfg config.Server, logger *log.Logger, load Loader) *Server {
	if load == nil {
		load = psd.DecodeBytes
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		load: load,
		log:  logger,
		cfg:  cfg,
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
	r.Use(requestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/api/export", s.handleExport)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// requestLogger logs incoming requests.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"request_id", middleware.GetReqID(r.Context()),
				"duration", time.Since(start).Round(time.Millisecond),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
