// Package server exposes the analysis engine over HTTP.
//
// It is a thin transport adapter: request bodies are translated into the
// engine's plain input types and engine outcomes are marshaled back out.
// No analysis logic lives here.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/analyzer"
	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/config"
	"github.com/M-Ayaan-21/DG-Open-SEVA/internal/llm"
	"github.com/google/uuid"
)

// Server hosts the symptom-analysis HTTP API.
type Server struct {
	cfg      config.ServerConfig
	server   *http.Server
	engine   *analyzer.Engine
	provider llm.Provider
	logger   *slog.Logger
}

// New creates a Server wired to the given engine. The provider handle is
// used only by the deep health check.
func New(cfg config.ServerConfig, engine *analyzer.Engine, provider llm.Provider, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		engine:   engine,
		provider: provider,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/analyze", s.loggingMiddleware(s.handleAnalyze))
	mux.HandleFunc("POST /api/v1/analyze/stream", s.loggingMiddleware(s.handleAnalyzeStream))
	mux.HandleFunc("GET /api/v1/health", s.loggingMiddleware(s.handleHealth))

	s.server = &http.Server{
		Addr:        fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:     mux,
		ReadTimeout: cfg.ReadTimeout,
		// WriteTimeout bounds the blocking endpoints; the streaming
		// handler clears its own write deadline.
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Handler returns the server's HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// loggingMiddleware assigns each request an ID and logs method, path,
// status, and duration on completion.
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		rw := &responseWriter{ResponseWriter: w}
		next(rw, r)

		s.logger.Info("http request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	}
}

// Run starts the server and blocks until it fails or receives an interrupt,
// then shuts down gracefully.
func (s *Server) Run() error {
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("starting server", "address", s.server.Addr)
		serverErrors <- s.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		s.logger.Info("starting shutdown", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer's
// deadline controls.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
