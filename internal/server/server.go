// Package server exposes the transform pipeline over HTTP.
package server

import (
	"context"
	_ "embed"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	sheetreplace "github.com/ideamans/go-sheetreplace"
)

const (
	DefaultAddr           = "127.0.0.1:5000"
	DefaultMaxUploadBytes = 64 << 20
	shutdownTimeout       = 10 * time.Second
)

//go:embed openapi.yaml
var openAPISpec []byte

// Processor runs one request through the pipeline
type Processor interface {
	Process(ctx context.Context, req *sheetreplace.Request) (*sheetreplace.Bundle, *sheetreplace.BatchResult, error)
}

// Config represents configuration for the HTTP service
type Config struct {
	Addr           string // Listen address (default: 127.0.0.1:5000)
	MaxUploadBytes int64  // Request body limit (default: 64 MiB)
	AllowedOrigin  string // Access-Control-Allow-Origin value (default: *)
}

// Server serves the processing endpoint
type Server struct {
	processor Processor
	config    Config
}

// New creates a server around processor
func New(processor Processor, config *Config) *Server {
	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}
	return &Server{processor: processor, config: cfg}
}

// Handler returns the routed handler with CORS and access logging applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /process-excel", s.handleProcess)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /docs/openapi.yaml", s.handleDocs)
	return s.withRequestLog(s.withCORS(mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// The logger carried by ctx is handed to every request.
func (s *Server) ListenAndServe(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", s.config.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	logger.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Errorf("http shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openAPISpec)
}
