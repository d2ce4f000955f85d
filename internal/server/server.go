// Package server runs the invoiced HTTP server: pipeline wiring, endpoint
// registration and graceful lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jaguuai/invoice-extraction-system/internal/analyzer"
	"github.com/jaguuai/invoice-extraction-system/internal/api"
	"github.com/jaguuai/invoice-extraction-system/internal/config"
	"github.com/jaguuai/invoice-extraction-system/internal/extract"
	"github.com/jaguuai/invoice-extraction-system/internal/layout"
	"github.com/jaguuai/invoice-extraction-system/internal/normalize"
	"github.com/jaguuai/invoice-extraction-system/internal/ocr"
	"github.com/jaguuai/invoice-extraction-system/internal/pdftext"
	"github.com/jaguuai/invoice-extraction-system/internal/pipeline"
	"github.com/jaguuai/invoice-extraction-system/internal/preprocess"
	"github.com/jaguuai/invoice-extraction-system/internal/server/endpoints"
	"github.com/jaguuai/invoice-extraction-system/internal/svcctx"
	"github.com/jaguuai/invoice-extraction-system/internal/validate"
)

// Server is the invoiced HTTP server.
type Server struct {
	httpServer *http.Server
	configMgr  *config.Manager
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server construction parameters.
type Config struct {
	// ConfigManager provides configuration with hot-reload support.
	ConfigManager *config.Manager
	// Logger is the structured logger to use.
	Logger *slog.Logger
	// DisableLLM skips the extraction stage even when an API key is set.
	DisableLLM bool
}

// New creates a Server, building the pipeline from the current config.
func New(cfg Config) (*Server, error) {
	if cfg.ConfigManager == nil {
		return nil, fmt.Errorf("config manager is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	appCfg := cfg.ConfigManager.Get()

	pipe, err := BuildPipeline(appCfg, cfg.Logger, cfg.DisableLLM)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(appCfg.Storage.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
		services: &svcctx.Services{
			Pipeline:  pipe,
			ConfigMgr: cfg.ConfigManager,
			Logger:    cfg.Logger,
			UploadDir: appCfg.Storage.UploadDir,
		},
	}

	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(appCfg.Server.Host, fmt.Sprint(appCfg.Server.Port)),
		Handler:      s.withServices(mux),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Minute, // full pipeline runs inline
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// BuildPipeline wires the processing pipeline from configuration. Shared by
// the server and the one-shot CLI commands.
func BuildPipeline(cfg *config.Config, logger *slog.Logger, disableLLM bool) (*pipeline.Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var extractor pipeline.FieldExtractor
	if !disableLLM && cfg.LLM.APIKey != "" {
		ex, err := extract.New(cfg.LLM, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to build extractor: %w", err)
		}
		extractor = ex
	} else {
		logger.Info("LLM extraction disabled", "reason", "no API key or explicitly disabled")
	}

	renderDPI := cfg.Pipeline.RenderDPI
	openSource := func(path string) (pipeline.PageSource, error) {
		return pdftext.Open(path, renderDPI, logger)
	}

	return pipeline.New(pipeline.Config{
		Classifier:     analyzer.NewClassifier(cfg.Analyzer, logger),
		Preprocessor:   preprocess.New(cfg.Preprocess, logger),
		Engine:         ocr.NewTesseractEngine(cfg.OCR, logger),
		Normalizer:     normalize.New(cfg.Normalizer, logger),
		Tables:         layout.NewTableParser(cfg.Layout, logger),
		Extractor:      extractor,
		Validator:      validate.New(cfg.Validation, logger),
		OpenSource:     openSource,
		MaxWorkers:     cfg.Pipeline.MaxWorkers,
		DefaultVATRate: cfg.Validation.DefaultVATRate,
		Logger:         logger,
	})
}

// Start runs the server until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the fully wired HTTP handler (tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the pipeline is ready.
// Returns 503 Service Unavailable otherwise.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.services == nil || s.services.Pipeline == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
