// Package svcctx provides service context for dependency injection via
// context. This package is separate from server to avoid import cycles with
// endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jaguuai/invoice-extraction-system/internal/config"
	"github.com/jaguuai/invoice-extraction-system/internal/pipeline"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Pipeline  *pipeline.Pipeline
	ConfigMgr *config.Manager
	Logger    *slog.Logger

	// UploadDir receives uploaded PDFs.
	UploadDir string
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// PipelineFrom extracts the processing pipeline from context.
func PipelineFrom(ctx context.Context) *pipeline.Pipeline {
	if s := ServicesFrom(ctx); s != nil {
		return s.Pipeline
	}
	return nil
}

// ConfigManagerFrom extracts the config manager from context.
func ConfigManagerFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigMgr
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// UploadDirFrom extracts the upload directory from context.
func UploadDirFrom(ctx context.Context) string {
	if s := ServicesFrom(ctx); s != nil {
		return s.UploadDir
	}
	return ""
}
