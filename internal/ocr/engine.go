package ocr

import (
	"context"
	"time"
)

// Engine recognizes text in a single encoded image. Implementations must be
// safe for concurrent use; each Recognize call is independent.
type Engine interface {
	// Name returns the engine identifier (e.g. "tesseract").
	Name() string

	// Recognize extracts positioned tokens from an encoded image.
	// pageNum is informational, used for logging and result correlation.
	Recognize(ctx context.Context, image []byte, pageNum int) (*Result, error)
}

// Options carries engine-independent recognition settings.
type Options struct {
	// Languages lists trained-data hints in priority order (e.g. "tur", "eng").
	Languages []string `mapstructure:"languages" yaml:"languages"`
	// DPI is the effective resolution of the input image; zero means unknown.
	DPI int `mapstructure:"dpi" yaml:"dpi"`
	// Timeout bounds a single recognition call.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DefaultOptions returns recognition settings matching the production
// defaults: Turkish plus English at 300 DPI.
func DefaultOptions() Options {
	return Options{
		Languages: []string{"tur", "eng"},
		DPI:       300,
		Timeout:   2 * time.Minute,
	}
}
