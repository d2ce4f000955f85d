package config

import (
	"github.com/jaguuai/invoice-extraction-system/internal/analyzer"
	"github.com/jaguuai/invoice-extraction-system/internal/extract"
	"github.com/jaguuai/invoice-extraction-system/internal/layout"
	"github.com/jaguuai/invoice-extraction-system/internal/normalize"
	"github.com/jaguuai/invoice-extraction-system/internal/ocr"
	"github.com/jaguuai/invoice-extraction-system/internal/preprocess"
	"github.com/jaguuai/invoice-extraction-system/internal/validate"
)

// Config holds invoiced configuration. Every processing threshold lives
// here as a named setting rather than a constant buried in code.
type Config struct {
	Server     ServerConfig        `mapstructure:"server" yaml:"server"`
	Storage    StorageConfig       `mapstructure:"storage" yaml:"storage"`
	Pipeline   PipelineConfig      `mapstructure:"pipeline" yaml:"pipeline"`
	OCR        ocr.Options         `mapstructure:"ocr" yaml:"ocr"`
	Preprocess preprocess.Options  `mapstructure:"preprocess" yaml:"preprocess"`
	Analyzer   analyzer.Thresholds `mapstructure:"analyzer" yaml:"analyzer"`
	Layout     layout.Config       `mapstructure:"layout" yaml:"layout"`
	Normalizer normalize.Config    `mapstructure:"normalizer" yaml:"normalizer"`
	LLM        extract.Config      `mapstructure:"llm" yaml:"llm"`
	Validation validate.Config     `mapstructure:"validation" yaml:"validation"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// StorageConfig holds filesystem paths.
type StorageConfig struct {
	// UploadDir receives uploaded PDFs, one subdirectory per upload ID.
	UploadDir string `mapstructure:"upload_dir" yaml:"upload_dir"`
}

// PipelineConfig holds orchestration settings.
type PipelineConfig struct {
	// MaxWorkers bounds concurrent page OCR.
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers"`
	// RenderDPI is the rasterization resolution for image pages.
	RenderDPI int `mapstructure:"render_dpi" yaml:"render_dpi"`
}

// DefaultConfig returns configuration with production defaults.
func DefaultConfig() *Config {
	llm := extract.DefaultConfig()
	llm.APIKey = "${OPENAI_API_KEY}"

	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			UploadDir: "uploads",
		},
		Pipeline: PipelineConfig{
			MaxWorkers: 4,
			RenderDPI:  300,
		},
		OCR:        ocr.DefaultOptions(),
		Preprocess: preprocess.DefaultOptions(),
		Analyzer:   analyzer.DefaultThresholds(),
		Layout:     layout.DefaultConfig(),
		Normalizer: normalize.DefaultConfig(),
		LLM:        llm,
		Validation: validate.DefaultConfig(),
	}
}
