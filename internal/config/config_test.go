package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewManager_DefaultsOnly(t *testing.T) {
	cm, err := NewManager(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := cm.Get()
	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d", cfg.Server.Port)
	}
	if cfg.Analyzer.MinWordsForText != 5 {
		t.Errorf("analyzer default not loaded: %+v", cfg.Analyzer)
	}
	if cfg.Layout.RowBandHeight != 12 {
		t.Errorf("layout default not loaded: %+v", cfg.Layout)
	}
	if cfg.Normalizer.SimilarityThreshold != 0.85 {
		t.Errorf("normalizer default not loaded: %+v", cfg.Normalizer)
	}
	if len(cfg.OCR.Languages) != 2 || cfg.OCR.Languages[0] != "tur" {
		t.Errorf("ocr default not loaded: %+v", cfg.OCR)
	}
}

func TestNewManager_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `server:
  port: 9090
layout:
  row_band_height: 20
llm:
  model: llama3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := cm.Get()
	if cfg.Server.Port != 9090 {
		t.Errorf("override missed: port %d", cfg.Server.Port)
	}
	if cfg.Layout.RowBandHeight != 20 {
		t.Errorf("override missed: band %f", cfg.Layout.RowBandHeight)
	}
	if cfg.LLM.Model != "llama3" {
		t.Errorf("override missed: model %q", cfg.LLM.Model)
	}
	// Untouched sections keep their defaults.
	if cfg.Validation.DefaultVATRate != 0.18 {
		t.Errorf("default lost: vat rate %f", cfg.Validation.DefaultVATRate)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("INVOICED_TEST_KEY", "secret123")

	cases := []struct {
		in, want string
	}{
		{"${INVOICED_TEST_KEY}", "secret123"},
		{"prefix-${INVOICED_TEST_KEY}", "prefix-secret123"},
		{"no-vars", "no-vars"},
		{"", ""},
		{"${UNSET_VAR_XYZ}", ""},
	}
	for _, tc := range cases {
		if got := ResolveEnvVars(tc.in); got != tc.want {
			t.Errorf("ResolveEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestManager_ResolvesLLMAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  api_key: ${OPENAI_API_KEY}\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if got := cm.Get().LLM.APIKey; got != "sk-test" {
		t.Errorf("api key not resolved: %q", got)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	// The written file must round-trip through the manager.
	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager on written default: %v", err)
	}
	cfg := cm.Get()
	if cfg.Layout.DescriptionMaxRatio != 0.35 {
		t.Errorf("round-trip lost layout defaults: %+v", cfg.Layout)
	}
	if cfg.Analyzer.ReplacementHard != 0.05 {
		t.Errorf("round-trip lost analyzer defaults: %+v", cfg.Analyzer)
	}
}
