// Package extract turns normalized invoice text into structured fields with
// an LLM behind an OpenAI-compatible chat endpoint. The model's JSON is
// recovered from fences, validated against the canonical invoice schema and
// only then decoded into the shared data model.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jaguuai/invoice-extraction-system/internal/invoice"
)

const systemPrompt = `You are an invoice data extraction engine. You receive the OCR or native text of a single invoice, usually Turkish. Extract the fields into JSON matching the schema you are given. Rules:
- Return ONLY the JSON object, no markdown, no commentary.
- Use "" for text fields you cannot find; omit unknown numbers.
- invoice_date in YYYY-MM-DD when the format is recognizable, otherwise verbatim.
- Amounts are plain numbers with a dot decimal separator.
- vat_rate is a fraction (0.18 for %18 KDV).`

// Config holds the extractor settings.
type Config struct {
	APIKey      string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	Model       string        `mapstructure:"model" yaml:"model"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Attempts    int           `mapstructure:"attempts" yaml:"attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`

	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client `mapstructure:"-" yaml:"-"`
}

// DefaultConfig returns the production extractor settings.
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4o-mini",
		Temperature: 0.0,
		MaxTokens:   4096,
		Timeout:     120 * time.Second,
		Attempts:    3,
		RetryDelay:  2 * time.Second,
	}
}

// Extractor calls the chat endpoint and validates the result.
type Extractor struct {
	cfg    Config
	client openai.Client
	schema *jsonschema.Schema
	logger *slog.Logger
}

// New creates an extractor. The schema compiles at construction so a broken
// schema fails fast rather than on the first document.
func New(cfg Config, logger *slog.Logger) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultConfig().Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultConfig().Attempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultConfig().RetryDelay
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0), // retries handled here, with validation in the loop
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	schema, err := compileInvoiceSchema()
	if err != nil {
		return nil, err
	}

	return &Extractor{
		cfg:    cfg,
		client: openai.NewClient(opts...),
		schema: schema,
		logger: logger,
	}, nil
}

// Extract pulls structured invoice fields out of normalized document text.
// A schema-invalid response counts as a failed attempt and is retried.
func (e *Extractor) Extract(ctx context.Context, text string) (*invoice.Invoice, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("no text to extract from")
	}

	userPrompt := fmt.Sprintf("Schema:\n%s\n\nInvoice text:\n%s", invoiceSchema, text)

	var inv *invoice.Invoice
	err := retry.Do(
		func() error {
			parsed, err := e.callOnce(ctx, userPrompt)
			if err != nil {
				return err
			}
			inv = parsed
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(e.cfg.Attempts)),
		retry.Delay(e.cfg.RetryDelay),
		retry.OnRetry(func(n uint, err error) {
			e.logger.Warn("extraction attempt failed", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("invoice extraction failed: %w", err)
	}
	return inv, nil
}

func (e *Extractor) callOnce(ctx context.Context, userPrompt string) (*invoice.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature:         openai.Float(e.cfg.Temperature),
		MaxCompletionTokens: openai.Int(int64(e.cfg.MaxTokens)),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	raw, err := parseModelJSON(content)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode model JSON: %w", err)
	}
	if err := e.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("model output does not match invoice schema: %w", err)
	}

	var inv invoice.Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("failed to decode invoice: %w", err)
	}

	e.logger.Debug("invoice extracted",
		"model", resp.Model,
		"items", len(inv.Items),
		"tokens", resp.Usage.TotalTokens,
	)
	return &inv, nil
}
