package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements Engine using the gosseract Tesseract bindings.
// A fresh client is created per call; gosseract clients are not safe for
// concurrent reuse.
type TesseractEngine struct {
	opts          Options
	logger        *slog.Logger
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed OCR engine.
func NewTesseractEngine(opts Options, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Languages) == 0 {
		opts.Languages = DefaultOptions().Languages
	}
	return &TesseractEngine{
		opts:          opts,
		logger:        logger,
		clientFactory: gosseract.NewClient,
	}
}

// Name returns the engine identifier.
func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize runs Tesseract on an encoded image and returns positioned word
// tokens. Word confidences arrive from Tesseract as 0-100 and are scaled to
// the 0-1 contract range.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte, pageNum int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if err := c.SetLanguage(e.opts.Languages...); err != nil {
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if e.opts.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(e.opts.DPI)); err != nil {
			return nil, fmt.Errorf("set dpi: %w", err)
		}
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognize words: %w", err)
	}

	tokens := make([]Token, 0, len(boxes))
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		tokens = append(tokens, NewToken(
			word,
			b.Confidence/100.0,
			float64(b.Box.Min.X),
			float64(b.Box.Min.Y),
			float64(b.Box.Max.X),
			float64(b.Box.Max.Y),
		))
	}

	result := NewResult(tokens)
	e.logger.Debug("ocr complete",
		"engine", e.Name(),
		"page", pageNum,
		"tokens", len(result.Tokens),
		"confidence", result.Confidence,
	)
	return result, nil
}

var _ Engine = (*TesseractEngine)(nil)
