// Package layout reconstructs tabular invoice line items from the spatial
// positions of OCR tokens. There is no table markup to lean on: rows come
// from vertical proximity, columns from horizontal position ratios.
package layout

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jaguuai/invoice-extraction-system/internal/invoice"
	"github.com/jaguuai/invoice-extraction-system/internal/ocr"
)

const (
	// ConfidenceArithmeticMatch is assigned when qty × unit price equals the
	// row total within the configured tolerance.
	ConfidenceArithmeticMatch = 0.95
	// ConfidenceArithmeticMismatch is assigned otherwise. The confidence
	// signal is deliberately two-valued.
	ConfidenceArithmeticMismatch = 0.85
)

// numberPattern matches the first numeric run with an optional single
// decimal separator (dot or comma).
var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// TableParser turns positioned tokens into invoice line items.
type TableParser struct {
	cfg    Config
	logger *slog.Logger
}

// NewTableParser creates a parser with the given configuration.
func NewTableParser(cfg Config, logger *slog.Logger) *TableParser {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RowBandHeight <= 0 {
		cfg.RowBandHeight = DefaultConfig().RowBandHeight
	}
	return &TableParser{cfg: cfg, logger: logger}
}

// Parse reconstructs line items from one page's tokens. Rows that fail
// validation are dropped silently; malformed content never errors.
func (p *TableParser) Parse(tokens []ocr.Token, pageWidth float64) []invoice.LineItem {
	if len(tokens) == 0 || pageWidth <= 0 {
		return nil
	}

	rows := groupRows(tokens, p.cfg.RowBandHeight)

	items := make([]invoice.LineItem, 0, len(rows))
	for _, row := range rows {
		if item, ok := p.parseRow(row, pageWidth); ok {
			items = append(items, item)
		}
	}

	p.logger.Debug("table reconstructed",
		"tokens", len(tokens),
		"rows", len(rows),
		"items", len(items),
	)
	return items
}

// columns is the per-row bucket set. Fragments keep token order.
type columns struct {
	desc  []string
	qty   []string
	unit  []string
	total []string
}

// parseRow turns one token row into a line item. Header and metadata rows
// are filtered out; rows missing description, unit price or total are not
// line items.
func (p *TableParser) parseRow(row []ocr.Token, pageWidth float64) (invoice.LineItem, bool) {
	if p.isHeaderRow(row) {
		return invoice.LineItem{}, false
	}

	var cols columns
	for _, tok := range row {
		text := strings.TrimSpace(tok.Text)
		if text == "" {
			continue
		}

		switch xRatio := tok.CenterX / pageWidth; {
		case xRatio < p.cfg.DescriptionMaxRatio:
			cols.desc = append(cols.desc, text)
		case xRatio < p.cfg.QuantityMaxRatio:
			cols.qty = append(cols.qty, text)
		case xRatio < p.cfg.UnitPriceMaxRatio:
			cols.unit = append(cols.unit, text)
		default:
			cols.total = append(cols.total, text)
		}
	}

	if len(cols.desc) == 0 || len(cols.unit) == 0 || len(cols.total) == 0 {
		return invoice.LineItem{}, false
	}

	description := strings.Join(cols.desc, " ")
	for from, to := range p.cfg.Corrections {
		description = strings.ReplaceAll(description, from, to)
	}

	qty := extractInt(cols.qty, 1)
	unitPrice := extractNumber(cols.unit, 0.0)
	totalPrice := extractNumber(cols.total, 0.0)

	// Stray digits produce rows with non-positive fields; not real items.
	if qty <= 0 || unitPrice <= 0 || totalPrice <= 0 {
		return invoice.LineItem{}, false
	}

	confidence := ConfidenceArithmeticMismatch
	if math.Abs(float64(qty)*unitPrice-totalPrice) < p.cfg.ArithmeticTolerance {
		confidence = ConfidenceArithmeticMatch
	}

	return invoice.LineItem{
		Description: description,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		TotalPrice:  totalPrice,
		Confidence:  confidence,
	}, true
}

// isHeaderRow reports whether the lower-cased joined row text contains any
// header keyword.
func (p *TableParser) isHeaderRow(row []ocr.Token) bool {
	parts := make([]string, 0, len(row))
	for _, tok := range row {
		parts = append(parts, strings.ToLower(tok.Text))
	}
	joined := strings.Join(parts, " ")

	for _, kw := range p.cfg.HeaderKeywords {
		if strings.Contains(joined, kw) {
			return true
		}
	}
	return false
}

// extractNumber pulls the first numeric pattern out of the space-joined
// fragments, normalizing a comma separator to a dot. Missing or unparseable
// numbers fall back to the default; the caller's positivity check decides
// whether the row survives.
func extractNumber(parts []string, def float64) float64 {
	match := numberPattern.FindString(strings.Join(parts, " "))
	if match == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil {
		return def
	}
	return v
}

// extractInt is extractNumber truncated to an integer quantity.
func extractInt(parts []string, def int) int {
	v := extractNumber(parts, float64(def))
	return int(v)
}
