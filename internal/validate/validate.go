// Package validate applies business rules to an extracted invoice. Pure
// arithmetic, no LLM: VAT consistency, per-item arithmetic and field
// completeness, reported as errors, warnings and a checks-passed score.
package validate

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/jaguuai/invoice-extraction-system/internal/invoice"
)

// Config holds the validation rules.
type Config struct {
	// DefaultVATRate substitutes when the extraction carries no rate.
	DefaultVATRate float64 `mapstructure:"default_vat_rate" yaml:"default_vat_rate"`

	// Tolerance is the relative arithmetic slack (fraction of the expected
	// value) before a mismatch is reported.
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"`
}

// DefaultConfig returns the production validation settings. The Turkish
// standard VAT rate is 18%.
func DefaultConfig() Config {
	return Config{
		DefaultVATRate: 0.18,
		Tolerance:      0.01,
	}
}

// Checks records which rule groups passed.
type Checks struct {
	VAT          bool `json:"vat"`
	Arithmetic   bool `json:"arithmetic"`
	Completeness bool `json:"completeness"`
}

// Report is the validation outcome. Valid means no errors; warnings alone
// do not invalidate an invoice.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Checks   Checks   `json:"checks"`
	// Score is the fraction of check groups that passed.
	Score float64 `json:"score"`
}

// Validator applies the configured rules. Stateless.
type Validator struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a validator.
func New(cfg Config, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultVATRate <= 0 {
		cfg.DefaultVATRate = DefaultConfig().DefaultVATRate
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultConfig().Tolerance
	}
	return &Validator{cfg: cfg, logger: logger}
}

// Validate runs every rule group over the invoice.
func (v *Validator) Validate(inv *invoice.Invoice) *Report {
	r := &Report{
		Errors:   []string{},
		Warnings: []string{},
	}

	r.Checks.VAT = v.checkVAT(inv, r)
	r.Checks.Arithmetic = v.checkArithmetic(inv, r)
	r.Checks.Completeness = v.checkCompleteness(inv, r)

	passed := 0
	for _, ok := range []bool{r.Checks.VAT, r.Checks.Arithmetic, r.Checks.Completeness} {
		if ok {
			passed++
		}
	}
	r.Score = float64(passed) / 3
	r.Valid = len(r.Errors) == 0

	v.logger.Info("invoice validated",
		"passed", passed,
		"errors", len(r.Errors),
		"warnings", len(r.Warnings),
	)
	return r
}

// checkVAT verifies vat_total against subtotal × rate within the relative
// tolerance. Missing amounts are a warning, a real mismatch is an error.
func (v *Validator) checkVAT(inv *invoice.Invoice, r *Report) bool {
	if inv.Subtotal == 0 || inv.VATTotal == 0 {
		r.Warnings = append(r.Warnings, "missing VAT fields")
		return false
	}

	rate := inv.VATRate
	if rate == 0 {
		rate = v.cfg.DefaultVATRate
	}

	expected := inv.Subtotal * rate
	if math.Abs(inv.VATTotal-expected) > inv.Subtotal*v.cfg.Tolerance {
		r.Errors = append(r.Errors,
			fmt.Sprintf("VAT mismatch: expected %.2f, got %.2f", expected, inv.VATTotal))
		return false
	}
	return true
}

// checkArithmetic verifies quantity × unit price against each line total.
// Items with missing numbers are skipped; an empty item list passes.
func (v *Validator) checkArithmetic(inv *invoice.Invoice, r *Report) bool {
	ok := true
	for _, item := range inv.Items {
		if item.Quantity == 0 || item.UnitPrice == 0 || item.TotalPrice == 0 {
			continue
		}

		expected := float64(item.Quantity) * item.UnitPrice
		if math.Abs(item.TotalPrice-expected) > expected*v.cfg.Tolerance {
			r.Warnings = append(r.Warnings,
				fmt.Sprintf("item arithmetic issue: %s (%d × %.2f ≠ %.2f)",
					item.Description, item.Quantity, item.UnitPrice, item.TotalPrice))
			ok = false
		}
	}
	return ok
}

// checkCompleteness requires the identity fields every invoice must carry.
func (v *Validator) checkCompleteness(inv *invoice.Invoice, r *Report) bool {
	var missing []string
	if inv.InvoiceNumber == "" {
		missing = append(missing, "invoice_number")
	}
	if inv.InvoiceDate == "" {
		missing = append(missing, "invoice_date")
	}
	if inv.GrandTotal == 0 {
		missing = append(missing, "grand_total")
	}

	if len(missing) > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("missing required fields: %v", missing))
		return false
	}
	return true
}
