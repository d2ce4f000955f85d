package layout

// Config holds the spatial and lexical tuning for table reconstruction.
// The defaults match Turkish e-invoice layouts; the column boundaries and
// row band can be tuned per document family.
type Config struct {
	// RowBandHeight is the vertical distance (pixels) within which a token
	// joins an existing row.
	RowBandHeight float64 `mapstructure:"row_band_height" yaml:"row_band_height"`

	// Column boundaries as fractions of the page width. A token's
	// horizontal center ratio selects the first matching bucket.
	DescriptionMaxRatio float64 `mapstructure:"description_max_ratio" yaml:"description_max_ratio"`
	QuantityMaxRatio    float64 `mapstructure:"quantity_max_ratio" yaml:"quantity_max_ratio"`
	UnitPriceMaxRatio   float64 `mapstructure:"unit_price_max_ratio" yaml:"unit_price_max_ratio"`

	// ArithmeticTolerance is the currency-unit tolerance for the
	// quantity times unit-price check that selects the high confidence.
	ArithmeticTolerance float64 `mapstructure:"arithmetic_tolerance" yaml:"arithmetic_tolerance"`

	// HeaderKeywords discard any row whose lower-cased joined text contains
	// one of them. These are invoice administrivia, never line items.
	HeaderKeywords []string `mapstructure:"header_keywords" yaml:"header_keywords"`

	// Corrections is a substitution table for known OCR misrecognitions
	// applied to descriptions. Data-specific configuration, not logic.
	Corrections map[string]string `mapstructure:"corrections" yaml:"corrections"`
}

// DefaultConfig returns the production table reconstruction settings.
func DefaultConfig() Config {
	return Config{
		RowBandHeight:       12,
		DescriptionMaxRatio: 0.35,
		QuantityMaxRatio:    0.50,
		UnitPriceMaxRatio:   0.70,
		ArithmeticTolerance: 1.0,
		HeaderKeywords: []string{
			"tarih", "vergi", "daire", "sayın", "seri",
			"irsaliye", "toplam", "kdv", "genel",
			"no", "vd",
		},
		Corrections: map[string]string{
			"Örün": "Ürün",
			"0rün": "Ürün",
		},
	}
}
