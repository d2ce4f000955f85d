package analyzer

// Thresholds holds the tunable limits for page classification and garbled
// text detection. Values can be overridden per document layout family via
// configuration; DefaultThresholds matches the production defaults.
type Thresholds struct {
	// MinWordsForText is the valid-word count at which a page counts as
	// having text.
	MinWordsForText int `mapstructure:"min_words_for_text" yaml:"min_words_for_text"`

	// MinCharsForValidWord is the minimum rune length for a word to count.
	MinCharsForValidWord int `mapstructure:"min_chars_for_valid_word" yaml:"min_chars_for_valid_word"`

	// MinCharsForText is the character volume that, combined with
	// MinLetterRatioForText, also qualifies a page as having text.
	MinCharsForText int `mapstructure:"min_chars_for_text" yaml:"min_chars_for_text"`

	// MinLetterRatioForText is the letter ratio required by the
	// character-volume clause.
	MinLetterRatioForText float64 `mapstructure:"min_letter_ratio_for_text" yaml:"min_letter_ratio_for_text"`

	// ReplacementHard immediately marks a page broken.
	ReplacementHard float64 `mapstructure:"replacement_hard" yaml:"replacement_hard"`

	// ReplacementSoft sets a soft flag that combines with low word counts.
	ReplacementSoft float64 `mapstructure:"replacement_soft" yaml:"replacement_soft"`

	// ControlCharLimit is the maximum tolerated control-character ratio.
	ControlCharLimit float64 `mapstructure:"control_char_limit" yaml:"control_char_limit"`

	// FormatCharLimit sets a soft flag when exceeded.
	FormatCharLimit float64 `mapstructure:"format_char_limit" yaml:"format_char_limit"`

	// SingleCharLimit is the maximum tolerated single-character token ratio.
	SingleCharLimit float64 `mapstructure:"single_char_limit" yaml:"single_char_limit"`

	// LetterRatioVeryLow marks a page broken on its own.
	LetterRatioVeryLow float64 `mapstructure:"letter_ratio_very_low" yaml:"letter_ratio_very_low"`

	// LetterRatioLow marks a page broken when combined with few words.
	LetterRatioLow float64 `mapstructure:"letter_ratio_low" yaml:"letter_ratio_low"`
}

// DefaultThresholds returns the standard classification thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinWordsForText:       5,
		MinCharsForValidWord:  2,
		MinCharsForText:       80,
		MinLetterRatioForText: 0.40,
		ReplacementHard:       0.05,
		ReplacementSoft:       0.01,
		ControlCharLimit:      0.02,
		FormatCharLimit:       0.05,
		SingleCharLimit:       0.70,
		LetterRatioVeryLow:    0.20,
		LetterRatioLow:        0.30,
	}
}
