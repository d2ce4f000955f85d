package textstats

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLetterRatio(t *testing.T) {
	t.Run("empty string yields zero", func(t *testing.T) {
		if got := LetterRatio(""); got != 0 {
			t.Errorf("expected 0, got %f", got)
		}
	})

	t.Run("all letters", func(t *testing.T) {
		if got := LetterRatio("abc def"); !almostEqual(got, 1.0) {
			t.Errorf("expected 1.0, got %f", got)
		}
	})

	t.Run("mixed letters and digits", func(t *testing.T) {
		// 3 letters, 3 digits, 6 non-space chars
		if got := LetterRatio("abc 123"); !almostEqual(got, 0.5) {
			t.Errorf("expected 0.5, got %f", got)
		}
	})

	t.Run("unicode letters count", func(t *testing.T) {
		if got := LetterRatio("Şule İş"); !almostEqual(got, 1.0) {
			t.Errorf("expected 1.0, got %f", got)
		}
	})

	t.Run("whitespace excluded from denominator", func(t *testing.T) {
		if got := LetterRatio("  a  "); !almostEqual(got, 1.0) {
			t.Errorf("expected 1.0, got %f", got)
		}
	})
}

func TestReplacementRatio(t *testing.T) {
	t.Run("no replacement chars", func(t *testing.T) {
		if got := ReplacementRatio("hello world"); got != 0 {
			t.Errorf("expected 0, got %f", got)
		}
	})

	t.Run("counts replacement chars", func(t *testing.T) {
		// 1 replacement out of 10 non-space runes
		s := "abcdefghi" + string(ReplacementChar)
		if got := ReplacementRatio(s); !almostEqual(got, 0.1) {
			t.Errorf("expected 0.1, got %f", got)
		}
	})
}

func TestControlFormatRatios(t *testing.T) {
	t.Run("newlines and tabs not control", func(t *testing.T) {
		cc, cf := ControlFormatRatios("a\nb\tc\r d")
		if cc != 0 || cf != 0 {
			t.Errorf("expected 0/0, got %f/%f", cc, cf)
		}
	})

	t.Run("counts Cc runes", func(t *testing.T) {
		cc, _ := ControlFormatRatios("abc\x01")
		if !almostEqual(cc, 0.25) {
			t.Errorf("expected 0.25, got %f", cc)
		}
	})

	t.Run("counts Cf runes", func(t *testing.T) {
		// zero-width joiner is category Cf
		_, cf := ControlFormatRatios("abc‍")
		if !almostEqual(cf, 0.25) {
			t.Errorf("expected 0.25, got %f", cf)
		}
	})
}

func TestSingleCharRatio(t *testing.T) {
	t.Run("empty slice", func(t *testing.T) {
		if got := SingleCharRatio(nil); got != 0 {
			t.Errorf("expected 0, got %f", got)
		}
	})

	t.Run("all single char", func(t *testing.T) {
		if got := SingleCharRatio([]string{"a", "b", "c"}); !almostEqual(got, 1.0) {
			t.Errorf("expected 1.0, got %f", got)
		}
	})

	t.Run("multibyte rune counts as one char", func(t *testing.T) {
		if got := SingleCharRatio([]string{"Ş", "word"}); !almostEqual(got, 0.5) {
			t.Errorf("expected 0.5, got %f", got)
		}
	})
}

func TestCountValidWords(t *testing.T) {
	words := strings.Fields("a ab abc Ş Şu")
	if got := CountValidWords(words, 2); got != 3 {
		t.Errorf("expected 3 valid words, got %d", got)
	}
}
