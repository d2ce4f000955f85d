package analyzer

import (
	"strings"
	"testing"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	return NewClassifier(DefaultThresholds(), nil)
}

func TestClassifyPage_TextPage(t *testing.T) {
	c := newTestClassifier(t)

	words := strings.Fields("fatura kalemleri ürün adet birim fiyat tutar")
	in := PageInput{
		Number:     1,
		Words:      words,
		Text:       strings.Join(words, " "),
		PageWidth:  595,
		PageHeight: 842,
	}

	got := c.ClassifyPage(in)
	if got.Type != PageTypeText {
		t.Errorf("expected text, got %s", got.Type)
	}
	if !got.HasText {
		t.Error("expected HasText")
	}
	if got.IsGarbled {
		t.Errorf("unexpected garbled: %v", got.GarbledReasons)
	}
}

func TestClassifyPage_TextWinsOverImages(t *testing.T) {
	c := newTestClassifier(t)

	words := strings.Fields("fatura kalemleri ürün adet birim fiyat tutar")
	in := PageInput{
		Number:     1,
		Words:      words,
		Text:       strings.Join(words, " "),
		Images:     []ImageRect{{Width: 100, Height: 100}},
		PageWidth:  595,
		PageHeight: 842,
	}

	if got := c.ClassifyPage(in); got.Type != PageTypeText {
		t.Errorf("page with text and images must be text, got %s", got.Type)
	}
}

func TestClassifyPage_ImagePage(t *testing.T) {
	c := newTestClassifier(t)

	in := PageInput{
		Number:     1,
		Images:     []ImageRect{{Width: 500, Height: 700}, {Width: 50, Height: 50}},
		PageWidth:  595,
		PageHeight: 842,
	}

	got := c.ClassifyPage(in)
	if got.Type != PageTypeImage {
		t.Errorf("expected image, got %s", got.Type)
	}
	if got.WordCount != 0 || got.ImageCount != 2 {
		t.Errorf("unexpected counts: words=%d images=%d", got.WordCount, got.ImageCount)
	}
	if got.IsGarbled {
		t.Error("empty page must not be garbled")
	}
}

func TestClassifyPage_EmptyPageBroken(t *testing.T) {
	c := newTestClassifier(t)

	got := c.ClassifyPage(PageInput{Number: 3, PageWidth: 595, PageHeight: 842})
	if got.Type != PageTypeBroken {
		t.Errorf("expected broken, got %s", got.Type)
	}
	if got.IsGarbled || len(got.GarbledReasons) != 0 {
		t.Error("empty text must short-circuit the garbled check")
	}
}

func TestDetectGarbled(t *testing.T) {
	c := newTestClassifier(t)

	t.Run("replacement hard wins regardless of other signals", func(t *testing.T) {
		words := strings.Fields("alpha bravo charlie delta echo foxtrot")
		text := strings.Join(words, " ") + " ���"
		in := PageInput{Number: 1, Words: words, Text: text, PageWidth: 595, PageHeight: 842}

		got := c.ClassifyPage(in)
		if got.Type != PageTypeBroken {
			t.Errorf("expected broken, got %s", got.Type)
		}
		if len(got.GarbledReasons) != 1 || got.GarbledReasons[0] != ReasonReplacementHard {
			t.Errorf("expected [replacement_hard], got %v", got.GarbledReasons)
		}
	})

	t.Run("control chars", func(t *testing.T) {
		words := strings.Fields("alpha bravo charlie delta echo")
		text := strings.Join(words, " ") + "\x01\x02"
		got := c.ClassifyPage(PageInput{Number: 1, Words: words, Text: text})
		if got.Type != PageTypeBroken || got.GarbledReasons[0] != ReasonControlCharsHigh {
			t.Errorf("expected control_chars_high, got %s %v", got.Type, got.GarbledReasons)
		}
	})

	t.Run("single char token flood", func(t *testing.T) {
		words := []string{"a", "b", "c", "d", "e", "f", "g", "h", "word", "more"}
		text := strings.Join(words, " ")
		got := c.ClassifyPage(PageInput{Number: 1, Words: words, Text: text})
		if got.Type != PageTypeBroken || got.GarbledReasons[0] != ReasonSingleCharTokensHigh {
			t.Errorf("expected single_char_tokens_high, got %s %v", got.Type, got.GarbledReasons)
		}
	})

	t.Run("very low letter ratio", func(t *testing.T) {
		words := strings.Fields("12345 67890 11111 22222 33333 44444")
		text := strings.Join(words, " ")
		got := c.ClassifyPage(PageInput{Number: 1, Words: words, Text: text})
		if got.Type != PageTypeBroken || got.GarbledReasons[0] != ReasonLetterRatioVeryLow {
			t.Errorf("expected letter_ratio_very_low, got %s %v", got.Type, got.GarbledReasons)
		}
	})

	t.Run("long block with few tokens", func(t *testing.T) {
		// One giant pseudo-word: letters so letter-ratio passes, but
		// 120 chars against a single token.
		word := strings.Repeat("ab", 60)
		got := c.ClassifyPage(PageInput{Number: 1, Words: []string{word}, Text: word})
		if got.Type != PageTypeBroken || got.GarbledReasons[0] != ReasonCharWordMismatch {
			t.Errorf("expected char_word_mismatch, got %s %v", got.Type, got.GarbledReasons)
		}
	})

	t.Run("soft replacement plus low words", func(t *testing.T) {
		words := strings.Fields("alpha bravo charlie delta echo foxtrot")
		// 6 valid words, >1% but <5% replacement chars.
		text := strings.Join(words, " ") + strings.Repeat("x", 40) + "�"
		got := c.ClassifyPage(PageInput{Number: 1, Words: words, Text: text})
		if got.Type != PageTypeBroken || got.GarbledReasons[0] != ReasonReplacementLowWords {
			t.Errorf("expected replacement_soft_plus_low_words, got %s %v", got.Type, got.GarbledReasons)
		}
	})

	t.Run("soft flags reported on healthy pages", func(t *testing.T) {
		var words []string
		for i := 0; i < 12; i++ {
			words = append(words, "kelime")
		}
		text := strings.Join(words, " ") + " �"
		got := c.ClassifyPage(PageInput{Number: 1, Words: words, Text: text})
		if got.IsGarbled {
			t.Errorf("page should not be garbled: %v", got.GarbledReasons)
		}
		if len(got.GarbledReasons) != 1 || got.GarbledReasons[0] != ReasonReplacementSoft {
			t.Errorf("expected soft flag reported, got %v", got.GarbledReasons)
		}
	})
}

func TestImageCoverage(t *testing.T) {
	t.Run("no images", func(t *testing.T) {
		if got := ImageCoverage(595, 842, nil); got != 0.0 {
			t.Errorf("expected 0.0, got %f", got)
		}
	})

	t.Run("sums and clamps", func(t *testing.T) {
		images := []ImageRect{{Width: 595, Height: 842}, {Width: 595, Height: 842}}
		if got := ImageCoverage(595, 842, images); got != 1.0 {
			t.Errorf("expected clamp to 1.0, got %f", got)
		}
	})

	t.Run("partial coverage", func(t *testing.T) {
		images := []ImageRect{{Width: 100, Height: 100}}
		got := ImageCoverage(200, 100, images)
		if got != 0.5 {
			t.Errorf("expected 0.5, got %f", got)
		}
	})

	t.Run("zero page area falls back", func(t *testing.T) {
		images := []ImageRect{{Width: 100, Height: 100}}
		if got := ImageCoverage(0, 0, images); got != 0.5 {
			t.Errorf("expected 0.5 fallback, got %f", got)
		}
	})

	t.Run("unmeasurable rects fall back", func(t *testing.T) {
		images := []ImageRect{{}, {}}
		if got := ImageCoverage(595, 842, images); got != 0.5 {
			t.Errorf("expected 0.5 fallback, got %f", got)
		}
	})
}
