package ocr

import (
	"testing"
)

func TestNewToken(t *testing.T) {
	tok := NewToken("Ürün", 0.92, 10, 20, 110, 40)
	if tok.CenterX != 60 {
		t.Errorf("expected center_x 60, got %f", tok.CenterX)
	}
	if tok.CenterY != 30 {
		t.Errorf("expected center_y 30, got %f", tok.CenterY)
	}
}

func TestNewResult(t *testing.T) {
	t.Run("empty token set", func(t *testing.T) {
		res := NewResult(nil)
		if res.Text != "" || res.Confidence != 0 || res.WordCount != 0 {
			t.Errorf("unexpected result for empty input: %+v", res)
		}
	})

	t.Run("sorts by reading order", func(t *testing.T) {
		tokens := []Token{
			NewToken("ikinci", 0.8, 0, 100, 50, 120),
			NewToken("üçüncü", 0.9, 60, 100, 110, 120),
			NewToken("birinci", 0.7, 0, 10, 50, 30),
		}
		res := NewResult(tokens)
		if res.Text != "birinci\nikinci\nüçüncü" {
			t.Errorf("unexpected text order: %q", res.Text)
		}
		if res.LineCount != 3 || res.WordCount != 3 {
			t.Errorf("unexpected counts: lines=%d words=%d", res.LineCount, res.WordCount)
		}
	})

	t.Run("averages confidence", func(t *testing.T) {
		tokens := []Token{
			NewToken("a", 0.5, 0, 0, 10, 10),
			NewToken("b", 1.0, 20, 0, 30, 10),
		}
		res := NewResult(tokens)
		if res.Confidence != 0.75 {
			t.Errorf("expected 0.75, got %f", res.Confidence)
		}
	})
}
