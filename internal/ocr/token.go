// Package ocr defines the optical character recognition collaborator
// contract: engines turn page images into positioned text tokens with
// confidence scores. The rest of the pipeline treats recognition as a black
// box and only consumes tokens.
package ocr

import (
	"sort"
	"strings"
)

// Token is a single recognized text fragment with its axis-aligned bounding
// box in source-image pixel coordinates. Tokens are immutable once created.
type Token struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0.0 - 1.0
	X0         float64 `json:"x0"`
	Y0         float64 `json:"y0"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	CenterX    float64 `json:"center_x"`
	CenterY    float64 `json:"center_y"`
}

// NewToken builds a token and derives its center coordinates.
func NewToken(text string, confidence, x0, y0, x1, y1 float64) Token {
	return Token{
		Text:       text,
		Confidence: confidence,
		X0:         x0,
		Y0:         y0,
		X1:         x1,
		Y1:         y1,
		CenterX:    (x0 + x1) / 2,
		CenterY:    (y0 + y1) / 2,
	}
}

// SortByReadingOrder orders tokens top-to-bottom, then left-to-right.
func SortByReadingOrder(tokens []Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].CenterY != tokens[j].CenterY {
			return tokens[i].CenterY < tokens[j].CenterY
		}
		return tokens[i].CenterX < tokens[j].CenterX
	})
}

// Result is the aggregate output of recognizing one image.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	CharCount  int     `json:"char_count"`
	WordCount  int     `json:"word_count"`
	LineCount  int     `json:"line_count"`
	Tokens     []Token `json:"tokens"`
}

// NewResult assembles a Result from recognized tokens, deriving the plain
// text block (one token per line) and the average confidence.
func NewResult(tokens []Token) *Result {
	SortByReadingOrder(tokens)

	lines := make([]string, 0, len(tokens))
	sum := 0.0
	for _, t := range tokens {
		lines = append(lines, t.Text)
		sum += t.Confidence
	}

	text := strings.Join(lines, "\n")
	avg := 0.0
	if len(tokens) > 0 {
		avg = sum / float64(len(tokens))
	}

	wordCount := 0
	if text != "" {
		wordCount = len(strings.Fields(text))
	}

	return &Result{
		Text:       text,
		Confidence: avg,
		CharCount:  len([]rune(text)),
		WordCount:  wordCount,
		LineCount:  len(lines),
		Tokens:     tokens,
	}
}
