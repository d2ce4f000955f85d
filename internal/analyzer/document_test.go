package analyzer

import (
	"math"
	"testing"
)

func pagesOf(types ...PageType) []PageAnalysis {
	pages := make([]PageAnalysis, len(types))
	for i, typ := range types {
		pages[i] = PageAnalysis{PageNumber: i + 1, Type: typ}
	}
	return pages
}

func TestClassifyDocument(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), nil)

	tests := []struct {
		name           string
		pages          []PageAnalysis
		wantType       PageType
		wantConfidence float64
	}{
		{
			name:           "zero pages is broken",
			pages:          nil,
			wantType:       PageTypeBroken,
			wantConfidence: 0.0,
		},
		{
			name:           "all broken has zero confidence despite agreement",
			pages:          pagesOf(PageTypeBroken, PageTypeBroken, PageTypeBroken),
			wantType:       PageTypeBroken,
			wantConfidence: 0.0,
		},
		{
			name:           "majority broken",
			pages:          pagesOf(PageTypeBroken, PageTypeBroken, PageTypeText),
			wantType:       PageTypeBroken,
			wantConfidence: 0.0,
		},
		{
			name: "six text three image one broken",
			pages: pagesOf(
				PageTypeText, PageTypeText, PageTypeText, PageTypeText, PageTypeText, PageTypeText,
				PageTypeImage, PageTypeImage, PageTypeImage,
				PageTypeBroken,
			),
			wantType:       PageTypeText,
			wantConfidence: 0.6,
		},
		{
			name:           "half image",
			pages:          pagesOf(PageTypeImage, PageTypeImage, PageTypeText, PageTypeBroken),
			wantType:       PageTypeImage,
			wantConfidence: 0.5,
		},
		{
			name: "no majority favors larger of text and image",
			pages: pagesOf(
				PageTypeImage, PageTypeImage, PageTypeImage,
				PageTypeText, PageTypeText,
				PageTypeBroken, PageTypeBroken, PageTypeBroken,
			),
			wantType:       PageTypeImage,
			wantConfidence: 0.375,
		},
		{
			name: "three way tie favors text",
			pages: pagesOf(
				PageTypeText, PageTypeText,
				PageTypeImage, PageTypeImage,
				PageTypeBroken, PageTypeBroken, PageTypeBroken,
			),
			wantType:       PageTypeText,
			wantConfidence: 2.0 / 7.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ClassifyDocument(tt.pages)
			if got.Type != tt.wantType {
				t.Errorf("type: expected %s, got %s", tt.wantType, got.Type)
			}
			if math.Abs(got.Confidence-tt.wantConfidence) > 1e-9 {
				t.Errorf("confidence: expected %f, got %f", tt.wantConfidence, got.Confidence)
			}
			if got.PageCount != len(tt.pages) {
				t.Errorf("page count: expected %d, got %d", len(tt.pages), got.PageCount)
			}
		})
	}
}

func TestClassifyDocument_Counts(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), nil)

	pages := []PageAnalysis{
		{PageNumber: 1, Type: PageTypeText, WordCount: 120, ImageCount: 1},
		{PageNumber: 2, Type: PageTypeImage, WordCount: 0, ImageCount: 2},
	}

	got := c.ClassifyDocument(pages)
	if got.TotalWords != 120 {
		t.Errorf("expected 120 total words, got %d", got.TotalWords)
	}
	if got.TotalImages != 3 {
		t.Errorf("expected 3 total images, got %d", got.TotalImages)
	}
	if got.TypeCounts[PageTypeText] != 1 || got.TypeCounts[PageTypeImage] != 1 || got.TypeCounts[PageTypeBroken] != 0 {
		t.Errorf("unexpected type counts: %v", got.TypeCounts)
	}
}
