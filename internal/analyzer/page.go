// Package analyzer classifies PDF pages and documents as text, image or
// broken. Text pages carry a usable searchable text layer, image pages need
// OCR, broken pages are garbled or empty beyond use.
package analyzer

import (
	"log/slog"
	"strings"

	"github.com/jaguuai/invoice-extraction-system/internal/textstats"
)

// PageType labels the usability of a single page.
type PageType string

const (
	PageTypeText   PageType = "text"
	PageTypeImage  PageType = "image"
	PageTypeBroken PageType = "broken"
)

// Garbled reason tags, in the order the checks run.
const (
	ReasonReplacementHard      = "replacement_hard"
	ReasonReplacementSoft      = "replacement_soft"
	ReasonControlCharsHigh     = "control_chars_high"
	ReasonFormatCharsSuspect   = "format_chars_suspicious"
	ReasonSingleCharTokensHigh = "single_char_tokens_high"
	ReasonLetterRatioVeryLow   = "letter_ratio_very_low"
	ReasonLetterRatioLowWords  = "letter_ratio_low_and_few_words"
	ReasonCharWordMismatch     = "char_word_mismatch"
	ReasonReplacementLowWords  = "replacement_soft_plus_low_words"
	ReasonFormatLowWords       = "format_chars_plus_low_words"
)

// ImageRect is the placed rectangle of an embedded image in page units.
// Zero dimensions mean the geometry could not be determined.
type ImageRect struct {
	Width  float64
	Height float64
}

// PageInput is the raw extraction for one page, as provided by the PDF text
// layer collaborator.
type PageInput struct {
	Number     int
	Words      []string // raw word list, unfiltered
	Text       string   // raw extracted text block
	Images     []ImageRect
	PageWidth  float64
	PageHeight float64
}

// PageAnalysis is the classification record for a single page. It is created
// once and never mutated.
type PageAnalysis struct {
	PageNumber     int      `json:"page_number"`
	Type           PageType `json:"page_type"`
	HasText        bool     `json:"has_text"`
	HasImages      bool     `json:"has_images"`
	WordCount      int      `json:"word_count"`
	CharCount      int      `json:"char_count"`
	ImageCount     int      `json:"image_count"`
	IsGarbled      bool     `json:"is_garbled"`
	GarbledReasons []string `json:"garbled_reasons,omitempty"`
	ImageCoverage  float64  `json:"image_coverage"`
	LetterRatio    float64  `json:"letter_ratio"`
}

// Classifier labels pages and documents. It holds no mutable state and is
// safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
	logger     *slog.Logger
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(t Thresholds, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{thresholds: t, logger: logger}
}

// ClassifyPage analyzes a single page and labels it text, image or broken.
func (c *Classifier) ClassifyPage(in PageInput) PageAnalysis {
	t := c.thresholds

	wordCount := textstats.CountValidWords(in.Words, t.MinCharsForValidWord)
	imageCount := len(in.Images)
	hasImages := imageCount > 0

	// Obvious scans carry no text layer; skip text statistics entirely.
	text := in.Text
	if wordCount == 0 && hasImages {
		text = ""
	}

	stripped := strings.TrimSpace(text)
	charCount := len([]rune(stripped))
	letterRatio := 0.0
	if stripped != "" {
		letterRatio = textstats.LetterRatio(stripped)
	}

	hasText := wordCount >= t.MinWordsForText ||
		(charCount >= t.MinCharsForText && letterRatio >= t.MinLetterRatioForText)

	isGarbled, reasons := c.detectGarbled(stripped, in.Words, charCount, wordCount, letterRatio)

	pageType := classifyPageType(hasText, hasImages, isGarbled)

	c.logger.Debug("page classified",
		"page", in.Number,
		"type", pageType,
		"words", wordCount,
		"images", imageCount,
		"garbled", isGarbled,
	)

	return PageAnalysis{
		PageNumber:     in.Number,
		Type:           pageType,
		HasText:        hasText,
		HasImages:      hasImages,
		WordCount:      wordCount,
		CharCount:      charCount,
		ImageCount:     imageCount,
		IsGarbled:      isGarbled,
		GarbledReasons: reasons,
		ImageCoverage:  ImageCoverage(in.PageWidth, in.PageHeight, in.Images),
		LetterRatio:    letterRatio,
	}
}

// classifyPageType applies the precedence rule: legible text wins over
// images, images win over nothing.
func classifyPageType(hasText, hasImages, isGarbled bool) PageType {
	switch {
	case hasText && !isGarbled:
		return PageTypeText
	case !hasText && hasImages:
		return PageTypeImage
	default:
		return PageTypeBroken
	}
}

// detectGarbled runs the ordered garbled-text checks. Hard signals return
// immediately with a single reason; soft signals accumulate and are reported
// even when the page is ultimately not judged garbled.
func (c *Classifier) detectGarbled(text string, rawWords []string, charCount, wordCount int, letterRatio float64) (bool, []string) {
	t := c.thresholds
	var reasons []string

	if text == "" {
		return false, reasons
	}

	replRatio := textstats.ReplacementRatio(text)
	if replRatio >= t.ReplacementHard {
		return true, []string{ReasonReplacementHard}
	}
	if replRatio >= t.ReplacementSoft {
		reasons = append(reasons, ReasonReplacementSoft)
	}

	ccRatio, cfRatio := textstats.ControlFormatRatios(text)
	if ccRatio > t.ControlCharLimit {
		return true, []string{ReasonControlCharsHigh}
	}
	if cfRatio > t.FormatCharLimit {
		reasons = append(reasons, ReasonFormatCharsSuspect)
	}

	if textstats.SingleCharRatio(rawWords) > t.SingleCharLimit {
		return true, []string{ReasonSingleCharTokensHigh}
	}

	if letterRatio < t.LetterRatioVeryLow {
		return true, []string{ReasonLetterRatioVeryLow}
	}
	if letterRatio < t.LetterRatioLow && wordCount < t.MinWordsForText {
		return true, []string{ReasonLetterRatioLowWords}
	}

	// Long block with almost no tokens is noise, not text.
	if charCount > 100 && wordCount < t.MinWordsForText {
		return true, []string{ReasonCharWordMismatch}
	}

	if contains(reasons, ReasonReplacementSoft) && wordCount < 10 {
		return true, []string{ReasonReplacementLowWords}
	}
	if contains(reasons, ReasonFormatCharsSuspect) && wordCount < 10 {
		return true, []string{ReasonFormatLowWords}
	}

	return false, reasons
}

// ImageCoverage returns the fraction of the page area covered by placed
// images, clamped to [0,1]. When geometry is unavailable the result is a
// crude hint: 0.5 if any image exists, 0.0 otherwise.
func ImageCoverage(pageWidth, pageHeight float64, images []ImageRect) float64 {
	if len(images) == 0 {
		return 0.0
	}

	pageArea := pageWidth * pageHeight
	if pageArea <= 0 {
		return 0.5
	}

	total := 0.0
	measured := false
	for _, img := range images {
		if img.Width <= 0 || img.Height <= 0 {
			continue
		}
		measured = true
		total += img.Width * img.Height
	}
	if !measured {
		return 0.5
	}

	coverage := total / pageArea
	if coverage > 1.0 {
		coverage = 1.0
	}
	return coverage
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
