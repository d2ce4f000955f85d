package analyzer

// DocumentAnalysis aggregates per-page verdicts into a document-level one.
type DocumentAnalysis struct {
	Type        PageType         `json:"pdf_type"`
	PageCount   int              `json:"page_count"`
	Pages       []PageAnalysis   `json:"pages"`
	TotalWords  int              `json:"total_words"`
	TotalImages int              `json:"total_images"`
	Confidence  float64          `json:"confidence"`
	TypeCounts  map[PageType]int `json:"page_type_counts"`
}

// ClassifyDocument aggregates page analyses into a document verdict.
// Zero pages classify as broken with confidence 0.
func (c *Classifier) ClassifyDocument(pages []PageAnalysis) DocumentAnalysis {
	counts := map[PageType]int{
		PageTypeText:   0,
		PageTypeImage:  0,
		PageTypeBroken: 0,
	}
	totalWords := 0
	totalImages := 0
	for _, p := range pages {
		counts[p.Type]++
		totalWords += p.WordCount
		totalImages += p.ImageCount
	}

	docType := determineType(pages, counts)

	analysis := DocumentAnalysis{
		Type:        docType,
		PageCount:   len(pages),
		Pages:       pages,
		TotalWords:  totalWords,
		TotalImages: totalImages,
		Confidence:  confidence(pages, docType),
		TypeCounts:  counts,
	}

	c.logger.Info("document classified",
		"type", analysis.Type,
		"confidence", analysis.Confidence,
		"text_pages", counts[PageTypeText],
		"image_pages", counts[PageTypeImage],
		"broken_pages", counts[PageTypeBroken],
	)

	return analysis
}

// determineType applies the priority rule over page-type fractions.
func determineType(pages []PageAnalysis, counts map[PageType]int) PageType {
	total := len(pages)
	if total == 0 {
		return PageTypeBroken
	}

	broken := counts[PageTypeBroken]
	text := counts[PageTypeText]
	image := counts[PageTypeImage]

	switch {
	case broken == total:
		return PageTypeBroken
	case float64(broken)/float64(total) > 0.5:
		return PageTypeBroken
	case float64(text)/float64(total) >= 0.5:
		return PageTypeText
	case float64(image)/float64(total) >= 0.5:
		return PageTypeImage
	}

	// Genuine three-way split: ties favor text.
	if text >= image {
		return PageTypeText
	}
	return PageTypeImage
}

// confidence is the fraction of pages matching the final type. A broken
// verdict is always confidence 0, even when every page agrees; there is no
// such thing as a confidently unusable document.
func confidence(pages []PageAnalysis, docType PageType) float64 {
	if docType == PageTypeBroken || len(pages) == 0 {
		return 0.0
	}
	matching := 0
	for _, p := range pages {
		if p.Type == docType {
			matching++
		}
	}
	return float64(matching) / float64(len(pages))
}
