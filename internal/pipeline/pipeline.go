// Package pipeline orchestrates invoice processing end to end: classify the
// document, route each page to native text extraction or rendering plus OCR,
// reconstruct line-item tables, normalize the combined text, extract
// semantic fields with the LLM and validate the assembled invoice.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jaguuai/invoice-extraction-system/internal/analyzer"
	"github.com/jaguuai/invoice-extraction-system/internal/invoice"
	"github.com/jaguuai/invoice-extraction-system/internal/layout"
	"github.com/jaguuai/invoice-extraction-system/internal/normalize"
	"github.com/jaguuai/invoice-extraction-system/internal/ocr"
	"github.com/jaguuai/invoice-extraction-system/internal/pdftext"
	"github.com/jaguuai/invoice-extraction-system/internal/preprocess"
	"github.com/jaguuai/invoice-extraction-system/internal/validate"
)

// PageSource is the slice of pdftext.Source the pipeline needs. Narrowed to
// an interface so tests can feed synthetic documents.
type PageSource interface {
	PageCount() int
	Page(ctx context.Context, page int) (*pdftext.PageContent, error)
	RenderPage(ctx context.Context, page int) ([]byte, error)
}

// SourceOpener opens a page source for a PDF path.
type SourceOpener func(path string) (PageSource, error)

// FieldExtractor pulls semantic invoice fields out of normalized text.
// Implemented by extract.Extractor; nil disables the LLM stage.
type FieldExtractor interface {
	Extract(ctx context.Context, text string) (*invoice.Invoice, error)
}

// Status values for a pipeline run.
const (
	StatusCompleted      = "completed"
	StatusBrokenDocument = "broken_document"
)

// PageResult records what happened to one page.
type PageResult struct {
	Number        int                `json:"number"`
	Type          analyzer.PageType  `json:"type"`
	Text          string             `json:"text,omitempty"`
	OCRConfidence float64            `json:"ocr_confidence,omitempty"`
	Items         []invoice.LineItem `json:"items,omitempty"`
	Skipped       bool               `json:"skipped,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// Result is the full outcome of one document run.
type Result struct {
	Status     string                     `json:"status"`
	Document   *analyzer.DocumentAnalysis `json:"document"`
	Pages      []PageResult               `json:"pages"`
	Text       string                     `json:"text,omitempty"`
	Invoice    *invoice.Invoice           `json:"invoice,omitempty"`
	Validation *validate.Report           `json:"validation,omitempty"`
}

// Config holds pipeline construction parameters.
type Config struct {
	Classifier   *analyzer.Classifier
	Preprocessor *preprocess.Preprocessor
	Engine       ocr.Engine
	Normalizer   *normalize.Normalizer
	Tables       *layout.TableParser
	Extractor    FieldExtractor
	Validator    *validate.Validator
	OpenSource   SourceOpener

	// MaxWorkers bounds concurrent page OCR. Zero means 1.
	MaxWorkers int

	// DefaultVATRate backfills totals computed from table items.
	DefaultVATRate float64

	Logger *slog.Logger
}

// Pipeline runs documents. Safe for concurrent use.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a pipeline. Classifier, Normalizer, Tables, Validator and
// OpenSource are required; Engine, Preprocessor and Extractor degrade
// gracefully when nil (image pages are skipped, the LLM stage is skipped).
func New(cfg Config) (*Pipeline, error) {
	if cfg.Classifier == nil || cfg.Normalizer == nil || cfg.Tables == nil || cfg.Validator == nil {
		return nil, fmt.Errorf("pipeline: missing required component")
	}
	if cfg.OpenSource == nil {
		return nil, fmt.Errorf("pipeline: missing source opener")
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if cfg.DefaultVATRate <= 0 {
		cfg.DefaultVATRate = 0.18
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: cfg.Logger}, nil
}

// Analyze classifies a document without extracting anything.
func (p *Pipeline) Analyze(ctx context.Context, path string) (*analyzer.DocumentAnalysis, error) {
	src, err := p.cfg.OpenSource(path)
	if err != nil {
		return nil, err
	}

	pages, err := p.classifyPages(ctx, src)
	if err != nil {
		return nil, err
	}
	doc := p.cfg.Classifier.ClassifyDocument(pages)
	return &doc, nil
}

// Process runs the full pipeline on one PDF. A broken document is a defined
// outcome, not an error: the result carries the analysis and stops there.
func (p *Pipeline) Process(ctx context.Context, path string) (*Result, error) {
	src, err := p.cfg.OpenSource(path)
	if err != nil {
		return nil, err
	}

	pages, err := p.classifyPages(ctx, src)
	if err != nil {
		return nil, err
	}
	doc := p.cfg.Classifier.ClassifyDocument(pages)

	if doc.Type == analyzer.PageTypeBroken {
		p.logger.Warn("broken document, stopping", "path", path, "pages", doc.PageCount)
		return &Result{
			Status:   StatusBrokenDocument,
			Document: &doc,
			Pages:    skippedPages(pages),
		}, nil
	}

	pageResults := p.processPages(ctx, src, pages)

	var texts []string
	var items []invoice.LineItem
	for _, pr := range pageResults {
		if pr.Text != "" {
			texts = append(texts, pr.Text)
		}
		items = append(items, pr.Items...)
	}

	text := p.cfg.Normalizer.Normalize(strings.Join(texts, "\n"))

	inv, err := p.extractFields(ctx, text)
	if err != nil {
		// The structural result is still useful without semantic fields.
		p.logger.Error("field extraction failed", "path", path, "error", err)
		inv = &invoice.Invoice{}
	}
	p.assembleInvoice(inv, items)

	report := p.cfg.Validator.Validate(inv)

	return &Result{
		Status:     StatusCompleted,
		Document:   &doc,
		Pages:      pageResults,
		Text:       text,
		Invoice:    inv,
		Validation: report,
	}, nil
}

// classifyPages reads native content for every page and classifies it.
func (p *Pipeline) classifyPages(ctx context.Context, src PageSource) ([]analyzer.PageAnalysis, error) {
	count := src.PageCount()
	pages := make([]analyzer.PageAnalysis, 0, count)

	for n := 1; n <= count; n++ {
		content, err := src.Page(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", n, err)
		}

		rects := make([]analyzer.ImageRect, 0, len(content.Images))
		for _, img := range content.Images {
			rects = append(rects, analyzer.ImageRect{Width: img.Width, Height: img.Height})
		}

		pages = append(pages, p.cfg.Classifier.ClassifyPage(analyzer.PageInput{
			Number:     content.Number,
			Words:      content.Words,
			Text:       content.Text,
			Images:     rects,
			PageWidth:  content.PageWidth,
			PageHeight: content.PageHeight,
		}))
	}
	return pages, nil
}

// processPages routes each page by its classified type. Image pages run
// concurrently under the worker semaphore; text pages are cheap and run
// inline afterwards.
func (p *Pipeline) processPages(ctx context.Context, src PageSource, pages []analyzer.PageAnalysis) []PageResult {
	results := make([]PageResult, len(pages))
	sem := make(chan struct{}, p.cfg.MaxWorkers)
	done := make(chan int, len(pages))
	inFlight := 0

	for i, pa := range pages {
		results[i] = PageResult{Number: pa.PageNumber, Type: pa.Type}

		switch pa.Type {
		case analyzer.PageTypeImage:
			inFlight++
			sem <- struct{}{} // acquire
			go func(idx int, page int) {
				defer func() { <-sem }() // release
				results[idx] = p.processImagePage(ctx, src, results[idx], page)
				done <- idx
			}(i, pa.PageNumber)

		case analyzer.PageTypeText:
			content, err := src.Page(ctx, pa.PageNumber)
			if err != nil {
				results[i].Error = err.Error()
				continue
			}
			results[i].Text = content.Text

		default:
			results[i].Skipped = true
		}
	}

	for ; inFlight > 0; inFlight-- {
		<-done
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Number < results[j].Number })
	return results
}

// processImagePage renders, preprocesses and OCRs one page, then
// reconstructs its table from the positioned tokens.
func (p *Pipeline) processImagePage(ctx context.Context, src PageSource, pr PageResult, page int) PageResult {
	if p.cfg.Engine == nil {
		pr.Skipped = true
		pr.Error = "no OCR engine configured"
		return pr
	}

	data, err := src.RenderPage(ctx, page)
	if err != nil {
		pr.Error = fmt.Sprintf("render failed: %v", err)
		return pr
	}

	imageWidth := 0.0
	if p.cfg.Preprocessor != nil {
		prep, err := p.cfg.Preprocessor.Process(data)
		if err != nil {
			p.logger.Warn("preprocessing failed, using raw render", "page", page, "error", err)
		} else {
			data = prep.Image
			imageWidth = float64(prep.Width)
		}
	}

	res, err := p.cfg.Engine.Recognize(ctx, data, page)
	if err != nil {
		pr.Error = fmt.Sprintf("ocr failed: %v", err)
		return pr
	}

	pr.Text = res.Text
	pr.OCRConfidence = res.Confidence
	if imageWidth == 0 && len(res.Tokens) > 0 {
		imageWidth = maxTokenX(res.Tokens)
	}
	pr.Items = p.cfg.Tables.Parse(res.Tokens, imageWidth)
	return pr
}

// extractFields calls the LLM stage when configured.
func (p *Pipeline) extractFields(ctx context.Context, text string) (*invoice.Invoice, error) {
	if p.cfg.Extractor == nil || strings.TrimSpace(text) == "" {
		return &invoice.Invoice{}, nil
	}
	return p.cfg.Extractor.Extract(ctx, text)
}

// assembleInvoice merges reconstructed table items into the extracted
// invoice. Spatial reconstruction beats the LLM on line items: when table
// items exist they replace the model's and the totals are recomputed.
func (p *Pipeline) assembleInvoice(inv *invoice.Invoice, items []invoice.LineItem) {
	if len(items) == 0 {
		return
	}

	inv.Items = items

	subtotal := 0.0
	for _, item := range items {
		subtotal += item.TotalPrice
	}
	rate := inv.VATRate
	if rate == 0 {
		rate = p.cfg.DefaultVATRate
	}
	inv.Subtotal = subtotal
	inv.VATRate = rate
	inv.VATTotal = subtotal * rate
	inv.GrandTotal = subtotal + inv.VATTotal
}

func skippedPages(pages []analyzer.PageAnalysis) []PageResult {
	out := make([]PageResult, len(pages))
	for i, pa := range pages {
		out[i] = PageResult{Number: pa.PageNumber, Type: pa.Type, Skipped: true}
	}
	return out
}

func maxTokenX(tokens []ocr.Token) float64 {
	max := 0.0
	for _, t := range tokens {
		if t.X1 > max {
			max = t.X1
		}
	}
	return max
}
