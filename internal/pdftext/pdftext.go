// Package pdftext reads the native layer of a PDF: page count and geometry
// via pdfcpu, text and image inventory via poppler-utils. Pages that need
// OCR are rendered to PNG with pdftoppm.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrPageOutOfRange is returned when a page index falls outside [1, PageCount].
var ErrPageOutOfRange = errors.New("page out of range")

// ImageInfo describes one embedded image, sized in page points. Zero
// dimensions mean the geometry could not be recovered.
type ImageInfo struct {
	Width  float64
	Height float64
}

// PageContent is the native layer of a single page.
type PageContent struct {
	Number     int
	Words      []string
	Text       string
	Images     []ImageInfo
	PageWidth  float64
	PageHeight float64
}

// Source reads one PDF file. Safe for concurrent use; every call shells out
// or re-reads the file, no state is shared between calls.
type Source struct {
	path      string
	pageCount int
	dims      []pageDim
	renderDPI int
	logger    *slog.Logger
}

type pageDim struct {
	width  float64
	height float64
}

// Open validates the file and reads its page geometry.
func Open(path string, renderDPI int, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if renderDPI <= 0 {
		renderDPI = 300
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("PDF not found: %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	dims, err := readPageDims(path, pageCount)
	if err != nil {
		// Geometry is best-effort: downstream treats unknown page area as a
		// half-coverage fallback.
		logger.Warn("page dimensions unavailable", "path", filepath.Base(path), "error", err)
		dims = make([]pageDim, pageCount)
	}

	return &Source{
		path:      path,
		pageCount: pageCount,
		dims:      dims,
		renderDPI: renderDPI,
		logger:    logger,
	}, nil
}

func readPageDims(path string, pageCount int) ([]pageDim, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := api.PageDims(f, nil)
	if err != nil {
		return nil, err
	}
	if len(raw) < pageCount {
		return nil, fmt.Errorf("got %d dims for %d pages", len(raw), pageCount)
	}

	dims := make([]pageDim, pageCount)
	for i := 0; i < pageCount; i++ {
		dims[i] = pageDim{width: raw[i].Width, height: raw[i].Height}
	}
	return dims, nil
}

// Path returns the source file path.
func (s *Source) Path() string { return s.path }

// PageCount returns the number of pages.
func (s *Source) PageCount() int { return s.pageCount }

func (s *Source) checkPage(page int) error {
	if page < 1 || page > s.pageCount {
		return fmt.Errorf("page %d of %d: %w", page, s.pageCount, ErrPageOutOfRange)
	}
	return nil
}

// Page reads the native content of one page (1-based).
func (s *Source) Page(ctx context.Context, page int) (*PageContent, error) {
	if err := s.checkPage(page); err != nil {
		return nil, err
	}

	text, err := s.pageText(ctx, page)
	if err != nil {
		return nil, err
	}

	images, err := s.pageImages(ctx, page)
	if err != nil {
		// An unreadable image inventory should not sink a page that has a
		// perfectly good text layer.
		s.logger.Warn("image inventory failed", "page", page, "error", err)
		images = nil
	}

	dim := s.dims[page-1]
	return &PageContent{
		Number:     page,
		Words:      strings.Fields(text),
		Text:       text,
		Images:     images,
		PageWidth:  dim.width,
		PageHeight: dim.height,
	}, nil
}

// DocumentText concatenates the native text of every page, separated by
// form feeds.
func (s *Source) DocumentText(ctx context.Context) (string, error) {
	parts := make([]string, 0, s.pageCount)
	for page := 1; page <= s.pageCount; page++ {
		text, err := s.pageText(ctx, page)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\f"), nil
}

// pageText extracts one page's text layer with pdftotext (poppler-utils).
// -layout preserves the physical arrangement so table rows survive.
func (s *Source) pageText(ctx context.Context, page int) (string, error) {
	pageStr := fmt.Sprintf("%d", page)
	cmd := exec.CommandContext(ctx, "pdftotext",
		"-f", pageStr,
		"-l", pageStr,
		"-layout",
		s.path,
		"-",
	)

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed on page %d: %w", page, err)
	}
	return string(out), nil
}

// pageImages lists one page's embedded images with pdfimages -list.
func (s *Source) pageImages(ctx context.Context, page int) ([]ImageInfo, error) {
	pageStr := fmt.Sprintf("%d", page)
	cmd := exec.CommandContext(ctx, "pdfimages",
		"-f", pageStr,
		"-l", pageStr,
		"-list",
		s.path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdfimages failed on page %d: %w", page, err)
	}
	return parseImageList(string(out)), nil
}

// RenderPage rasterizes one page to PNG with pdftoppm at the configured DPI.
func (s *Source) RenderPage(ctx context.Context, page int) ([]byte, error) {
	if err := s.checkPage(page); err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "invoiced-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")
	pageStr := fmt.Sprintf("%d", page)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", fmt.Sprintf("%d", s.renderDPI),
		"-singlefile",
		s.path,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	data, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	return data, nil
}
