package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jaguuai/invoice-extraction-system/internal/analyzer"
	"github.com/jaguuai/invoice-extraction-system/internal/api"
	"github.com/jaguuai/invoice-extraction-system/internal/layout"
	"github.com/jaguuai/invoice-extraction-system/internal/normalize"
	"github.com/jaguuai/invoice-extraction-system/internal/pdftext"
	"github.com/jaguuai/invoice-extraction-system/internal/pipeline"
	"github.com/jaguuai/invoice-extraction-system/internal/server/endpoints"
	"github.com/jaguuai/invoice-extraction-system/internal/svcctx"
	"github.com/jaguuai/invoice-extraction-system/internal/validate"
)

// staticSource serves one synthetic native-text page regardless of path.
type staticSource struct {
	text string
}

func (s *staticSource) PageCount() int { return 1 }

func (s *staticSource) Page(_ context.Context, page int) (*pdftext.PageContent, error) {
	if page != 1 {
		return nil, fmt.Errorf("page %d: %w", page, pdftext.ErrPageOutOfRange)
	}
	return &pdftext.PageContent{
		Number:     1,
		Words:      strings.Fields(s.text),
		Text:       s.text,
		PageWidth:  612,
		PageHeight: 792,
	}, nil
}

func (s *staticSource) RenderPage(_ context.Context, page int) ([]byte, error) {
	return nil, fmt.Errorf("no render for page %d", page)
}

const invoiceText = `FATURA FTR-2025-001
Satıcı: ABC Bilişim Hizmetleri Limited Şirketi İstanbul
Alıcı: Müşteri Anonim Şirketi Ankara
Açıklama Miktar Birim Fiyat Tutar
Yazılım geliştirme hizmeti bedeli aylık sözleşme kapsamında`

func newTestHandler(t *testing.T, pipe *pipeline.Pipeline) http.Handler {
	t.Helper()

	s := &Server{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		services: &svcctx.Services{
			Pipeline:  pipe,
			Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
			UploadDir: t.TempDir(),
		},
	}

	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)
	return s.withServices(mux)
}

func newTextPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(pipeline.Config{
		Classifier: analyzer.NewClassifier(analyzer.DefaultThresholds(), nil),
		Normalizer: normalize.New(normalize.DefaultConfig(), nil),
		Tables:     layout.NewTableParser(layout.DefaultConfig(), nil),
		Validator:  validate.New(validate.DefaultConfig(), nil),
		OpenSource: func(string) (pipeline.PageSource, error) {
			return &staticSource{text: invoiceText}, nil
		},
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return p
}

// uploadRequest builds a multipart POST with a single "file" field.
func uploadRequest(t *testing.T, path string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "invoice.pdf")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	// Content is irrelevant: the test pipeline ignores the stored file.
	fw.Write([]byte("%PDF-1.4 stub"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(t, newTextPipeline(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp endpoints.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestStatusEndpoint(t *testing.T) {
	h := newTestHandler(t, newTextPipeline(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp endpoints.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Pipeline != "ready" {
		t.Errorf("pipeline = %q, want ready", resp.Pipeline)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	h := newTestHandler(t, newTextPipeline(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/analyze"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var doc analyzer.DocumentAnalysis
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Type != analyzer.PageTypeText {
		t.Errorf("document type = %q, want %q", doc.Type, analyzer.PageTypeText)
	}
	if len(doc.Pages) != 1 {
		t.Errorf("pages = %d, want 1", len(doc.Pages))
	}
}

func TestProcessEndpoint(t *testing.T) {
	h := newTestHandler(t, newTextPipeline(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/process"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var result pipeline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Status != pipeline.StatusCompleted {
		t.Errorf("status = %q, want %q", result.Status, pipeline.StatusCompleted)
	}
	if !strings.Contains(result.Text, "FATURA") {
		t.Errorf("result text missing invoice content: %q", result.Text)
	}
}

func TestProcessEndpointMissingFile(t *testing.T) {
	h := newTestHandler(t, newTextPipeline(t))

	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRequireInitBlocksWhenNotReady(t *testing.T) {
	s := &Server{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		// no services: pipeline endpoints must refuse
	}

	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)
	h := s.withServices(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/process"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("process status = %d, want 503", rec.Code)
	}

	// Health stays reachable without init.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}
