package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jaguuai/invoice-extraction-system/internal/analyzer"
	"github.com/jaguuai/invoice-extraction-system/internal/api"
	"github.com/jaguuai/invoice-extraction-system/internal/svcctx"
)

// AnalyzeEndpoint handles POST /analyze: multipart PDF upload, document
// classification only, no OCR or extraction.
type AnalyzeEndpoint struct{}

func (e *AnalyzeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/analyze", e.handler
}

func (e *AnalyzeEndpoint) RequiresInit() bool { return true }

func (e *AnalyzeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	path, cleanup, err := saveUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	p := svcctx.PipelineFrom(r.Context())
	doc, err := p.Analyze(r.Context(), path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("analysis failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (e *AnalyzeEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <pdf>",
		Short: "Classify a PDF as text, image or broken",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var doc analyzer.DocumentAnalysis
			if err := client.UploadPDF(cmd.Context(), "/analyze", args[0], &doc); err != nil {
				return err
			}
			return api.Output(doc)
		},
	}
}
