package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jaguuai/invoice-extraction-system/internal/api"
	"github.com/jaguuai/invoice-extraction-system/internal/pipeline"
	"github.com/jaguuai/invoice-extraction-system/internal/svcctx"
)

// maxUploadBytes caps a single PDF upload at 50 MiB.
const maxUploadBytes = 50 << 20

// ProcessEndpoint handles POST /process: multipart PDF upload, full
// pipeline run, structured result.
type ProcessEndpoint struct{}

func (e *ProcessEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/process", e.handler
}

func (e *ProcessEndpoint) RequiresInit() bool { return true }

func (e *ProcessEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	path, cleanup, err := saveUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	p := svcctx.PipelineFrom(r.Context())
	result, err := p.Process(r.Context(), path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("processing failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (e *ProcessEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "process <pdf>",
		Short: "Run the full extraction pipeline on a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var result pipeline.Result
			if err := client.UploadPDF(cmd.Context(), "/process", args[0], &result); err != nil {
				return err
			}
			return api.Output(result)
		},
	}
}

// saveUpload stores the multipart "file" field under the upload directory,
// one directory per upload ID. The cleanup removes the whole directory.
func saveUpload(r *http.Request) (string, func(), error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("missing file field: %w", err)
	}
	defer file.Close()

	uploadDir := svcctx.UploadDirFrom(r.Context())
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	dir := filepath.Join(uploadDir, uuid.New().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	name := filepath.Base(header.Filename)
	if name == "" || name == "." {
		name = "upload.pdf"
	}
	path := filepath.Join(dir, name)

	dst, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to store upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write upload: %w", err)
	}

	return path, cleanup, nil
}
