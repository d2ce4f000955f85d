// Package endpoints implements the HTTP surface of invoiced. Each endpoint
// pairs its route with a CLI command calling it, so the HTTP API and the
// `invoiced api` tree never drift apart.
package endpoints

import (
	"net/http"

	"github.com/bytedance/sonic"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out, err := sonic.Marshal(v)
	if err != nil {
		return
	}
	w.Write(out)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
