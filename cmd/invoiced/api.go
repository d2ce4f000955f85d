package main

import (
	"github.com/spf13/cobra"

	"github.com/jaguuai/invoice-extraction-system/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running invoiced server via HTTP.

These commands require a running server (invoiced serve).
Use --server to specify a custom server URL.

Examples:
  invoiced api health               # Check server health
  invoiced api status               # Detailed server status
  invoiced api analyze invoice.pdf  # Classify a PDF
  invoiced api process invoice.pdf  # Run the full pipeline`,
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	for _, ep := range endpoints.All() {
		apiCmd.AddCommand(ep.Command(getServerURL))
	}

	rootCmd.AddCommand(apiCmd)
}
