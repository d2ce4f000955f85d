package main

import (
	"github.com/spf13/cobra"

	"github.com/jaguuai/invoice-extraction-system/internal/api"
	"github.com/jaguuai/invoice-extraction-system/internal/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "invoiced",
	Short: "Invoice extraction pipeline with OCR and LLM-powered field extraction",
	Long: `Invoiced turns PDF invoices into structured, validated data.

The pipeline includes:
  - Page and document classification (text, image, broken)
  - Image preprocessing and Tesseract OCR for scanned pages
  - Bounding-box table reconstruction for line items
  - OCR noise normalization via majority voting
  - LLM-based field extraction with schema validation
  - Arithmetic and VAT consistency checks`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "json", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
