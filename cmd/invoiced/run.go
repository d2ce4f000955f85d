package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaguuai/invoice-extraction-system/internal/api"
	"github.com/jaguuai/invoice-extraction-system/internal/config"
	"github.com/jaguuai/invoice-extraction-system/internal/pipeline"
	"github.com/jaguuai/invoice-extraction-system/internal/server"
)

var runNoLLM bool

var runCmd = &cobra.Command{
	Use:   "run <pdf>",
	Short: "Process a PDF locally without a server",
	Long: `Run the full extraction pipeline on a PDF in-process.

Unlike "invoiced api process", this does not require a running server.
The result is printed to stdout in the selected output format.

Examples:
  invoiced run invoice.pdf             # Full pipeline, JSON output
  invoiced run invoice.pdf -o yaml     # YAML output
  invoiced run invoice.pdf --no-llm    # Skip LLM field extraction`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, err := localPipeline()
		if err != nil {
			return err
		}

		result, err := pipe.Process(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return api.Output(result)
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <pdf>",
	Short: "Classify a PDF locally without a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, err := localPipeline()
		if err != nil {
			return err
		}

		doc, err := pipe.Analyze(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return api.Output(doc)
	},
}

func localPipeline() (*pipeline.Pipeline, error) {
	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	return server.BuildPipeline(mgr.Get(), logger, runNoLLM)
}

func init() {
	runCmd.Flags().BoolVar(&runNoLLM, "no-llm", false, "Skip LLM field extraction")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(inspectCmd)
}
