package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaguuai/invoice-extraction-system/internal/config"
	"github.com/jaguuai/invoice-extraction-system/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the invoiced server",
	Long: `Start the invoiced HTTP server.

The server provides:
  - /health  - Basic server health check
  - /status  - Detailed status (version, pipeline, configured model)
  - /analyze - Classify an uploaded PDF without running extraction
  - /process - Run the full extraction pipeline on an uploaded PDF

Examples:
  invoiced serve                 # Start on default port 8080
  invoiced serve --port 3000     # Start on custom port
  invoiced serve --host 0.0.0.0  # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("host") || cmd.Flags().Changed("port") {
			cfg := mgr.Get()
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = serveHost
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = servePort
			}
		}
		mgr.WatchConfig()

		srv, err := server.New(server.Config{
			ConfigManager: mgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
