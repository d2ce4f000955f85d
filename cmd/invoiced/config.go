package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaguuai/invoice-extraction-system/internal/api"
	"github.com/jaguuai/invoice-extraction-system/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Long: `Write the default configuration to a YAML file.

Defaults to ./config.yaml. Existing files are not overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}

		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := mgr.Get()
		// Never print resolved secrets.
		redacted := *cfg
		if redacted.LLM.APIKey != "" {
			redacted.LLM.APIKey = "***"
		}
		return api.Output(&redacted)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
