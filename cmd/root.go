package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/marketpulse/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "marketpulse",
	Short: "Corporate intelligence reports from LLM analysis and live web evidence",
	Long:  "Asks an LLM provider for a tagged company analysis, parses and de-duplicates it, merges live web-search evidence, and serves the report over a CLI and JSON API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
