package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conlan-group/listings-cli/internal/config"
)

var cfg *config.Config

// exitCode lets a command report failure through main's exit status after
// the post-run hooks (logger sync included) have finished.
var exitCode int

var rootCmd = &cobra.Command{
	Use:   "listings-cli",
	Short: "Real estate listing ingestion pipeline",
	Long:  "Fetches listing pages from supported sites, extracts structured records, geocodes addresses against a configured region, and stores the results.",
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
	os.Exit(exitCode)
}
