package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khoahotran/candidate-dashboard/internal/config"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:          "loader",
	Short:        "Candidate database maintenance",
	Long:         "Applies schema migrations and imports scraped LinkedIn profile documents into the candidate database.",
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory holding config.yaml")
}

func loadDeps() (config.Config, logger.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.DB.DSN == "" {
		return config.Config{}, nil, fmt.Errorf("DB_DSN is required")
	}
	return cfg, logger.NewZapLogger(cfg.App.Env), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
