package main

import (
	"github.com/spf13/cobra"

	"github.com/khoahotran/candidate-dashboard/adapters/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE:  runMigrate,
}

var (
	migrationsDir string
	migrateDown   bool
	migrateSteps  int
)

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "migrations", "Directory holding migration files")
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back instead of applying")
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "Number of migrations to roll back with --down (0 = all)")

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadDeps()
	if err != nil {
		return err
	}
	defer log.Sync()

	return persistence.Migrate(cfg.DB.DSN, migrationsDir, migrateDown, migrateSteps, log)
}
