package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khoahotran/candidate-dashboard/adapters/persistence"
	"github.com/khoahotran/candidate-dashboard/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import LinkedIn profile JSON files",
	Long:  "Imports every *.json profile in the directory. Profiles whose LinkedIn id is already stored are skipped.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var importJSONReport bool

func init() {
	importCmd.Flags().BoolVar(&importJSONReport, "json", false, "Print the report as JSON")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadDeps()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	pool, err := persistence.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	im := importer.New(persistence.NewPostgresImportRepo(pool, log), log)
	report, err := im.ImportDir(ctx, args[0])
	if err != nil {
		return err
	}

	// New profiles change the filter vocabularies and stats.
	if report.Imported > 0 && cfg.Redis.Addr != "" {
		rdb, err := persistence.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Warn("Cannot reach Redis, filter cache left as is", zap.Error(err))
		} else {
			defer rdb.Close()
			if err := persistence.NewRedisFilterCache(rdb, cfg.Redis.CacheTTL).Invalidate(ctx); err != nil {
				log.Warn("Filter cache invalidation failed", zap.Error(err))
			}
		}
	}

	out := cmd.OutOrStdout()
	if importJSONReport {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintf(out, "Import completed: %d imported, %d skipped, %d failed (%d examined)\n",
		report.Imported, report.Skipped, report.Failed, report.Examined)
	for _, e := range report.Errors {
		fmt.Fprintf(out, "  %s\n", e)
	}
	return nil
}
