package cmd

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/jjenkins/clinicmap/internal/service"
	"github.com/jjenkins/clinicmap/internal/store"
)

var exportNoHistory bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Regenerate the published GeoJSON and virtual clinic files from Airtable",
	Long: `Fetches every clinic and hours record, joins hours to clinics, and writes
the map dataset (DATASET_PATH) and the virtual clinic list (VIRTUAL_DATASET_PATH).

When DATABASE_URL is set, each run is recorded in PostgreSQL along with a
snapshot of every clinic whose content changed since the previous run.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolVar(&exportNoHistory, "no-history", false, "do not record the run in the database")
}

func runExport(cmd *cobra.Command, args []string) error {
	client, err := newAirtableClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var recorder service.SyncRecorder
	if cfg.DatabaseURL != "" && !exportNoHistory {
		logger.Info().Msg("Connecting to database...")
		var db *sql.DB
		db, err = store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := store.EnsureSchema(ctx, db); err != nil {
			return err
		}
		recorder = store.NewSyncStore(db)
	}

	stats, err := service.NewExporter(client, recorder, cfg, logger).Export(ctx)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn().Msg("Export cancelled")
		}
		return err
	}

	service.PrintExportSummary(cmd.OutOrStdout(), stats)
	return nil
}
