package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jjenkins/clinicmap/internal/service"
)

var orphanHoursExecute bool

var orphanHoursCmd = &cobra.Command{
	Use:   "orphan-hours",
	Short: "List hours entries not linked to any clinic, optionally deleting them",
	RunE:  runOrphanHours,
}

func init() {
	rootCmd.AddCommand(orphanHoursCmd)
	orphanHoursCmd.Flags().BoolVar(&orphanHoursExecute, "execute", false, "delete the orphan entries from Airtable")
}

func runOrphanHours(cmd *cobra.Command, args []string) error {
	client, err := newAirtableClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	entries, err := service.LoadHours(ctx, client, cfg)
	if err != nil {
		return err
	}

	orphans := service.PlanOrphanHours(entries)
	service.PrintOrphanHours(out, orphans)
	if len(orphans) == 0 || !orphanHoursExecute {
		return nil
	}

	stats, _ := service.NewDeleter(client, logger).DeleteAll(ctx, cfg.HoursTable, orphans, cfg.WriteDelay)
	service.PrintWriteSummary(out, "Orphan Hours Summary", stats)

	if err := ctx.Err(); err != nil {
		return err
	}
	return checkWrites(stats)
}
