package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jjenkins/clinicmap/internal/service"
)

var fixHoursExecute bool

var fixHoursCmd = &cobra.Command{
	Use:   "fix-hours",
	Short: "Remove the Sunday tag from express and limited-time hours entries",
	Long: `Finds hours entries whose day descriptor or label mentions "express" or
"until" but whose Days of Week still include Sun, and removes Sun.

Without --execute the planned changes are only printed.

Examples:
  # Preview
  clinicmap fix-hours

  # Apply
  clinicmap fix-hours --execute`,
	RunE: runFixHours,
}

func init() {
	rootCmd.AddCommand(fixHoursCmd)
	fixHoursCmd.Flags().BoolVar(&fixHoursExecute, "execute", false, "write the corrections to Airtable")
}

func runFixHours(cmd *cobra.Command, args []string) error {
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

	fixes := service.PlanHoursFixes(entries)
	if len(fixes) == 0 {
		logger.Info().Msg("No hours entries need fixing")
		return nil
	}

	if !fixHoursExecute {
		service.PrintHoursFixes(out, fixes, nil)
		logger.Info().Int("count", len(fixes)).Msg("Dry run, pass --execute to apply")
		return nil
	}

	stats, results := service.NewHoursFixer(client, cfg, logger).Apply(ctx, fixes)
	service.PrintHoursFixes(out, fixes, results)
	service.PrintWriteSummary(out, "Hours Fix Summary", stats)

	if err := ctx.Err(); err != nil {
		return err
	}
	return checkWrites(stats)
}
