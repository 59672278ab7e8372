package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jjenkins/clinicmap/internal/model"
	"github.com/jjenkins/clinicmap/internal/store"
)

var (
	historyLimit  int
	historyRecord string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded export runs or the change history of one clinic",
	Long: `Lists the most recent export runs recorded in PostgreSQL. With --record,
lists every snapshot stored for that clinic instead.

Requires DATABASE_URL.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to show")
	historyCmd.Flags().StringVar(&historyRecord, "record", "", "clinic record id")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.DatabaseURL == "" {
		return errors.New("configuration error: DATABASE_URL is not set")
	}
	ctx := cmd.Context()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.EnsureSchema(ctx, db); err != nil {
		return err
	}
	syncStore := store.NewSyncStore(db)

	if historyRecord != "" {
		snaps, err := syncStore.GetRecordHistory(ctx, historyRecord)
		if err != nil {
			return err
		}
		printSnapshots(cmd.OutOrStdout(), historyRecord, snaps)
		return nil
	}

	runs, err := syncStore.ListRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	printRuns(cmd.OutOrStdout(), runs)
	return nil
}

func printRuns(out io.Writer, runs []model.SyncRun) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No export runs recorded")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tFINISHED\tRECORDS\tMAPPED\tVIRTUAL\tCHANGED\tRUN")
	for _, r := range runs {
		finished := "in progress"
		if r.FinishedAt.Valid {
			finished = r.FinishedAt.Time.Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.StartedAt.Format(time.DateTime), finished,
			r.TotalRecords, r.RecordsWithCoords, r.VirtualRecords, r.Changed, r.ID)
	}
	w.Flush()
}

func printSnapshots(out io.Writer, recordID string, snaps []model.RecordSnapshot) {
	if len(snaps) == 0 {
		fmt.Fprintf(out, "No snapshots for %s\n", recordID)
		return
	}
	fmt.Fprintf(out, "History for %s (%s):\n", recordID, snaps[0].ClinicName)
	for _, s := range snaps {
		fmt.Fprintf(out, "  %s  %s  run %s\n", s.CreatedAt.Format(time.DateTime), s.Checksum, s.SyncRunID)
	}
}
