package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jjenkins/clinicmap/internal/service"
)

var (
	deleteTable   string
	deleteExecute bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <record-id>",
	Short: "Delete a decommissioned record",
	Long: `Shows the record that would be deleted. With --execute the record is
deleted, and the command fails unless Airtable acknowledges the deletion.

--table accepts "clinics", "hours", or a raw table id.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringVar(&deleteTable, "table", "clinics", "table holding the record")
	deleteCmd.Flags().BoolVar(&deleteExecute, "execute", false, "delete the record")
}

func resolveTable(name string) string {
	switch name {
	case "clinics":
		return cfg.ClinicsTable
	case "hours":
		return cfg.HoursTable
	default:
		return name
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := newAirtableClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	id := args[0]
	table := resolveTable(deleteTable)
	deleter := service.NewDeleter(client, logger)

	rec, err := deleter.Preview(ctx, table, id)
	if err != nil {
		return err
	}
	fields, err := json.MarshalIndent(rec.Fields, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	fmt.Fprintf(out, "Record %s:\n%s\n", rec.ID, fields)

	if !deleteExecute {
		logger.Info().Str("record", id).Msg("Dry run, pass --execute to delete")
		return nil
	}

	res, err := deleter.Delete(ctx, table, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted %s\n", res.ID)
	return nil
}
