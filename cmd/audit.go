package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jjenkins/clinicmap/internal/service"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report data quality gaps (read-only)",
}

var auditQualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Count records missing coordinates, phone, hours, borough or services",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAirtableClient()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		clinics, err := service.LoadClinics(ctx, client, cfg)
		if err != nil {
			return err
		}
		hours, err := service.LoadHours(ctx, client, cfg)
		if err != nil {
			return err
		}
		service.JoinHours(clinics, hours)

		service.QualityAudit(clinics).Print(cmd.OutOrStdout())
		return nil
	},
}

var auditContactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List contact emails, phone fields holding emails, and clinics with no contact",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAirtableClient()
		if err != nil {
			return err
		}

		clinics, err := service.LoadClinics(cmd.Context(), client, cfg)
		if err != nil {
			return err
		}

		service.ContactAudit(clinics).Print(cmd.OutOrStdout())
		return nil
	},
}

var auditHoursCmd = &cobra.Command{
	Use:   "hours",
	Short: "Report published clinics without hours, by borough",
	Long: `Reads the generated dataset (not Airtable) and lists physical clinics
that have no structured hours.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fc, err := service.LoadDataset(cfg.DatasetPath)
		if err != nil {
			return err
		}

		service.HoursCoverage(fc).Print(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQualityCmd, auditContactsCmd, auditHoursCmd)
}
