package service

import (
	"context"
	"fmt"

	"github.com/jjenkins/clinicmap/internal/config"
	"github.com/jjenkins/clinicmap/internal/model"
)

// LoadClinics fetches and decodes every record in the clinics table
func LoadClinics(ctx context.Context, store RecordStore, cfg *config.Config) ([]model.ClinicRecord, error) {
	records, err := store.ListRecords(ctx, cfg.ClinicsTable)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clinics: %w", err)
	}

	clinics := make([]model.ClinicRecord, len(records))
	for i, r := range records {
		clinics[i] = model.DecodeClinic(r.ID, r.Fields)
	}
	return clinics, nil
}

// LoadHours fetches and decodes every record in the hours table
func LoadHours(ctx context.Context, store RecordStore, cfg *config.Config) ([]model.HoursEntry, error) {
	records, err := store.ListRecords(ctx, cfg.HoursTable)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hours: %w", err)
	}

	entries := make([]model.HoursEntry, len(records))
	for i, r := range records {
		entries[i] = model.DecodeHours(r.ID, r.Fields)
	}
	return entries, nil
}

// JoinHours attaches each hours entry to every clinic it links to.
// Entries keep their table order within a clinic.
func JoinHours(clinics []model.ClinicRecord, hours []model.HoursEntry) {
	byClinic := make(map[string][]model.HoursEntry)
	for _, h := range hours {
		for _, clinicID := range h.ClinicIDs {
			byClinic[clinicID] = append(byClinic[clinicID], h)
		}
	}

	for i := range clinics {
		clinics[i].Hours = byClinic[clinics[i].ID]
	}
}
