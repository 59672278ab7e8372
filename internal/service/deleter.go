package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jjenkins/clinicmap/internal/model"
)

// ErrDeleteNotAcknowledged is returned when a delete response lacks a positive acknowledgement
var ErrDeleteNotAcknowledged = errors.New("remote store did not acknowledge deletion")

// Deleter removes decommissioned records from the remote store
type Deleter struct {
	store  RecordStore
	logger zerolog.Logger
}

// NewDeleter creates a new Deleter
func NewDeleter(store RecordStore, logger zerolog.Logger) *Deleter {
	return &Deleter{store: store, logger: logger}
}

// Preview fetches the record that would be deleted without modifying it
func (d *Deleter) Preview(ctx context.Context, table, id string) (*Record, error) {
	rec, err := d.store.GetRecord(ctx, table, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", id, err)
	}
	return rec, nil
}

// Delete removes a record and succeeds only when the response echoes the
// record id with deleted set to true.
func (d *Deleter) Delete(ctx context.Context, table, id string) (*DeleteResult, error) {
	res, err := d.store.DeleteRecord(ctx, table, id)
	if err != nil {
		return nil, err
	}
	if !res.Deleted || res.ID != id {
		return res, fmt.Errorf("%w: record %s (response id %q, deleted=%t)", ErrDeleteNotAcknowledged, id, res.ID, res.Deleted)
	}

	d.logger.Info().Str("table", table).Str("record", id).Msg("Record deleted")
	return res, nil
}

// PlanOrphanHours returns the hours entries that no longer link to any clinic
func PlanOrphanHours(entries []model.HoursEntry) []model.HoursEntry {
	orphans := []model.HoursEntry{}
	for _, h := range entries {
		if h.IsOrphan() {
			orphans = append(orphans, h)
		}
	}
	return orphans
}

// DeleteAll deletes each record serially, continuing past failures
func (d *Deleter) DeleteAll(ctx context.Context, table string, entries []model.HoursEntry, delay time.Duration) (*WriteStats, []WriteResult) {
	stats := &WriteStats{Total: len(entries)}
	results := make([]WriteResult, 0, len(entries))

	for idx, h := range entries {
		if ctx.Err() != nil {
			break
		}

		result := WriteResult{ID: h.ID, Name: h.Label}
		if _, err := d.Delete(ctx, table, h.ID); err != nil {
			d.logger.Error().Err(err).Str("record", h.ID).Msg("Failed to delete record")
			result.Err = err
			stats.Failed++
		} else {
			stats.Applied++
		}
		results = append(results, result)

		if idx < len(entries)-1 && delay > 0 {
			time.Sleep(delay)
		}
	}

	return stats, results
}

// PrintOrphanHours lists orphan hours entries
func PrintOrphanHours(w io.Writer, orphans []model.HoursEntry) {
	if len(orphans) == 0 {
		fmt.Fprintln(w, "No orphan records found!")
		return
	}

	fmt.Fprintf(w, "Found %d orphan hours records:\n\n", len(orphans))
	for _, h := range orphans {
		days := "?"
		if len(h.DaysOfWeek) > 0 {
			days = strings.Join(h.DaysOfWeek, ", ")
		}
		fmt.Fprintf(w, "  %s  %s  %s %s-%s\n", h.ID, h.Label, days, h.OpenTime, h.CloseTime)
	}
}
