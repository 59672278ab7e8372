package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/jjenkins/clinicmap/internal/config"
	"github.com/jjenkins/clinicmap/internal/model"
)

// hoursQualifiers mark a descriptor as a restricted or temporary schedule
var hoursQualifiers = []string{"express", "until"}

// NeedsSundayFix reports whether an hours entry describes a restricted
// schedule, in either its day descriptor or its label, but still carries
// the Sunday tag.
func NeedsSundayFix(h *model.HoursEntry) bool {
	if !h.HasDay(model.Sun) {
		return false
	}
	fold := cases.Fold()
	for _, text := range []string{h.Days, h.Label} {
		folded := fold.String(text)
		for _, q := range hoursQualifiers {
			if strings.Contains(folded, q) {
				return true
			}
		}
	}
	return false
}

// HoursFix is an intended correction to one hours entry
type HoursFix struct {
	ID     string
	Label  string
	Before []string
	After  []string
}

// PlanHoursFixes returns the corrections for every entry matching the
// Sunday defect. It does not touch the remote store.
func PlanHoursFixes(entries []model.HoursEntry) []HoursFix {
	fixes := []HoursFix{}
	for i := range entries {
		h := &entries[i]
		if !NeedsSundayFix(h) {
			continue
		}
		fixes = append(fixes, HoursFix{
			ID:     h.ID,
			Label:  h.Label,
			Before: append([]string(nil), h.DaysOfWeek...),
			After:  withoutDay(h.DaysOfWeek, model.Sun),
		})
	}
	return fixes
}

func withoutDay(days []string, day string) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		if d != day {
			out = append(out, d)
		}
	}
	return out
}

// WriteStats tracks per-record outcomes of a batch of remote writes
type WriteStats struct {
	Total   int
	Applied int
	Skipped int
	Failed  int
}

// WriteResult is the outcome of one remote write
type WriteResult struct {
	ID      string
	Name    string
	Skipped bool
	Err     error
}

// HoursFixer writes planned hours corrections back to the remote store
type HoursFixer struct {
	store  RecordStore
	cfg    *config.Config
	logger zerolog.Logger
	delay  time.Duration
}

// NewHoursFixer creates a new HoursFixer
func NewHoursFixer(store RecordStore, cfg *config.Config, logger zerolog.Logger) *HoursFixer {
	return &HoursFixer{
		store:  store,
		cfg:    cfg,
		logger: logger,
		delay:  cfg.WriteDelay,
	}
}

// Apply patches each fix serially. Before writing, the live record is
// re-read and the match re-checked, so an entry already corrected elsewhere
// is skipped. A failed write is recorded and the batch continues.
func (f *HoursFixer) Apply(ctx context.Context, fixes []HoursFix) (*WriteStats, []WriteResult) {
	stats := &WriteStats{Total: len(fixes)}
	results := make([]WriteResult, 0, len(fixes))

	for idx, fix := range fixes {
		if ctx.Err() != nil {
			break
		}

		result := WriteResult{ID: fix.ID, Name: fix.Label}
		after, err := f.liveCorrection(ctx, fix.ID)
		switch {
		case err != nil:
			result.Err = err
		case after == nil:
			result.Skipped = true
		default:
			_, result.Err = f.store.UpdateRecord(ctx, f.cfg.HoursTable, fix.ID, map[string]any{
				model.FieldHoursDaysOfWeek: after,
			})
		}

		switch {
		case result.Err != nil:
			f.logger.Error().Err(result.Err).Str("record", fix.ID).Str("label", fix.Label).Msg("Failed to fix hours entry")
			stats.Failed++
		case result.Skipped:
			f.logger.Info().Str("record", fix.ID).Msg("Hours entry already correct, skipping")
			stats.Skipped++
		default:
			f.logger.Debug().Str("record", fix.ID).Strs("days", fix.After).Msg("Hours entry fixed")
			stats.Applied++
		}
		results = append(results, result)

		if idx < len(fixes)-1 && f.delay > 0 {
			time.Sleep(f.delay)
		}
	}

	return stats, results
}

// liveCorrection re-reads the entry and returns its corrected tags, or nil if it no longer matches
func (f *HoursFixer) liveCorrection(ctx context.Context, id string) ([]string, error) {
	rec, err := f.store.GetRecord(ctx, f.cfg.HoursTable, id)
	if err != nil {
		return nil, err
	}
	entry := model.DecodeHours(rec.ID, rec.Fields)
	if !NeedsSundayFix(&entry) {
		return nil, nil
	}
	return withoutDay(entry.DaysOfWeek, model.Sun), nil
}

// PrintHoursFixes writes the before/after tag list for each planned fix,
// with its outcome when results are given.
func PrintHoursFixes(w io.Writer, fixes []HoursFix, results []WriteResult) {
	fmt.Fprintf(w, "Found %d records to fix:\n\n", len(fixes))

	outcomes := make(map[string]WriteResult, len(results))
	for _, r := range results {
		outcomes[r.ID] = r
	}

	for _, fix := range fixes {
		fmt.Fprintf(w, "%s:\n", fix.Label)
		fmt.Fprintf(w, "  [%s] -> [%s]\n", strings.Join(fix.Before, ", "), strings.Join(fix.After, ", "))
		if results == nil {
			fmt.Fprintln(w)
			continue
		}
		r, ok := outcomes[fix.ID]
		switch {
		case !ok:
			fmt.Fprint(w, "  - not attempted\n\n")
		case r.Err != nil:
			fmt.Fprintf(w, "  x Failed: %v\n\n", r.Err)
		case r.Skipped:
			fmt.Fprint(w, "  - Already correct\n\n")
		default:
			fmt.Fprint(w, "  ok Fixed\n\n")
		}
	}
}

// PrintWriteSummary prints the outcome counts of a write batch
func PrintWriteSummary(w io.Writer, title string, stats *WriteStats) {
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "=== %s ===\n", title)
	fmt.Fprintf(w, "Total:    %d\n", stats.Total)
	fmt.Fprintf(w, "Applied:  %d\n", stats.Applied)
	fmt.Fprintf(w, "Skipped:  %d\n", stats.Skipped)
	fmt.Fprintf(w, "Failed:   %d\n", stats.Failed)
}
