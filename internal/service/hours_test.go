package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/clinicmap/internal/model"
)

func TestNeedsSundayFix(t *testing.T) {
	weekdaysAndSun := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sun"}

	tests := []struct {
		name  string
		entry model.HoursEntry
		want  bool
	}{
		{"express with sunday", model.HoursEntry{Days: "Mon-Fri (Express)", DaysOfWeek: weekdaysAndSun}, true},
		{"until with sunday", model.HoursEntry{Days: "Open UNTIL 3pm", DaysOfWeek: []string{"Sat", "Sun"}}, true},
		{"label only", model.HoursEntry{Label: "Express STI testing", DaysOfWeek: []string{"Sun"}}, true},
		{"label qualifies plain days", model.HoursEntry{Label: "Express testing", Days: "Mon-Fri", DaysOfWeek: weekdaysAndSun}, true},
		{"neither qualifies", model.HoursEntry{Label: "General", Days: "Mon-Fri", DaysOfWeek: weekdaysAndSun}, false},
		{"express without sunday", model.HoursEntry{Days: "Express", DaysOfWeek: []string{"Mon"}}, false},
		{"no qualifier", model.HoursEntry{Days: "Mon-Fri", DaysOfWeek: weekdaysAndSun}, false},
		{"empty", model.HoursEntry{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsSundayFix(&tt.entry))
		})
	}
}

func TestPlanHoursFixes(t *testing.T) {
	entries := []model.HoursEntry{
		{ID: "h1", Label: "Express", Days: "Express testing", DaysOfWeek: []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sun"}},
		{ID: "h2", Label: "General", Days: "Mon-Fri", DaysOfWeek: []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sun"}},
	}

	fixes := PlanHoursFixes(entries)

	require.Len(t, fixes, 1)
	assert.Equal(t, "h1", fixes[0].ID)
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sun"}, fixes[0].Before)
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri"}, fixes[0].After)
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sun"}, entries[0].DaysOfWeek)
}

func seedHours(store *fakeStore) {
	store.add("hours", "h1", model.Fields{
		model.FieldHoursLabel:      "Express clinic",
		model.FieldHoursDays:       "Express",
		model.FieldHoursDaysOfWeek: []any{"Mon", "Tue", "Wed", "Thu", "Fri", "Sun"},
	})
	store.add("hours", "h2", model.Fields{
		model.FieldHoursLabel:      "Weekend until noon",
		model.FieldHoursDays:       "until 12pm",
		model.FieldHoursDaysOfWeek: []any{"Sat", "Sun"},
	})
	store.add("hours", "h3", model.Fields{
		model.FieldHoursLabel:      "General",
		model.FieldHoursDaysOfWeek: []any{"Mon", "Sun"},
	})
}

func TestHoursFixer_ApplyIsIdempotent(t *testing.T) {
	store := newFakeStore()
	seedHours(store)
	cfg := testConfig()
	ctx := context.Background()

	entries, err := LoadHours(ctx, store, cfg)
	require.NoError(t, err)
	fixes := PlanHoursFixes(entries)
	require.Len(t, fixes, 2)

	fixer := NewHoursFixer(store, cfg, zerolog.Nop())
	stats, results := fixer.Apply(ctx, fixes)

	assert.Equal(t, 2, stats.Applied)
	assert.Equal(t, 0, stats.Failed)
	assert.Len(t, results, 2)
	require.Len(t, store.updates, 2)
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri"}, store.updates[0].Fields[model.FieldHoursDaysOfWeek])
	assert.Equal(t, []string{"Sat"}, store.updates[1].Fields[model.FieldHoursDaysOfWeek])

	entries, err = LoadHours(ctx, store, cfg)
	require.NoError(t, err)
	assert.Empty(t, PlanHoursFixes(entries))

	stats, _ = fixer.Apply(ctx, fixes)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 0, stats.Applied)
	assert.Len(t, store.updates, 2)
}

func TestHoursFixer_ContinuesPastFailures(t *testing.T) {
	store := newFakeStore()
	seedHours(store)
	store.failIDs["h1"] = &APIError{StatusCode: 422, Type: "INVALID_VALUE_FOR_COLUMN", Message: "bad"}
	cfg := testConfig()
	ctx := context.Background()

	entries, err := LoadHours(ctx, store, cfg)
	require.NoError(t, err)
	fixes := PlanHoursFixes(entries)

	stats, results := NewHoursFixer(store, cfg, zerolog.Nop()).Apply(ctx, fixes)

	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Applied)
	require.Len(t, results, 2)

	var apiErr *APIError
	assert.True(t, errors.As(results[0].Err, &apiErr))
	assert.NoError(t, results[1].Err)

	var buf bytes.Buffer
	PrintHoursFixes(&buf, fixes, results)
	assert.Contains(t, buf.String(), "[Mon, Tue, Wed, Thu, Fri, Sun] -> [Mon, Tue, Wed, Thu, Fri]")
	assert.Contains(t, buf.String(), "x Failed")
	assert.Contains(t, buf.String(), "ok Fixed")
}
