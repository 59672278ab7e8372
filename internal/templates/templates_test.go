package templates

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/clinicmap/internal/model"
)

func TestHome(t *testing.T) {
	var buf bytes.Buffer
	err := Home(HomeStatus{
		HasData:         true,
		PhysicalClinics: 120,
		VirtualClinics:  8,
		DatasetSource:   "<Airtable>",
		ServiceCounts:   []ServiceCount{{Tag: "prep", Count: 40}},
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<title>Status | clinicmap</title>")
	assert.Contains(t, out, "<dd>120</dd>")
	assert.Contains(t, out, "&lt;Airtable&gt;")
	assert.Contains(t, out, "<td>prep</td><td>40</td>")
	assert.Contains(t, out, "never")
}

func TestHome_NoData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Home(HomeStatus{}).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "No dataset loaded")
}

func TestHistory(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []model.SyncRun{
		{ID: "run-2", StartedAt: started.Add(time.Hour)},
		{ID: "run-1", StartedAt: started, FinishedAt: sql.NullTime{Time: started.Add(time.Minute), Valid: true}, TotalRecords: 40, Changed: 5},
	}

	var buf bytes.Buffer
	require.NoError(t, History(runs).Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, "<code>run-2</code>")
	assert.Contains(t, out, "in progress")
	assert.Contains(t, out, "Mar 1, 2026 12:01 UTC")
}

func TestHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, History(nil).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "No sync runs recorded yet.")
}

func TestLayoutWrapsPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, History(nil).Render(context.Background(), &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Contains(t, out, "<title>Sync history | clinicmap</title>")
	assert.Contains(t, out, `<a href="/history">Sync history</a>`)
	assert.Contains(t, out, "<main><h1>Sync history</h1><p>No sync runs recorded yet.</p></main>")
}

func TestHome_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := Home(HomeStatus{HasData: true}).Render(ctx, &buf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}
