package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/clinicmap/internal/model"
)

func TestSyncStore_CreateAndFinishRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewSyncStore(db)
	run := &model.SyncRun{ID: uuid.NewString(), StartedAt: time.Now()}

	mock.ExpectExec("INSERT INTO sync_runs").
		WithArgs(run.ID, run.StartedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.CreateRun(context.Background(), run))

	run.FinishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	run.TotalRecords = 12
	run.RecordsWithCoords = 10
	run.VirtualRecords = 2
	run.Changed = 3
	run.Unchanged = 9
	run.DatasetChecksum = "abc"

	mock.ExpectExec("UPDATE sync_runs SET").
		WithArgs(run.ID, run.FinishedAt, 12, 10, 2, 3, 9, "abc").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.FinishRun(context.Background(), run))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncStore_SaveSnapshotIfChanged(t *testing.T) {
	runID := uuid.NewString()

	tests := []struct {
		name        string
		existing    *sqlmock.Rows
		wantChanged bool
	}{
		{
			name:        "first snapshot",
			existing:    sqlmock.NewRows([]string{"checksum"}),
			wantChanged: true,
		},
		{
			name:        "checksum differs",
			existing:    sqlmock.NewRows([]string{"checksum"}).AddRow("old"),
			wantChanged: true,
		},
		{
			name:        "checksum unchanged",
			existing:    sqlmock.NewRows([]string{"checksum"}).AddRow("new"),
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			s := NewSyncStore(db)
			snap := &model.RecordSnapshot{
				RecordID:   "rec1",
				ClinicName: "Chelsea Sexual Health Clinic",
				Checksum:   "new",
				SyncRunID:  runID,
			}

			mock.ExpectBegin()
			mock.ExpectQuery("SELECT checksum FROM record_snapshots").
				WithArgs("rec1").
				WillReturnRows(tt.existing)
			if tt.wantChanged {
				mock.ExpectQuery("INSERT INTO record_snapshots").
					WithArgs("rec1", "Chelsea Sexual Health Clinic", "new", runID).
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, time.Now()))
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			changed, err := s.SaveSnapshotIfChanged(context.Background(), snap)
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			if tt.wantChanged {
				assert.Equal(t, 7, snap.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSyncStore_ListRuns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "started_at", "finished_at", "total_records", "records_with_coords",
		"virtual_records", "changed", "unchanged", "dataset_checksum",
	}).
		AddRow("run-2", started.Add(time.Hour), nil, 0, 0, 0, 0, 0, "").
		AddRow("run-1", started, started.Add(time.Minute), 40, 38, 2, 5, 35, "sum")

	mock.ExpectQuery("SELECT id, started_at, finished_at").
		WithArgs(20).
		WillReturnRows(rows)

	runs, err := NewSyncStore(db).ListRuns(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-2", runs[0].ID)
	assert.False(t, runs[0].FinishedAt.Valid)
	assert.Equal(t, 40, runs[1].TotalRecords)
	assert.True(t, runs[1].FinishedAt.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncStore_LastSync(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	finished := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(finished_at) FROM sync_runs")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(finished))

	last, err := NewSyncStore(db).LastSync(context.Background())
	require.NoError(t, err)
	assert.True(t, finished.Equal(last))
}

func TestSyncStore_GetRecordHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("FROM record_snapshots").
		WithArgs("rec1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "record_id", "clinic_name", "checksum", "sync_run_id", "created_at"}).
			AddRow(2, "rec1", "Clinic", "b", "run-2", now).
			AddRow(1, "rec1", "Clinic", "a", "run-1", now.Add(-time.Hour)))

	history, err := NewSyncStore(db).GetRecordHistory(context.Background(), "rec1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "b", history[0].Checksum)
	assert.Equal(t, "run-1", history[1].SyncRunID)
}
