package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjenkins/clinicmap/internal/model"
)

// SyncStore handles database operations for dataset sync history
type SyncStore struct {
	db *sql.DB
}

// NewSyncStore creates a new SyncStore
func NewSyncStore(db *sql.DB) *SyncStore {
	return &SyncStore{db: db}
}

// CreateRun records the start of a sync run
func (s *SyncStore) CreateRun(ctx context.Context, run *model.SyncRun) error {
	query := `
		INSERT INTO sync_runs (id, started_at)
		VALUES ($1, $2)
	`

	if _, err := s.db.ExecContext(ctx, query, run.ID, run.StartedAt); err != nil {
		return fmt.Errorf("failed to create sync run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun stores the final counts of a sync run
func (s *SyncStore) FinishRun(ctx context.Context, run *model.SyncRun) error {
	query := `
		UPDATE sync_runs SET
			finished_at = $2,
			total_records = $3,
			records_with_coords = $4,
			virtual_records = $5,
			changed = $6,
			unchanged = $7,
			dataset_checksum = $8
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.FinishedAt,
		run.TotalRecords,
		run.RecordsWithCoords,
		run.VirtualRecords,
		run.Changed,
		run.Unchanged,
		run.DatasetChecksum,
	)
	if err != nil {
		return fmt.Errorf("failed to finish sync run %s: %w", run.ID, err)
	}
	return nil
}

// SaveSnapshotIfChanged writes a snapshot only when the record's checksum
// differs from its most recent snapshot.
func (s *SyncStore) SaveSnapshotIfChanged(ctx context.Context, snap *model.RecordSnapshot) (changed bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingChecksum sql.NullString
	checksumQuery := `
		SELECT checksum FROM record_snapshots
		WHERE record_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	err = tx.QueryRowContext(ctx, checksumQuery, snap.RecordID).Scan(&existingChecksum)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to read checksum for %s: %w", snap.RecordID, err)
	}

	changed = !existingChecksum.Valid || existingChecksum.String != snap.Checksum
	if !changed {
		return false, nil
	}

	insertQuery := `
		INSERT INTO record_snapshots (record_id, clinic_name, checksum, sync_run_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, insertQuery,
		snap.RecordID,
		snap.ClinicName,
		snap.Checksum,
		snap.SyncRunID,
	).Scan(&snap.ID, &snap.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert snapshot for %s: %w", snap.RecordID, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// ListRuns retrieves the most recent sync runs, newest first
func (s *SyncStore) ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error) {
	query := `
		SELECT id, started_at, finished_at, total_records, records_with_coords,
		       virtual_records, changed, unchanged, dataset_checksum
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync runs: %w", err)
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		var r model.SyncRun
		err := rows.Scan(
			&r.ID,
			&r.StartedAt,
			&r.FinishedAt,
			&r.TotalRecords,
			&r.RecordsWithCoords,
			&r.VirtualRecords,
			&r.Changed,
			&r.Unchanged,
			&r.DatasetChecksum,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// GetRecordHistory retrieves every snapshot of one record, newest first
func (s *SyncStore) GetRecordHistory(ctx context.Context, recordID string) ([]model.RecordSnapshot, error) {
	query := `
		SELECT id, record_id, clinic_name, checksum, sync_run_id, created_at
		FROM record_snapshots
		WHERE record_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history for %s: %w", recordID, err)
	}
	defer rows.Close()

	var snapshots []model.RecordSnapshot
	for rows.Next() {
		var snap model.RecordSnapshot
		err := rows.Scan(
			&snap.ID,
			&snap.RecordID,
			&snap.ClinicName,
			&snap.Checksum,
			&snap.SyncRunID,
			&snap.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

// LastSync returns when the most recent finished run completed, or the zero time
func (s *SyncStore) LastSync(ctx context.Context) (time.Time, error) {
	query := `SELECT MAX(finished_at) FROM sync_runs`

	var last sql.NullTime
	if err := s.db.QueryRowContext(ctx, query).Scan(&last); err != nil {
		return time.Time{}, fmt.Errorf("failed to get last sync: %w", err)
	}
	return last.Time, nil
}
