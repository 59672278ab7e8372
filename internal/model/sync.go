package model

import (
	"database/sql"
	"time"
)

// SyncRun represents one regeneration of the published dataset
type SyncRun struct {
	ID                string
	StartedAt         time.Time
	FinishedAt        sql.NullTime
	TotalRecords      int
	RecordsWithCoords int
	VirtualRecords    int
	Changed           int
	Unchanged         int
	DatasetChecksum   string
}

// RecordSnapshot represents the state of one clinic record at a sync run.
// A new snapshot is only written when the record's checksum changes.
type RecordSnapshot struct {
	ID         int
	RecordID   string
	ClinicName string
	Checksum   string
	SyncRunID  string
	CreatedAt  time.Time
}
