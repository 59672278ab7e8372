package templates

import (
	"time"

	"github.com/jjenkins/clinicmap/internal/model"
)

// HomeStatus holds the figures shown on the status page
type HomeStatus struct {
	HasData          bool
	PhysicalClinics  int
	VirtualClinics   int
	TotalRecords     int
	MissingHours     int
	DatasetGenerated time.Time
	DatasetSource    string
	LastSync         time.Time
	ServiceCounts    []ServiceCount
}

// ServiceCount is the number of physical clinics offering a service tag
type ServiceCount struct {
	Tag   string
	Count int
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("Jan 2, 2006 15:04 MST")
}

func finishedAt(r model.SyncRun) string {
	if !r.FinishedAt.Valid {
		return "in progress"
	}
	return formatTime(r.FinishedAt.Time)
}
