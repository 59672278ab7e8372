package handlers

import (
	"context"
	"time"

	"github.com/jjenkins/clinicmap/internal/model"
	"github.com/jjenkins/clinicmap/internal/service"
)

// Dataset is the published data served by the HTTP handlers
type Dataset struct {
	Collection *model.FeatureCollection
	Physical   []model.ClinicProperties
	Virtual    []model.VirtualClinicRecord
}

// NewDataset indexes a loaded feature collection and virtual clinic list.
// Either may be nil when the file has not been generated yet.
func NewDataset(fc *model.FeatureCollection, virtual []model.VirtualClinicRecord) *Dataset {
	if fc == nil {
		fc = &model.FeatureCollection{Type: "FeatureCollection", Features: []model.Feature{}}
	}
	physical := make([]model.ClinicProperties, len(fc.Features))
	for i, f := range fc.Features {
		physical[i] = f.Properties
	}
	if virtual == nil {
		virtual = []model.VirtualClinicRecord{}
	}
	return &Dataset{Collection: fc, Physical: physical, Virtual: virtual}
}

// LoadDataset reads the dataset files, tolerating missing files
func LoadDataset(datasetPath, virtualPath string) (*Dataset, []error) {
	var errs []error

	fc, err := service.LoadDataset(datasetPath)
	if err != nil {
		errs = append(errs, err)
		fc = nil
	}
	virtual, err := service.LoadVirtualClinics(virtualPath)
	if err != nil {
		errs = append(errs, err)
		virtual = nil
	}

	return NewDataset(fc, virtual), errs
}

// HasData reports whether any records were loaded
func (d *Dataset) HasData() bool {
	return len(d.Physical) > 0 || len(d.Virtual) > 0
}

// SyncHistory is the read side of the sync run store
type SyncHistory interface {
	ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error)
	LastSync(ctx context.Context) (time.Time, error)
}
