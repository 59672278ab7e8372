package service

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jjenkins/clinicmap/internal/config"
	"github.com/jjenkins/clinicmap/internal/model"
)

const datasetSource = "Airtable"

// SyncRecorder persists the history of dataset exports
type SyncRecorder interface {
	CreateRun(ctx context.Context, run *model.SyncRun) error
	FinishRun(ctx context.Context, run *model.SyncRun) error
	SaveSnapshotIfChanged(ctx context.Context, snap *model.RecordSnapshot) (bool, error)
}

// ExportStats tracks export statistics
type ExportStats struct {
	RunID             string
	Total             int
	HoursEntries      int
	RecordsWithCoords int
	Virtual           int
	Changed           int
	Unchanged         int
	SnapshotFailed    int

	Abortion int
	LateTerm int
	PrEP     int
	Medicaid int
}

// Exporter regenerates the published dataset files from the remote store
type Exporter struct {
	store    RecordStore
	recorder SyncRecorder
	cfg      *config.Config
	logger   zerolog.Logger
	now      func() time.Time
}

// NewExporter creates a new Exporter. recorder may be nil to skip sync history.
func NewExporter(store RecordStore, recorder SyncRecorder, cfg *config.Config, logger zerolog.Logger) *Exporter {
	return &Exporter{
		store:    store,
		recorder: recorder,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Export fetches clinics and hours, writes the GeoJSON and virtual clinic
// files, and records per-clinic snapshots when a recorder is configured.
func (e *Exporter) Export(ctx context.Context) (*ExportStats, error) {
	run := &model.SyncRun{ID: uuid.NewString(), StartedAt: e.now()}
	stats := &ExportStats{RunID: run.ID}

	e.logger.Info().Msg("Fetching clinics from Airtable...")
	clinics, err := LoadClinics(ctx, e.store, e.cfg)
	if err != nil {
		return nil, err
	}
	e.logger.Info().Int("count", len(clinics)).Msg("Fetched clinics")

	e.logger.Info().Msg("Fetching hours from Airtable...")
	hours, err := LoadHours(ctx, e.store, e.cfg)
	if err != nil {
		return nil, err
	}
	e.logger.Info().Int("count", len(hours)).Msg("Fetched hours records")

	JoinHours(clinics, hours)
	stats.Total = len(clinics)
	stats.HoursEntries = len(hours)

	fc, virtual := BuildDataset(clinics, run.StartedAt)
	stats.RecordsWithCoords = len(fc.Features)
	stats.Virtual = len(virtual)
	e.logger.Info().Int("count", stats.RecordsWithCoords).Msg("Records have coordinates")

	for _, f := range fc.Features {
		p := f.Properties
		if p.HasAbortion {
			stats.Abortion++
		}
		if p.OffersLateTerm {
			stats.LateTerm++
		}
		if p.HasPrEP {
			stats.PrEP++
		}
		if p.AcceptsMedicaid {
			stats.Medicaid++
		}
	}

	datasetChecksum, err := writeJSONFile(e.cfg.DatasetPath, fc)
	if err != nil {
		return nil, err
	}
	e.logger.Info().Str("path", e.cfg.DatasetPath).Msg("Wrote dataset")

	if _, err := writeJSONFile(e.cfg.VirtualDatasetPath, virtual); err != nil {
		return nil, err
	}
	e.logger.Info().Str("path", e.cfg.VirtualDatasetPath).Msg("Wrote virtual clinics")

	if e.recorder == nil {
		return stats, nil
	}

	// Runs are recorded only after the dataset files are written and are always finished.
	if err := e.recorder.CreateRun(ctx, run); err != nil {
		return stats, err
	}

	var interrupted error
	for i := range clinics {
		if interrupted = ctx.Err(); interrupted != nil {
			e.logger.Warn().Int("remaining", len(clinics)-i).Msg("Export interrupted, finishing run with partial snapshots")
			break
		}

		c := &clinics[i]
		snap := &model.RecordSnapshot{
			RecordID:   c.ID,
			ClinicName: c.Name,
			Checksum:   RecordChecksum(c),
			SyncRunID:  run.ID,
		}
		changed, err := e.recorder.SaveSnapshotIfChanged(ctx, snap)
		if err != nil {
			e.logger.Error().Err(err).Str("clinic", c.Name).Msg("Failed to save snapshot")
			stats.SnapshotFailed++
			continue
		}
		if changed {
			e.logger.Debug().Str("clinic", c.Name).Msg("Record changed (snapshot created)")
			stats.Changed++
		} else {
			stats.Unchanged++
		}
	}

	run.FinishedAt = sql.NullTime{Time: e.now(), Valid: true}
	run.TotalRecords = stats.Total
	run.RecordsWithCoords = stats.RecordsWithCoords
	run.VirtualRecords = stats.Virtual
	run.Changed = stats.Changed
	run.Unchanged = stats.Unchanged
	run.DatasetChecksum = datasetChecksum
	if err := e.recorder.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		return stats, err
	}

	return stats, interrupted
}

// BuildDataset splits clinic records into map features and the virtual list.
// Physical clinics without coordinates are left out of the map.
func BuildDataset(clinics []model.ClinicRecord, generated time.Time) (*model.FeatureCollection, []model.VirtualClinicRecord) {
	features := []model.Feature{}
	virtual := []model.VirtualClinicRecord{}

	for i := range clinics {
		c := &clinics[i]
		if c.IsVirtual {
			virtual = append(virtual, c.Virtual())
			continue
		}
		if f, ok := model.NewFeature(c); ok {
			features = append(features, f)
		}
	}

	return &model.FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
		Metadata: model.DatasetMetadata{
			Generated:         generated.UTC(),
			Source:            datasetSource,
			TotalRecords:      len(clinics),
			RecordsWithCoords: len(features),
		},
	}, virtual
}

// RecordChecksum fingerprints a clinic record for change detection
func RecordChecksum(c *model.ClinicRecord) string {
	payload, err := json.Marshal(c)
	if err != nil {
		payload = []byte(c.ID)
	}
	hash := md5.Sum(payload)
	return hex.EncodeToString(hash[:])
}

// writeJSONFile writes v as indented JSON and returns the checksum of the written bytes
func writeJSONFile(path string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:]), nil
}

// LoadDataset reads a published GeoJSON dataset
func LoadDataset(path string) (*model.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var fc model.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return &fc, nil
}

// LoadVirtualClinics reads the published virtual clinic list
func LoadVirtualClinics(path string) ([]model.VirtualClinicRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read virtual clinics: %w", err)
	}

	var clinics []model.VirtualClinicRecord
	if err := json.Unmarshal(data, &clinics); err != nil {
		return nil, fmt.Errorf("failed to parse virtual clinics: %w", err)
	}
	return clinics, nil
}

// PrintExportSummary prints the export statistics
func PrintExportSummary(w io.Writer, stats *ExportStats) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "=== Export Summary ===")
	fmt.Fprintf(w, "Total records:       %d\n", stats.Total)
	fmt.Fprintf(w, "Hours records:       %d\n", stats.HoursEntries)
	fmt.Fprintf(w, "With coordinates:    %d\n", stats.RecordsWithCoords)
	fmt.Fprintf(w, "Virtual clinics:     %d\n", stats.Virtual)
	if stats.Changed+stats.Unchanged+stats.SnapshotFailed > 0 {
		fmt.Fprintf(w, "Changed:             %d\n", stats.Changed)
		fmt.Fprintf(w, "Unchanged:           %d\n", stats.Unchanged)
		fmt.Fprintf(w, "Snapshot failures:   %d\n", stats.SnapshotFailed)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Abortion services: %d\n", stats.Abortion)
	fmt.Fprintf(w, "  Late-term (20+ weeks): %d\n", stats.LateTerm)
	fmt.Fprintf(w, "  PrEP services: %d\n", stats.PrEP)
	fmt.Fprintf(w, "  Accepts Medicaid: %d\n", stats.Medicaid)
}
