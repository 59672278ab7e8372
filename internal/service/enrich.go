package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jjenkins/clinicmap/internal/config"
	"github.com/jjenkins/clinicmap/internal/model"
)

// EnrichMode selects which enrichment steps run
type EnrichMode int

// Enrichment modes
const (
	EnrichBoth        EnrichMode = iota // geocode, then nearest transit
	EnrichGeocodeOnly                   // fill coordinates and BBL only
	EnrichTransitOnly                   // nearest transit for clinics that already have coordinates
)

// IncludesGeocode reports whether the mode runs the geocoding step
func (m EnrichMode) IncludesGeocode() bool { return m != EnrichTransitOnly }

// IncludesTransit reports whether the mode runs the nearest-transit step
func (m EnrichMode) IncludesTransit() bool { return m != EnrichGeocodeOnly }

// EnrichModeFromFlags maps the --geocode/--transit flags to a mode.
// Neither or both flags select both steps.
func EnrichModeFromFlags(geocodeOnly, transitOnly bool) EnrichMode {
	switch {
	case geocodeOnly && !transitOnly:
		return EnrichGeocodeOnly
	case transitOnly && !geocodeOnly:
		return EnrichTransitOnly
	default:
		return EnrichBoth
	}
}

// TransitData is the reference data for nearest-stop lookups
type TransitData struct {
	Stations []SubwayStation
	BusStops []BusStop
}

// ClinicUpdate is an intended change to one clinic record
type ClinicUpdate struct {
	ID     string
	Name   string
	Fields map[string]any
	Notes  []string
}

// EnrichStats tracks enrichment planning and write statistics
type EnrichStats struct {
	Total        int
	Geocoded     int
	TransitAdded int
	Skipped      int
	Errors       int
}

// Enricher computes and applies coordinate and transit enrichment
type Enricher struct {
	store        RecordStore
	geocoder     Geocoder
	cfg          *config.Config
	logger       zerolog.Logger
	geocodeDelay time.Duration
	writeDelay   time.Duration
}

// NewEnricher creates a new Enricher
func NewEnricher(store RecordStore, geocoder Geocoder, cfg *config.Config, logger zerolog.Logger) *Enricher {
	return &Enricher{
		store:        store,
		geocoder:     geocoder,
		cfg:          cfg,
		logger:       logger,
		geocodeDelay: cfg.GeocodeDelay,
		writeDelay:   cfg.WriteDelay,
	}
}

// Plan decides the updates for each clinic without writing anything.
// transit may be nil when the mode skips transit.
func (e *Enricher) Plan(ctx context.Context, clinics []model.ClinicRecord, mode EnrichMode, transit *TransitData) ([]ClinicUpdate, *EnrichStats, error) {
	stats := &EnrichStats{Total: len(clinics)}
	updates := []ClinicUpdate{}

	for i := range clinics {
		if err := ctx.Err(); err != nil {
			return updates, stats, err
		}

		c := &clinics[i]
		update := ClinicUpdate{ID: c.ID, Name: c.Name, Fields: map[string]any{}}
		lat, lon := c.Latitude, c.Longitude

		if mode.IncludesGeocode() && needsGeocode(c) {
			res, err := e.geocoder.Geocode(ctx, c.Address, c.Borough)
			switch {
			case err != nil:
				e.logger.Warn().Err(err).Str("clinic", c.Name).Msg("Geocoder error")
				stats.Errors++
			case res == nil:
				e.logger.Warn().Str("clinic", c.Name).Str("address", c.Address).Msg("Geocode failed")
				stats.Errors++
			default:
				if !c.HasCoordinates() {
					lat, lon = &res.Latitude, &res.Longitude
					update.Fields[model.FieldLatitude] = res.Latitude
					update.Fields[model.FieldLongitude] = res.Longitude
					update.Notes = append(update.Notes, fmt.Sprintf("Geocoded to %v, %v", res.Latitude, res.Longitude))
				}
				if c.BBL == "" && res.BBL != "" {
					update.Fields[model.FieldBBL] = res.BBL
					update.Notes = append(update.Notes, fmt.Sprintf("Added BBL %s", res.BBL))
				}
				stats.Geocoded++
			}

			if e.geocodeDelay > 0 {
				time.Sleep(e.geocodeDelay)
			}
		}

		if mode.IncludesTransit() && transit != nil && lat != nil && lon != nil {
			subway := FormatSubway(NearestStation(*lat, *lon, transit.Stations))
			bus := FormatBus(NearestBusStop(*lat, *lon, transit.BusStops))
			added := false
			if subway != "" && subway != c.NearestSubway {
				update.Fields[model.FieldNearestSubway] = subway
				update.Notes = append(update.Notes, "Subway -> "+subway)
				added = true
			}
			if bus != "" && bus != c.NearestBus {
				update.Fields[model.FieldNearestBus] = bus
				update.Notes = append(update.Notes, "Bus -> "+bus)
				added = true
			}
			if added {
				stats.TransitAdded++
			}
		}

		if len(update.Fields) == 0 {
			stats.Skipped++
			continue
		}
		updates = append(updates, update)
	}

	return updates, stats, nil
}

// needsGeocode reports whether a clinic lacks coordinates or a parcel id and has a usable address
func needsGeocode(c *model.ClinicRecord) bool {
	if c.HasCoordinates() && c.BBL != "" {
		return false
	}
	return c.Address != "" && !strings.Contains(c.Address, "CLOSED")
}

// Apply writes the planned updates serially, continuing past failures
func (e *Enricher) Apply(ctx context.Context, updates []ClinicUpdate) (*WriteStats, []WriteResult) {
	stats := &WriteStats{Total: len(updates)}
	results := make([]WriteResult, 0, len(updates))

	for idx, u := range updates {
		if ctx.Err() != nil {
			break
		}

		result := WriteResult{ID: u.ID, Name: u.Name}
		if _, err := e.store.UpdateRecord(ctx, e.cfg.ClinicsTable, u.ID, u.Fields); err != nil {
			e.logger.Error().Err(err).Str("clinic", u.Name).Msg("Update failed")
			result.Err = err
			stats.Failed++
		} else {
			stats.Applied++
		}
		results = append(results, result)

		if idx < len(updates)-1 && e.writeDelay > 0 {
			time.Sleep(e.writeDelay)
		}
	}

	return stats, results
}

// LoadTransit fetches subway and bus reference data
func LoadTransit(ctx context.Context, client *TransitClient) (*TransitData, error) {
	stations, err := client.FetchSubwayStations(ctx)
	if err != nil {
		return nil, err
	}
	stops, err := client.FetchBusStops(ctx)
	if err != nil {
		return nil, err
	}
	return &TransitData{Stations: stations, BusStops: stops}, nil
}

// PrintUpdates writes each planned update with its changed fields
func PrintUpdates(w io.Writer, updates []ClinicUpdate) {
	for _, u := range updates {
		for _, note := range u.Notes {
			fmt.Fprintf(w, "%s: %s\n", u.Name, note)
		}
		keys := make([]string, 0, len(u.Fields))
		for k := range u.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(w, "  fields: %s\n", strings.Join(keys, ", "))
	}
}

// PrintEnrichSummary prints enrichment planning statistics
func PrintEnrichSummary(w io.Writer, stats *EnrichStats) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "=== Summary ===")
	fmt.Fprintf(w, "Clinics:        %d\n", stats.Total)
	fmt.Fprintf(w, "Geocoded:       %d\n", stats.Geocoded)
	fmt.Fprintf(w, "Transit added:  %d\n", stats.TransitAdded)
	fmt.Fprintf(w, "Skipped:        %d\n", stats.Skipped)
	fmt.Fprintf(w, "Errors:         %d\n", stats.Errors)
}
