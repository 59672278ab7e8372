package cmd

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/jjenkins/clinicmap/internal/service"
)

const geocodeCacheTTL = 30 * 24 * time.Hour

var (
	enrichExecute bool
	enrichGeocode bool
	enrichTransit bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Geocode clinics and fill in nearest subway and bus stops",
	Long: `Geocodes clinics missing coordinates or BBL with NYC GeoSearch, then finds
the nearest subway station and bus stop for every clinic with coordinates.

--geocode or --transit alone runs only that step; neither (or both) runs both.
Without --execute the planned updates are only printed.

Set REDIS_URL to cache geocoder results between runs.`,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
	enrichCmd.Flags().BoolVar(&enrichExecute, "execute", false, "write the updates to Airtable")
	enrichCmd.Flags().BoolVar(&enrichGeocode, "geocode", false, "only geocode")
	enrichCmd.Flags().BoolVar(&enrichTransit, "transit", false, "only compute nearest transit")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	client, err := newAirtableClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	mode := service.EnrichModeFromFlags(enrichGeocode, enrichTransit)

	var geocoder service.Geocoder = service.NewGeosearchClient(cfg.GeosearchURL)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("configuration error: invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		geocoder = service.NewCachingGeocoder(geocoder, rdb, geocodeCacheTTL, logger)
	}

	clinics, err := service.LoadClinics(ctx, client, cfg)
	if err != nil {
		return err
	}
	logger.Info().Int("count", len(clinics)).Msg("Fetched clinics")

	var transit *service.TransitData
	if mode.IncludesTransit() {
		logger.Info().Msg("Fetching subway stations and bus stops...")
		transit, err = service.LoadTransit(ctx, service.NewTransitClient(cfg.SubwayURL, cfg.BusURL))
		if err != nil {
			return err
		}
		logger.Info().Int("stations", len(transit.Stations)).Int("bus_stops", len(transit.BusStops)).Msg("Loaded transit data")
	}

	enricher := service.NewEnricher(client, geocoder, cfg, logger)
	updates, planStats, err := enricher.Plan(ctx, clinics, mode, transit)
	if err != nil {
		return err
	}

	service.PrintUpdates(out, updates)
	service.PrintEnrichSummary(out, planStats)

	if !enrichExecute {
		if len(updates) > 0 {
			logger.Info().Int("count", len(updates)).Msg("Dry run, pass --execute to apply")
		}
		return nil
	}

	stats, _ := enricher.Apply(ctx, updates)
	service.PrintWriteSummary(out, "Enrichment Write Summary", stats)

	if err := ctx.Err(); err != nil {
		return err
	}
	return checkWrites(stats)
}
