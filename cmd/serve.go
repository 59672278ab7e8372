package cmd

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jjenkins/clinicmap/internal/handlers"
	"github.com/jjenkins/clinicmap/internal/metrics"
	"github.com/jjenkins/clinicmap/internal/store"
)

const shutdownTimeout = 5 * time.Second

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the clinic filters and dataset status over HTTP",
	Long: `Loads the published dataset files and serves the clinic filter API, a
status page, and Prometheus metrics.

When DATABASE_URL is set the status and history pages include sync runs.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "port to run the server on (default from PORT, then 8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if port == "" {
		port = cfg.Port
	}

	ds, errs := handlers.LoadDataset(cfg.DatasetPath, cfg.VirtualDatasetPath)
	for _, err := range errs {
		logger.Warn().Err(err).Msg("Dataset file not loaded")
	}
	logger.Info().
		Int("physical", len(ds.Physical)).
		Int("virtual", len(ds.Virtual)).
		Msg("Loaded dataset")

	m := metrics.NewFilterMetrics(nil)
	m.SetDataset(len(ds.Physical), len(ds.Virtual))

	var history handlers.SyncHistory
	if cfg.DatabaseURL != "" {
		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := store.EnsureSchema(ctx, db); err != nil {
			return err
		}
		history = store.NewSyncStore(db)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Clinic Map",
		DisableStartupMessage: true,
	})

	app.Use(fiberlogger.New())

	app.Get("/", handlers.HomeHandler(ds, history, logger))
	app.Get("/healthz", handlers.HealthHandler(ds))
	app.Get("/history", handlers.HistoryHandler(history, logger))

	api := app.Group("/api")
	api.Get("/clinics", handlers.ClinicsHandler(ds, m))
	api.Get("/virtual-clinics", handlers.VirtualClinicsHandler(ds, m))
	api.Get("/quality", handlers.QualityHandler(ds))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Shutting down server...")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	logger.Info().Str("port", port).Msg("Starting server")
	return app.Listen(":" + port)
}
