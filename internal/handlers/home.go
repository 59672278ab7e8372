package handlers

import (
	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jjenkins/clinicmap/internal/filter"
	"github.com/jjenkins/clinicmap/internal/service"
	"github.com/jjenkins/clinicmap/internal/templates"
)

// HomeHandler renders the status page. history may be nil when no database is configured.
func HomeHandler(ds *Dataset, history SyncHistory, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := templates.HomeStatus{
			HasData:          ds.HasData(),
			PhysicalClinics:  len(ds.Physical),
			VirtualClinics:   len(ds.Virtual),
			TotalRecords:     ds.Collection.Metadata.TotalRecords,
			DatasetGenerated: ds.Collection.Metadata.Generated,
			DatasetSource:    ds.Collection.Metadata.Source,
		}

		if status.HasData {
			status.MissingHours = len(service.HoursCoverage(ds.Collection).MissingHours)
			for _, tag := range filter.ServiceTags {
				matches := filter.Clinics(ds.Physical, filter.Criteria{Services: []string{tag}})
				status.ServiceCounts = append(status.ServiceCounts, templates.ServiceCount{Tag: tag, Count: len(matches)})
			}
		}

		if history != nil {
			last, err := history.LastSync(c.UserContext())
			if err != nil {
				logger.Error().Err(err).Msg("Error loading last sync")
			} else {
				status.LastSync = last
			}
		}

		page := templates.Home(status)
		handler := adaptor.HTTPHandler(templ.Handler(page))

		return handler(c)
	}
}

// HealthHandler reports liveness along with the loaded record counts
func HealthHandler(ds *Dataset) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"physical": len(ds.Physical),
			"virtual":  len(ds.Virtual),
		})
	}
}
