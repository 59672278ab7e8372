package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/clinicmap/internal/filter"
	"github.com/jjenkins/clinicmap/internal/metrics"
	"github.com/jjenkins/clinicmap/internal/service"
)

// splitList parses a comma separated query parameter, dropping blanks.
// Parts are copied since fiber reuses the request buffer after the handler returns.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.Clone(part))
		}
	}
	return out
}

// ClinicsHandler filters the physical clinics on the map
func ClinicsHandler(ds *Dataset, m *metrics.FilterMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		criteria := filter.Criteria{
			Query:     c.Query("q"),
			Services:  splitList(c.Query("services")),
			Insurance: splitList(c.Query("insurance")),
			Access:    splitList(c.Query("access")),
			Boroughs:  splitList(c.Query("boroughs")),
		}
		if raw := c.Query("weeks"); raw != "" {
			weeks, err := strconv.Atoi(raw)
			if err != nil || weeks < 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "weeks must be a non-negative integer"})
			}
			criteria.GestationalWeeks = &weeks
		}

		clinics := filter.Clinics(ds.Physical, criteria)
		m.ObserveTags(criteria.Services)
		m.ObserveRequest("clinics", len(clinics))

		return c.JSON(fiber.Map{
			"count":   len(clinics),
			"clinics": clinics,
		})
	}
}

// VirtualClinicsHandler returns the virtual clinics offering any of the selected services
func VirtualClinicsHandler(ds *Dataset, m *metrics.FilterMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		selected := splitList(c.Query("services"))

		clinics := filter.VirtualClinics(ds.Virtual, selected)
		m.ObserveTags(selected)
		m.ObserveRequest("virtual", len(clinics))

		return c.JSON(fiber.Map{
			"count":   len(clinics),
			"clinics": clinics,
		})
	}
}

// QualityHandler reports hours coverage for the published dataset
func QualityHandler(ds *Dataset) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report := service.HoursCoverage(ds.Collection)
		return c.JSON(fiber.Map{
			"total":         report.Total,
			"missing_hours": report.MissingHours,
			"by_borough":    report.ByBorough,
		})
	}
}
