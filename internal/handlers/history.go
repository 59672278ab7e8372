package handlers

import (
	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jjenkins/clinicmap/internal/model"
	"github.com/jjenkins/clinicmap/internal/templates"
)

const historyLimit = 50

// HistoryHandler lists recent dataset sync runs. history may be nil when no database is configured.
func HistoryHandler(history SyncHistory, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var runs []model.SyncRun
		if history != nil {
			var err error
			runs, err = history.ListRuns(c.UserContext(), historyLimit)
			if err != nil {
				logger.Error().Err(err).Msg("Error loading sync runs")
				return c.Status(fiber.StatusInternalServerError).SendString("Error loading sync history")
			}
		}

		page := templates.History(runs)
		handler := adaptor.HTTPHandler(templ.Handler(page))

		return handler(c)
	}
}
