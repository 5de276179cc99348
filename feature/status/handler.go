package status

import (
	"errors"

	"cmdb-sync/core/history"
	"cmdb-sync/core/logger"
	"cmdb-sync/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the run API routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/api/v1")
	group.Post("/sync", h.HandleTriggerSync)
	group.Get("/runs", h.HandleListRuns)
	group.Get("/runs/latest", h.HandleLatestRun)
	group.Get("/runs/:id/report", h.HandleRunReport)
}

// HandleTriggerSync starts a sync run and responds with its report.
// While a run is active, further triggers join it instead of starting
// a second pass against the target.
func (h *Handler) HandleTriggerSync(c *fiber.Ctx) error {
	dryRun := c.QueryBool("dry_run")
	l := logger.WithRayID(h.service.logger, c)

	report, shared, err := h.service.TriggerSync(c.Context(), dryRun)
	if err != nil {
		if errors.Is(err, reconcile.ErrPendingChanges) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		l.Error("Sync run failed", zap.Error(err))

		var fetchErr *reconcile.FetchError
		if errors.As(err, &fetchErr) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if shared {
		l.Info("Joined in-flight sync run", zap.String("run_id", report.RunID))
	}
	return c.JSON(report)
}

// HandleListRuns lists recorded runs, newest first.
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", history.DefaultListLimit)
	l := logger.WithRayID(h.service.logger, c)

	runs, err := h.service.History(c.Context(), limit)
	if err != nil {
		if errors.Is(err, ErrHistoryDisabled) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Listing runs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(runs)
}

// HandleLatestRun returns the most recent run. The in-memory report
// from this process wins; otherwise the history row is returned.
func (h *Handler) HandleLatestRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, run, err := h.service.Latest(c.Context())
	if err != nil {
		l.Error("Loading latest run failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if report != nil {
		return c.JSON(report)
	}
	if run != nil {
		return c.JSON(run)
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "no completed runs",
	})
}

// HandleRunReport returns the archived full report for one run.
func (h *Handler) HandleRunReport(c *fiber.Ctx) error {
	id := c.Params("id")
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.Report(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrHistoryDisabled):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, ErrRunNotFound), errors.Is(err, ErrReportNotArchived):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Loading run report failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}
