package events

import (
	"report-service/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the event log.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the event log routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/events")
	group.Get("/repository/:rootId", h.HandleGetRepositoryEvents)
	group.Get("/log/:rootId", h.HandleGetStoredEvents)
	group.Post("/import/:rootId", h.HandleImportEvents)
	group.Get("/metrics", h.HandleGetMetrics)
	group.Get("/history", h.HandleGetHistory)
}

// HandleGetRepositoryEvents maps the live repository content into events.
// @Summary Get Repository Events
// @Description Map the current repository content of a root into events without touching the stored log. Inspection aid.
// @Tags events
// @Accept json
// @Produce json
// @Param rootId path string true "Repository Root Node ID"
// @Success 200 {array} map[string]interface{} "Mapped Events"
// @Failure 502 {object} map[string]string "Repository Unreachable"
// @Router /events/repository/{rootId} [get]
func (h *Handler) HandleGetRepositoryEvents(c *fiber.Ctx) error {
	rootID := c.Params("rootId")
	l := logger.WithRayID(h.service.logger, c)

	events, err := h.service.RepositoryEvents(c.Context(), rootID)
	if err != nil {
		l.Error("Failed to map repository events", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(events)
}

// HandleGetStoredEvents returns the stored events for a repository root.
// @Summary Get Stored Events
// @Description List all stored audit events scoped to the given repository root folder, newest first.
// @Tags events
// @Accept json
// @Produce json
// @Param rootId path string true "Repository Root Node ID"
// @Success 200 {array} models.EventRecord "Stored Events"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /events/log/{rootId} [get]
func (h *Handler) HandleGetStoredEvents(c *fiber.Ctx) error {
	rootID := c.Params("rootId")
	l := logger.WithRayID(h.service.logger, c)

	events, err := h.service.StoredEvents(rootID)
	if err != nil {
		l.Error("Failed to load stored events", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(events)
}

// HandleImportEvents triggers one reconciliation pass for a repository root.
// @Summary Import Repository Events
// @Description Run one synchronization pass against the content repository and append any new audit events.
// @Tags events
// @Accept json
// @Produce json
// @Param rootId path string true "Repository Root Node ID"
// @Success 200 {object} map[string]int "Number of new events"
// @Failure 502 {object} map[string]string "Repository Unreachable"
// @Router /events/import/{rootId} [post]
func (h *Handler) HandleImportEvents(c *fiber.Ctx) error {
	rootID := c.Params("rootId")
	l := logger.WithRayID(h.service.logger, c)

	count, err := h.service.Import(c.Context(), rootID)
	if err != nil {
		l.Error("Event import failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"new_events": count})
}

// HandleGetMetrics returns aggregate metrics over the stored log.
// @Summary Get Event Metrics
// @Description Aggregate counts over the stored audit log: totals, per-kind, per-day and per-mime-category.
// @Tags events
// @Accept json
// @Produce json
// @Success 200 {object} MetricsReport "Metrics Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /events/metrics [get]
func (h *Handler) HandleGetMetrics(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.Metrics()
	if err != nil {
		l.Error("Failed to build metrics report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}

// HandleGetHistory returns the most recent synchronization runs.
// @Summary Get Sync History
// @Description List the most recent synchronization run summaries, newest first.
// @Tags events
// @Accept json
// @Produce json
// @Param limit query int false "Maximum number of runs (default 20)"
// @Success 200 {array} models.SyncRun "Run History"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /events/history [get]
func (h *Handler) HandleGetHistory(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	limit := c.QueryInt("limit", 20)

	runs, err := h.service.History(limit)
	if err != nil {
		l.Error("Failed to load sync history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(runs)
}
