package reports

import (
	"errors"

	"report-service/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for retention reports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the report routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/reports")
	group.Get("/:rootId", h.HandleGetReport)
	group.Post("/:rootId/archive", h.HandleArchiveReport)
	group.Get("/:rootId/archives", h.HandleListArchives)
}

// HandleGetReport renders a retention report over the live repository content.
// @Summary Get Retention Report
// @Description Build a point-in-time retention report for all documents under a repository root.
// @Tags reports
// @Accept json
// @Produce json
// @Param rootId path string true "Repository Root Node ID"
// @Success 200 {object} Report "Retention Report"
// @Failure 502 {object} map[string]string "Repository Unreachable"
// @Router /reports/{rootId} [get]
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	rootID := c.Params("rootId")
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.Build(c.Context(), rootID)
	if err != nil {
		l.Error("Report build failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}

// HandleArchiveReport builds a report and stores it in object storage.
// @Summary Archive Retention Report
// @Description Build a retention report and persist it to object storage as JSON.
// @Tags reports
// @Accept json
// @Produce json
// @Param rootId path string true "Repository Root Node ID"
// @Success 200 {object} map[string]string "Archive Location"
// @Failure 503 {object} map[string]string "Archival Not Configured"
// @Failure 502 {object} map[string]string "Repository or Storage Unreachable"
// @Router /reports/{rootId}/archive [post]
func (h *Handler) HandleArchiveReport(c *fiber.Ctx) error {
	rootID := c.Params("rootId")
	l := logger.WithRayID(h.service.logger, c)

	report, key, err := h.service.BuildAndArchive(c.Context(), rootID)
	if errors.Is(err, ErrArchivalDisabled) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		l.Error("Report archival failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"object_key": key,
		"documents":  report.Documents,
	})
}

// HandleListArchives lists the stored archives for a root.
// @Summary List Report Archives
// @Description List the object keys of all archived reports for a repository root.
// @Tags reports
// @Accept json
// @Produce json
// @Param rootId path string true "Repository Root Node ID"
// @Success 200 {array} string "Archive Keys"
// @Failure 503 {object} map[string]string "Archival Not Configured"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /reports/{rootId}/archives [get]
func (h *Handler) HandleListArchives(c *fiber.Ctx) error {
	rootID := c.Params("rootId")
	l := logger.WithRayID(h.service.logger, c)

	keys, err := h.service.Archives(c.Context(), rootID)
	if errors.Is(err, ErrArchivalDisabled) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		l.Error("Archive listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if keys == nil {
		keys = []string{}
	}

	return c.JSON(keys)
}
