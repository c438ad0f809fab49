package maintenance

import (
	"time"

	"courtsync/core/clock"
	"courtsync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for reconciliation runs and the
// development clock.
type Handler struct {
	service *Service
	clock   *clock.Clock
	devMode bool
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, clk *clock.Clock, devMode bool, l *zap.Logger) *Handler {
	return &Handler{service: service, clock: clk, devMode: devMode, logger: l}
}

// RegisterRoutes registers the maintenance and dev clock routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/maintenance")
	// GET is kept alongside POST so plain cron fetchers can trigger runs.
	group.Post("/run", h.HandleRun)
	group.Get("/run", h.HandleRun)

	dev := app.Group("/dev")
	dev.Get("/time", h.HandleGetTime)
	dev.Post("/time", h.HandleSetTime)
}

// HandleRun triggers one reconciliation run.
// @Summary Run Reconciliation
// @Description Executes the full ordered transition sequence for reservations and queue sessions. Individual step errors are reported inside the body; only an orchestration-level failure yields a 500.
// @Tags maintenance
// @Accept json
// @Produce json
// @Success 200 {object} maintenance.Report "Run Report"
// @Failure 500 {object} map[string]interface{} "Orchestration Failure"
// @Router /maintenance/run [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	l.Info("Reconciliation run triggered")

	report, err := h.service.Run(c.Context())
	if err != nil {
		l.Error("Reconciliation run failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(report)
}

// HandleGetTime reports the simulated time.
// @Summary Read Simulated Time
// @Description Returns the current simulated time and offset. Development deployments only.
// @Tags dev
// @Produce json
// @Success 200 {object} map[string]interface{} "Clock State"
// @Failure 403 {object} map[string]string "Not Development"
// @Router /dev/time [get]
func (h *Handler) HandleGetTime(c *fiber.Ctx) error {
	if !h.devMode {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "not allowed outside development",
		})
	}

	offset, err := h.clock.Offset(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"now":       time.Now().Add(offset),
		"offset_ms": offset.Milliseconds(),
		"real_time": time.Now(),
	})
}

type setTimeRequest struct {
	// OffsetMs shifts the clock by a relative delta from real time.
	OffsetMs *int64 `json:"offset_ms"`
	// TargetTime sets the clock to an absolute RFC3339 instant.
	TargetTime string `json:"target_time"`
	// Reset returns the clock to real time.
	Reset bool `json:"reset"`
}

// HandleSetTime sets or clears the simulated time offset.
// @Summary Set Simulated Time
// @Description Sets the clock offset from a relative delta, an absolute target time, or resets it. Development deployments only.
// @Tags dev
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "New Clock State"
// @Failure 400 {object} map[string]string "Invalid Request"
// @Failure 403 {object} map[string]string "Not Development"
// @Router /dev/time [post]
func (h *Handler) HandleSetTime(c *fiber.Ctx) error {
	if !h.devMode {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "not allowed outside development",
		})
	}

	l := logger.WithRayID(h.logger, c)

	var req setTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var offset time.Duration
	switch {
	case req.OffsetMs != nil:
		offset = time.Duration(*req.OffsetMs) * time.Millisecond
	case req.TargetTime != "":
		target, err := time.Parse(time.RFC3339, req.TargetTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid target_time"})
		}
		offset = time.Until(target)
	case req.Reset:
		offset = 0
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing offset_ms, target_time or reset",
		})
	}

	if err := h.clock.SetOffset(c.Context(), offset); err != nil {
		l.Error("Failed to set clock offset", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Clock offset updated", zap.Duration("offset", offset))

	return c.JSON(fiber.Map{
		"success":   true,
		"offset_ms": offset.Milliseconds(),
		"new_time":  time.Now().Add(offset),
	})
}
