package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/service"
	"github.com/noah-isme/gema-content-admin/internal/utils"
)

// ToolsHandler exposes maintenance endpoints for seeding and orphan cleanup.
type ToolsHandler struct {
	seed    service.SeedService
	cleanup service.CleanupService
	logger  zerolog.Logger
}

// NewToolsHandler constructs a tools handler.
func NewToolsHandler(seed service.SeedService, cleanup service.CleanupService, logger zerolog.Logger) *ToolsHandler {
	return &ToolsHandler{
		seed:    seed,
		cleanup: cleanup,
		logger:  logger.With().Str("component", "tools_handler").Logger(),
	}
}

// Register wires tooling routes.
func (h *ToolsHandler) Register(router fiber.Router) {
	router.Post("/seed", h.runSeed)
	router.Post("/cleanup", h.runCleanup)
}

func (h *ToolsHandler) runSeed(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "seed file is required")
	}

	report, err := h.seed.Seed(requestContext(c), c.Get("X-Seed-Token"), body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeedDisabled):
			return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
		case errors.Is(err, service.ErrSeedUnauthorized):
			return utils.SendError(c, fiber.StatusForbidden, "invalid token")
		default:
			return sendServiceError(c, h.logger, err, "seed operation failed")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "mastery paths seeded", report)
}

func (h *ToolsHandler) runCleanup(c *fiber.Ctx) error {
	report, err := h.cleanup.Sweep(requestContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "cleanup failed")
	}
	return utils.SendSuccess(c, "cleanup finished", report)
}
