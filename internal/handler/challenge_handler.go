package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/service"
	"github.com/noah-isme/gema-content-admin/internal/utils"
)

// ChallengeHandler exposes challenge endpoints.
type ChallengeHandler struct {
	service service.ChallengeService
	logger  zerolog.Logger
}

// NewChallengeHandler constructs a challenge handler.
func NewChallengeHandler(service service.ChallengeService, logger zerolog.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		service: service,
		logger:  logger.With().Str("component", "challenge_handler").Logger(),
	}
}

// Register wires challenge routes.
func (h *ChallengeHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ChallengeHandler) list(c *fiber.Ctx) error {
	query, err := parseListQuery(c, "")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(requestContext(c), query)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list challenges")
	}
	return utils.OK(c, result.Items, "challenges retrieved", result.Pagination)
}

func (h *ChallengeHandler) get(c *fiber.Ctx) error {
	challenge, err := h.service.Get(requestContext(c), c.Params("id"), wantsPopulate(c, "days"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch challenge")
	}
	return utils.SendSuccess(c, "challenge retrieved", challenge)
}

func (h *ChallengeHandler) create(c *fiber.Ctx) error {
	var payload dto.ChallengeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	challenge, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create challenge")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "challenge created", challenge)
}

func (h *ChallengeHandler) update(c *fiber.Ctx) error {
	var payload dto.ChallengeUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	challenge, err := h.service.Update(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update challenge")
	}
	return utils.SendSuccess(c, "challenge updated", challenge)
}

func (h *ChallengeHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete challenge")
	}
	return utils.SendSuccess(c, "challenge deleted", nil)
}

// ChallengeDayHandler exposes challenge day endpoints.
type ChallengeDayHandler struct {
	service service.ChallengeDayService
	logger  zerolog.Logger
}

// NewChallengeDayHandler constructs a challenge day handler.
func NewChallengeDayHandler(service service.ChallengeDayService, logger zerolog.Logger) *ChallengeDayHandler {
	return &ChallengeDayHandler{
		service: service,
		logger:  logger.With().Str("component", "challenge_day_handler").Logger(),
	}
}

// Register wires challenge day routes.
func (h *ChallengeDayHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ChallengeDayHandler) list(c *fiber.Ctx) error {
	query, err := parseListQuery(c, "challengeId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(requestContext(c), query)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list challenge days")
	}
	return utils.OK(c, result.Items, "challenge days retrieved", result.Pagination)
}

func (h *ChallengeDayHandler) get(c *fiber.Ctx) error {
	day, err := h.service.Get(requestContext(c), c.Params("id"), wantsPopulate(c, "challenge"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch challenge day")
	}
	return utils.SendSuccess(c, "challenge day retrieved", day)
}

func (h *ChallengeDayHandler) create(c *fiber.Ctx) error {
	var payload dto.ChallengeDayCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	day, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create challenge day")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "challenge day created", day)
}

func (h *ChallengeDayHandler) update(c *fiber.Ctx) error {
	var payload dto.ChallengeDayUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	day, err := h.service.Update(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update challenge day")
	}
	return utils.SendSuccess(c, "challenge day updated", day)
}

func (h *ChallengeDayHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete challenge day")
	}
	return utils.SendSuccess(c, "challenge day deleted", nil)
}
