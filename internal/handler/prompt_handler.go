package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/service"
	"github.com/noah-isme/gema-content-admin/internal/utils"
)

// PromptHandler exposes the prompt library and the prompt runner.
type PromptHandler struct {
	service service.PromptService
	logger  zerolog.Logger
}

// NewPromptHandler constructs a prompt handler.
func NewPromptHandler(service service.PromptService, logger zerolog.Logger) *PromptHandler {
	return &PromptHandler{
		service: service,
		logger:  logger.With().Str("component", "prompt_handler").Logger(),
	}
}

// Register wires prompt routes.
func (h *PromptHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/run", h.run)
}

func (h *PromptHandler) list(c *fiber.Ctx) error {
	query, err := parseListQuery(c, "")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(requestContext(c), query)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list prompts")
	}
	return utils.OK(c, result.Items, "prompts retrieved", result.Pagination)
}

func (h *PromptHandler) get(c *fiber.Ctx) error {
	prompt, err := h.service.Get(requestContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch prompt")
	}
	return utils.SendSuccess(c, "prompt retrieved", prompt)
}

func (h *PromptHandler) create(c *fiber.Ctx) error {
	var payload dto.PromptCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	prompt, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create prompt")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "prompt created", prompt)
}

func (h *PromptHandler) update(c *fiber.Ctx) error {
	var payload dto.PromptUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	prompt, err := h.service.Update(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update prompt")
	}
	return utils.SendSuccess(c, "prompt updated", prompt)
}

func (h *PromptHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete prompt")
	}
	return utils.SendSuccess(c, "prompt deleted", nil)
}

func (h *PromptHandler) run(c *fiber.Ctx) error {
	var payload dto.PromptRunRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return invalidPayload(c)
		}
	}

	result, err := h.service.Run(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "prompt run failed")
	}
	return utils.SendSuccess(c, "prompt executed", result)
}
