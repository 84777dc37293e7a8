package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/service"
	"github.com/noah-isme/gema-content-admin/internal/utils"
)

// AILessonHandler exposes mastery path lesson endpoints.
type AILessonHandler struct {
	service service.AILessonService
	logger  zerolog.Logger
}

// NewAILessonHandler constructs a lesson handler.
func NewAILessonHandler(service service.AILessonService, logger zerolog.Logger) *AILessonHandler {
	return &AILessonHandler{
		service: service,
		logger:  logger.With().Str("component", "ai_lesson_handler").Logger(),
	}
}

// Register wires lesson routes. The batch route is registered before /:id.
func (h *AILessonHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Post("/batch", h.batch)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AILessonHandler) list(c *fiber.Ctx) error {
	query, err := parseListQuery(c, "aiCourseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(requestContext(c), query)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list ai lessons")
	}
	return utils.OK(c, result.Items, "ai lessons retrieved", result.Pagination)
}

func (h *AILessonHandler) get(c *fiber.Ctx) error {
	lesson, err := h.service.Get(requestContext(c), c.Params("id"), wantsPopulate(c, "aiCourse"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch ai lesson")
	}
	return utils.SendSuccess(c, "ai lesson retrieved", lesson)
}

func (h *AILessonHandler) create(c *fiber.Ctx) error {
	var payload dto.AILessonCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	lesson, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create ai lesson")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "ai lesson created", lesson)
}

func (h *AILessonHandler) batch(c *fiber.Ctx) error {
	var payload dto.AILessonBatchRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	result, err := h.service.BatchCreate(requestContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create ai lessons")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "ai lessons created", result)
}

func (h *AILessonHandler) update(c *fiber.Ctx) error {
	var payload dto.AILessonUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	lesson, err := h.service.Update(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update ai lesson")
	}
	return utils.SendSuccess(c, "ai lesson updated", lesson)
}

func (h *AILessonHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete ai lesson")
	}
	return utils.SendSuccess(c, "ai lesson deleted", nil)
}
