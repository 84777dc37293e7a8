package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/service"
	"github.com/noah-isme/gema-content-admin/internal/utils"
)

// AICourseHandler exposes mastery path endpoints including tree editing.
type AICourseHandler struct {
	service service.AICourseService
	logger  zerolog.Logger
}

// NewAICourseHandler constructs a mastery path handler.
func NewAICourseHandler(service service.AICourseService, logger zerolog.Logger) *AICourseHandler {
	return &AICourseHandler{
		service: service,
		logger:  logger.With().Str("component", "ai_course_handler").Logger(),
	}
}

// Register wires mastery path routes.
func (h *AICourseHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Put("/:id/tree", h.commitTree)
	router.Post("/:id/levels/:levelIndex/lessons", h.attach)
	router.Delete("/:id/lessons/:lessonId", h.detach)
}

func (h *AICourseHandler) list(c *fiber.Ctx) error {
	query, err := parseListQuery(c, "")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(requestContext(c), query)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list ai courses")
	}
	return utils.OK(c, result.Items, "ai courses retrieved", result.Pagination)
}

func (h *AICourseHandler) get(c *fiber.Ctx) error {
	if wantsPopulate(c, "lessons") {
		course, err := h.service.GetPopulated(requestContext(c), c.Params("id"))
		if err != nil {
			return sendServiceError(c, h.logger, err, "failed to fetch ai course")
		}
		return utils.SendSuccess(c, "ai course retrieved", course)
	}

	course, err := h.service.Get(requestContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch ai course")
	}
	return utils.SendSuccess(c, "ai course retrieved", course)
}

func (h *AICourseHandler) create(c *fiber.Ctx) error {
	var payload dto.AICourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	course, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create ai course")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "ai course created", course)
}

func (h *AICourseHandler) update(c *fiber.Ctx) error {
	var payload dto.AICourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	course, err := h.service.Update(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update ai course")
	}
	return utils.SendSuccess(c, "ai course updated", course)
}

func (h *AICourseHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete ai course")
	}
	return utils.SendSuccess(c, "ai course deleted", nil)
}

func (h *AICourseHandler) commitTree(c *fiber.Ctx) error {
	var payload dto.CommitTreeRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	result, err := h.service.CommitTree(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to commit tree")
	}
	return utils.SendSuccess(c, "tree committed", result)
}

func (h *AICourseHandler) attach(c *fiber.Ctx) error {
	levelIndex, err := strconv.Atoi(c.Params("levelIndex"))
	if err != nil || levelIndex < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid level index")
	}

	var payload dto.AttachLessonsRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}
	if len(payload.LessonIDs) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "lessonIds is required")
	}

	course, err := h.service.AttachChildren(requestContext(c), c.Params("id"), levelIndex, payload.LessonIDs)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to attach lessons")
	}
	return utils.SendSuccess(c, "lessons attached", course)
}

func (h *AICourseHandler) detach(c *fiber.Ctx) error {
	course, err := h.service.DetachChild(requestContext(c), c.Params("id"), c.Params("lessonId"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to detach lesson")
	}
	return utils.SendSuccess(c, "lesson detached", course)
}
