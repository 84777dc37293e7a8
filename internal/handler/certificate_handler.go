package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/service"
	"github.com/noah-isme/gema-content-admin/internal/utils"
)

// CertificateTemplateHandler exposes certificate template endpoints.
type CertificateTemplateHandler struct {
	service service.CertificateTemplateService
	logger  zerolog.Logger
}

// NewCertificateTemplateHandler constructs a certificate template handler.
func NewCertificateTemplateHandler(service service.CertificateTemplateService, logger zerolog.Logger) *CertificateTemplateHandler {
	return &CertificateTemplateHandler{
		service: service,
		logger:  logger.With().Str("component", "certificate_template_handler").Logger(),
	}
}

// Register wires certificate template routes.
func (h *CertificateTemplateHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *CertificateTemplateHandler) list(c *fiber.Ctx) error {
	query, err := parseListQuery(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(requestContext(c), query)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list certificate templates")
	}
	return utils.OK(c, result.Items, "certificate templates retrieved", result.Pagination)
}

func (h *CertificateTemplateHandler) get(c *fiber.Ctx) error {
	template, err := h.service.Get(requestContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch certificate template")
	}
	return utils.SendSuccess(c, "certificate template retrieved", template)
}

func (h *CertificateTemplateHandler) create(c *fiber.Ctx) error {
	var payload dto.CertificateTemplateCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	template, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create certificate template")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "certificate template created", template)
}

func (h *CertificateTemplateHandler) update(c *fiber.Ctx) error {
	var payload dto.CertificateTemplateUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	template, err := h.service.Update(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update certificate template")
	}
	return utils.SendSuccess(c, "certificate template updated", template)
}

func (h *CertificateTemplateHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete certificate template")
	}
	return utils.SendSuccess(c, "certificate template deleted", nil)
}
