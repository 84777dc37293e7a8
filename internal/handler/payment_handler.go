package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/service"
	"github.com/noah-isme/gema-content-admin/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PaymentHandler exposes payment records and their spreadsheet export.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
	now     func() time.Time
}

// NewPaymentHandler constructs a payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("component", "payment_handler").Logger(),
		now:     time.Now,
	}
}

// Register wires payment routes.
func (h *PaymentHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/export", h.export)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *PaymentHandler) list(c *fiber.Ctx) error {
	query, err := parseListQuery(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.List(requestContext(c), query)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list payments")
	}
	return utils.OK(c, result.Items, "payments retrieved", result.Pagination)
}

func (h *PaymentHandler) get(c *fiber.Ctx) error {
	payment, err := h.service.Get(requestContext(c), c.Params("id"), wantsPopulate(c, "course"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch payment")
	}
	return utils.SendSuccess(c, "payment retrieved", payment)
}

func (h *PaymentHandler) create(c *fiber.Ctx) error {
	var payload dto.PaymentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	payment, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create payment")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "payment created", payment)
}

func (h *PaymentHandler) update(c *fiber.Ctx) error {
	var payload dto.PaymentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidPayload(c)
	}

	payment, err := h.service.Update(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update payment")
	}
	return utils.SendSuccess(c, "payment updated", payment)
}

func (h *PaymentHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete payment")
	}
	return utils.SendSuccess(c, "payment deleted", nil)
}

func (h *PaymentHandler) export(c *fiber.Ctx) error {
	workbook, err := h.service.Export(requestContext(c), c.Query("status"))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to export payments")
	}

	filename := fmt.Sprintf("payments-%s.xlsx", h.now().UTC().Format("20060102-150405"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).Send(workbook)
}
