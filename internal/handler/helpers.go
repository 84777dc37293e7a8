package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/middleware"
	"github.com/noah-isme/gema-content-admin/internal/service"
	"github.com/noah-isme/gema-content-admin/internal/utils"
)

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// parseListQuery reads paging and filters. The parent id is accepted under its resource
// specific key or the generic parentId.
func parseListQuery(c *fiber.Ctx, parentKey string) (dto.ListQuery, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return dto.ListQuery{}, errors.New("invalid page")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return dto.ListQuery{}, errors.New("invalid limit")
	}

	parentID := ""
	if parentKey != "" {
		parentID = c.Query(parentKey)
	}
	if parentID == "" {
		parentID = c.Query("parentId")
	}

	return dto.ListQuery{
		Page:     page,
		Limit:    limit,
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		ParentID: parentID,
		Tool:     c.Query("tool"),
		Category: c.Query("category"),
	}, nil
}

// wantsPopulate reports whether ?populate= names the reference. "true" and "1" are also accepted.
func wantsPopulate(c *fiber.Ctx, reference string) bool {
	for _, value := range splitAndTrim(c.Query("populate")) {
		value = strings.ToLower(value)
		if value == strings.ToLower(reference) || value == "true" || value == "1" {
			return true
		}
	}
	return false
}

func userIDStringFromContext(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// sendServiceError maps service errors onto the response envelope. Unexpected errors are
// logged and reported with the fallback message.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	var validationErr *service.ValidationError
	var fieldErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErr):
		return utils.Fail(c, fiber.StatusBadRequest, validationErr.Error(), fiber.Map{"field": validationErr.Field})
	case errors.As(err, &fieldErrs):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(fieldErrs))
	case errors.Is(err, service.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrIntegrationUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return utils.SendError(c, fiber.StatusGatewayTimeout, "request timed out")
	default:
		requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}

func validationDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Namespace()] = fieldErr.Tag()
	}
	return details
}

func invalidPayload(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
}
