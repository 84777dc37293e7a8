package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRegisterRecoversAndTagsResponses(t *testing.T) {
	app := fiber.New()
	logger := zerolog.Nop()
	Register(app, Config{Logger: &logger, AllowOrigins: "https://admin.example.com"})
	app.Get("/api/panic", func(c *fiber.Ctx) error { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/api/panic", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(HeaderCorrelationID))
	require.Equal(t, "https://admin.example.com", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}
