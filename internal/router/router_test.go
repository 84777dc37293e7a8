package router_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/gema-content-admin/internal/config"
	"github.com/noah-isme/gema-content-admin/internal/handler"
	"github.com/noah-isme/gema-content-admin/internal/middleware"
	"github.com/noah-isme/gema-content-admin/internal/models"
	"github.com/noah-isme/gema-content-admin/internal/repository"
	"github.com/noah-isme/gema-content-admin/internal/router"
	"github.com/noah-isme/gema-content-admin/internal/service"
)

const testSecret = "router-secret"

func token(t *testing.T, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-" + role,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func setupApp(t *testing.T, probes map[string]handler.Probe) *fiber.App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:router_test?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	log := zerolog.Nop()
	store := repository.NewStore(db)
	bus := service.NewEventBus(nil, "", nil, log)
	courses := service.NewCourseService(store, service.NewValidator(), service.NewMediaPolicy(0, 0), bus, log)

	cfg := config.Config{AppName: "router-test", AppEnv: "test", PromptRunRateLimit: 1, UploadRateLimit: 1}
	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		CourseHandler: handler.NewCourseHandler(courses, log),
		ToolsHandler:  handler.NewToolsHandler(nil, nil, log),
		HealthProbes:  probes,
		MetricsHandler: func(c *fiber.Ctx) error {
			return c.SendString("# metrics")
		},
		JWTMiddleware: middleware.JWTProtected(testSecret),
	})
	return app
}

func request(t *testing.T, app *fiber.App, method, path, role string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, role))
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestPublicRoutesSkipAuth(t *testing.T) {
	app := setupApp(t, nil)

	resp := request(t, app, http.MethodGet, "/api/health", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "router-test", resp.Header.Get("X-Application"))

	resp = request(t, app, http.MethodGet, "/metrics", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHealthReportsFailingProbe(t *testing.T) {
	app := setupApp(t, map[string]handler.Probe{
		"redis": func(context.Context) error { return errors.New("down") },
	})

	resp := request(t, app, http.MethodGet, "/api/health", "")
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestContentRoutesRequireEditorRole(t *testing.T) {
	app := setupApp(t, nil)

	require.Equal(t, fiber.StatusUnauthorized, request(t, app, http.MethodGet, "/api/courses", "").StatusCode)
	require.Equal(t, fiber.StatusForbidden, request(t, app, http.MethodGet, "/api/courses", "student").StatusCode)
	require.Equal(t, fiber.StatusOK, request(t, app, http.MethodGet, "/api/courses", "editor").StatusCode)
	require.Equal(t, fiber.StatusOK, request(t, app, http.MethodGet, "/api/courses", "admin").StatusCode)
}

func TestToolsRequireAdmin(t *testing.T) {
	app := setupApp(t, nil)

	// An admin role claim without a subject does not identify a user.
	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/tools/cleanup", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+anonymous)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	require.Equal(t, fiber.StatusForbidden, request(t, app, http.MethodPost, "/api/tools/cleanup", "editor").StatusCode)
	// Admin passes the guards and reaches the handler, which rejects the empty seed body.
	require.Equal(t, fiber.StatusBadRequest, request(t, app, http.MethodPost, "/api/tools/seed", "admin").StatusCode)
}
