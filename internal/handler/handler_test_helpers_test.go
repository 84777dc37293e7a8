package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/gema-content-admin/internal/handler"
	"github.com/noah-isme/gema-content-admin/internal/models"
	"github.com/noah-isme/gema-content-admin/internal/repository"
	"github.com/noah-isme/gema-content-admin/internal/service"
)

var handlerDBCounter int64

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination json.RawMessage `json:"pagination"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
}

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handler_%d?mode=memory&cache=shared", atomic.AddInt64(&handlerDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// newContentApp mounts every content handler over real services backed by sqlite.
func newContentApp(t *testing.T) *fiber.App {
	t.Helper()
	store := repository.NewStore(newHandlerDB(t))
	validate := service.NewValidator()
	media := service.NewMediaPolicy(0, 0)
	bus := service.NewEventBus(nil, "", nil, zerolog.Nop())
	log := zerolog.Nop()

	app := fiber.New()
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Locals("user_id", "editor-1")
		c.Locals("user_role", "editor")
		return c.Next()
	})

	handler.NewAICourseHandler(service.NewAICourseService(store, validate, media, bus, nil, 0, log), log).Register(api.Group("/aiCourses"))
	handler.NewAILessonHandler(service.NewAILessonService(store, validate, media, bus, nil, 0, log), log).Register(api.Group("/aiLessons"))
	handler.NewCourseHandler(service.NewCourseService(store, validate, media, bus, log), log).Register(api.Group("/courses"))
	handler.NewLessonHandler(service.NewLessonService(store, validate, bus, log), log).Register(api.Group("/lessons"))
	handler.NewChallengeHandler(service.NewChallengeService(store, validate, media, bus, log), log).Register(api.Group("/challenges"))
	handler.NewChallengeDayHandler(service.NewChallengeDayService(store, validate, bus, log), log).Register(api.Group("/challengeDays"))
	handler.NewPromptHandler(service.NewPromptService(store, validate, nil, bus, log), log).Register(api.Group("/prompts"))
	handler.NewPaymentHandler(service.NewPaymentService(store, validate, bus, log), log).Register(api.Group("/payments"))
	handler.NewCertificateTemplateHandler(service.NewCertificateTemplateService(store, validate, media, bus, log), log).Register(api.Group("/certificateTemplates"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

// expectStatus asserts the status code and decodes the envelope, then the data into target when given.
func expectStatus(t *testing.T, resp *http.Response, status int, target interface{}) envelope {
	t.Helper()
	var body envelope
	decodeResponse(t, resp, &body)
	require.Equal(t, status, resp.StatusCode, "error: %s", body.Error)
	if target != nil {
		require.NoError(t, json.Unmarshal(body.Data, target))
	}
	return body
}
