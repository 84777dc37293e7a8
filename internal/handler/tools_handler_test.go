package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/handler"
	"github.com/noah-isme/gema-content-admin/internal/service"
)

type stubSeedService struct {
	token string
	body  string
	err   error
}

func (s *stubSeedService) Seed(_ context.Context, token string, raw []byte) (dto.SeedReport, error) {
	s.token = token
	s.body = string(raw)
	if s.err != nil {
		return dto.SeedReport{}, s.err
	}
	return dto.SeedReport{AICourses: []string{"course-1"}, AILessons: 4}, nil
}

type stubCleanupService struct {
	sweeps int
}

func (s *stubCleanupService) Sweep(context.Context) (dto.CleanupReport, error) {
	s.sweeps++
	return dto.CleanupReport{AILessonsRemoved: 2, CourseRefsDetached: 1}, nil
}

func (s *stubCleanupService) Start(string) error { return nil }

func (s *stubCleanupService) Stop(context.Context) {}

func setupToolsApp(seed service.SeedService, cleanup service.CleanupService) *fiber.App {
	app := fiber.New()
	handler.NewToolsHandler(seed, cleanup, zerolog.Nop()).Register(app.Group("/api/tools"))
	return app
}

func seedRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/tools/seed", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/yaml")
	req.Header.Set("X-Seed-Token", "secret")
	return req
}

func TestToolsHandlerSeed(t *testing.T) {
	seed := &stubSeedService{}
	app := setupToolsApp(seed, &stubCleanupService{})

	resp, err := app.Test(seedRequest("aiCourses: []\n"))
	require.NoError(t, err)

	var report dto.SeedReport
	expectStatus(t, resp, fiber.StatusCreated, &report)
	require.Equal(t, "secret", seed.token)
	require.Equal(t, "aiCourses: []\n", seed.body)
	require.Equal(t, 4, report.AILessons)

	resp, err = app.Test(seedRequest(""))
	require.NoError(t, err)
	expectStatus(t, resp, fiber.StatusBadRequest, nil)
}

func TestToolsHandlerSeedErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{err: service.ErrSeedDisabled, status: fiber.StatusForbidden},
		{err: service.ErrSeedUnauthorized, status: fiber.StatusForbidden},
		{err: &service.ValidationError{Field: "body", Message: "invalid seed file"}, status: fiber.StatusBadRequest},
		{err: errors.New("db down"), status: fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		app := setupToolsApp(&stubSeedService{err: tc.err}, &stubCleanupService{})
		resp, err := app.Test(seedRequest("aiCourses: []\n"))
		require.NoError(t, err)
		expectStatus(t, resp, tc.status, nil)
	}
}

func TestToolsHandlerCleanup(t *testing.T) {
	cleanup := &stubCleanupService{}
	app := setupToolsApp(&stubSeedService{}, cleanup)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/tools/cleanup", nil))
	require.NoError(t, err)

	var report dto.CleanupReport
	expectStatus(t, resp, fiber.StatusOK, &report)
	require.Equal(t, 1, cleanup.sweeps)
	require.Equal(t, int64(2), report.AILessonsRemoved)
	require.Equal(t, 1, report.CourseRefsDetached)
}
