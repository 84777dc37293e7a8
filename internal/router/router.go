package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-content-admin/internal/config"
	"github.com/noah-isme/gema-content-admin/internal/handler"
	"github.com/noah-isme/gema-content-admin/internal/middleware"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AICourseHandler            *handler.AICourseHandler
	AILessonHandler            *handler.AILessonHandler
	CourseHandler              *handler.CourseHandler
	LessonHandler              *handler.LessonHandler
	ChallengeHandler           *handler.ChallengeHandler
	ChallengeDayHandler        *handler.ChallengeDayHandler
	PromptHandler              *handler.PromptHandler
	PaymentHandler             *handler.PaymentHandler
	CertificateTemplateHandler *handler.CertificateTemplateHandler
	UploadHandler              *handler.UploadHandler
	EventsHandler              *handler.EventsHandler
	ToolsHandler               *handler.ToolsHandler
	HealthProbes               map[string]handler.Probe
	MetricsHandler             fiber.Handler
	JWTMiddleware              fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	if deps.MetricsHandler != nil {
		app.Get("/metrics", deps.MetricsHandler)
	}

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	content := api.Group("", jwtMiddleware, middleware.RequireRole(middleware.AuthRoleAdmin, middleware.AuthRoleEditor))

	// AI mastery paths
	if deps.AICourseHandler != nil {
		deps.AICourseHandler.Register(content.Group("/aiCourses"))
	}
	if deps.AILessonHandler != nil {
		deps.AILessonHandler.Register(content.Group("/aiLessons"))
	}

	// Classic courses
	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(content.Group("/courses"))
	}
	if deps.LessonHandler != nil {
		deps.LessonHandler.Register(content.Group("/lessons"))
	}

	// Challenges
	if deps.ChallengeHandler != nil {
		deps.ChallengeHandler.Register(content.Group("/challenges"))
	}
	if deps.ChallengeDayHandler != nil {
		deps.ChallengeDayHandler.Register(content.Group("/challengeDays"))
	}

	if deps.PromptHandler != nil {
		prompts := content.Group("/prompts")
		prompts.Post("/:id/run", middleware.RateLimit("prompt-run", cfg.PromptRunRateLimit, time.Minute))
		deps.PromptHandler.Register(prompts)
	}

	if deps.PaymentHandler != nil {
		deps.PaymentHandler.Register(content.Group("/payments"))
	}
	if deps.CertificateTemplateHandler != nil {
		deps.CertificateTemplateHandler.Register(content.Group("/certificateTemplates"))
	}

	if deps.UploadHandler != nil {
		uploads := content.Group("/uploads", middleware.RateLimit("uploads", cfg.UploadRateLimit, time.Minute))
		deps.UploadHandler.Register(uploads)
	}

	if deps.EventsHandler != nil {
		deps.EventsHandler.Register(content.Group("/events"))
	}

	// Tools sit behind the content guard and additionally require an identified admin.
	if deps.ToolsHandler != nil {
		adminOnly := middleware.WithAuth(func(c *fiber.Ctx) error {
			return c.Next()
		}, middleware.AuthOptions{Role: middleware.AuthRoleAdmin, RequireUser: true})
		deps.ToolsHandler.Register(content.Group("/tools", adminOnly))
	}
}
