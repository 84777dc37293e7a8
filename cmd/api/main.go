package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/config"
	"github.com/noah-isme/gema-content-admin/internal/database"
	"github.com/noah-isme/gema-content-admin/internal/handler"
	"github.com/noah-isme/gema-content-admin/internal/middleware"
	"github.com/noah-isme/gema-content-admin/internal/observability"
	"github.com/noah-isme/gema-content-admin/internal/repository"
	"github.com/noah-isme/gema-content-admin/internal/router"
	"github.com/noah-isme/gema-content-admin/internal/service"
	"github.com/noah-isme/gema-content-admin/pkg/ai"
	cloud "github.com/noah-isme/gema-content-admin/pkg/cloudinary"
)

const eventKeepAlive = 25 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if cfg.AppEnv == "development" {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	}

	probes := map[string]handler.Probe{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		probes["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		logger.Warn().Msg("redis disabled: populated reads are not cached and events stay local")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		probes["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return errors.New(natsConn.Status().String())
			}
			return nil
		}
	}

	var storage service.FileStorage
	if cfg.CloudinaryConfigured() {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		storage = uploader
	} else {
		logger.Warn().Msg("cloudinary not configured: uploads will answer 503")
	}

	var completer ai.Completer
	if cfg.OpenAIAPIKey != "" {
		openAI, err := ai.NewOpenAICompleter(ai.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Logger:  logger,
		})
		if err != nil {
			log.Fatalf("failed to create openai client: %v", err)
		}
		completer = openAI
	}

	validate := service.NewValidator()
	store := repository.NewStore(db)
	media := service.NewMediaPolicy(cfg.UploadMaxImageMB, cfg.UploadMaxAudioMB)

	busCtx, stopBus := context.WithCancel(context.Background())
	bus := service.NewEventBus(redisClient, cfg.EventsChannel, natsConn, logger)
	bus.Start(busCtx)

	aiCourseService := service.NewAICourseService(store, validate, media, bus, redisClient, cfg.CacheTTL, logger)
	aiLessonService := service.NewAILessonService(store, validate, media, bus, redisClient, cfg.CacheTTL, logger)
	courseService := service.NewCourseService(store, validate, media, bus, logger)
	lessonService := service.NewLessonService(store, validate, bus, logger)
	challengeService := service.NewChallengeService(store, validate, media, bus, logger)
	challengeDayService := service.NewChallengeDayService(store, validate, bus, logger)
	promptService := service.NewPromptService(store, validate, completer, bus, logger)
	paymentService := service.NewPaymentService(store, validate, bus, logger)
	certificateService := service.NewCertificateTemplateService(store, validate, media, bus, logger)
	uploadService := service.NewUploadService(storage, store.Uploads, media, logger)
	seedService := service.NewSeedService(store, media, bus, cfg.SeedEnabled, cfg.SeedToken, logger)
	cleanupService := service.NewCleanupService(store, redisClient, cfg.CacheTTL, logger)

	if cfg.CleanupSchedule != "" {
		if err := cleanupService.Start(cfg.CleanupSchedule); err != nil {
			log.Fatalf("failed to schedule cleanup: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    bodyLimit(cfg),
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		AICourseHandler:            handler.NewAICourseHandler(aiCourseService, logger),
		AILessonHandler:            handler.NewAILessonHandler(aiLessonService, logger),
		CourseHandler:              handler.NewCourseHandler(courseService, logger),
		LessonHandler:              handler.NewLessonHandler(lessonService, logger),
		ChallengeHandler:           handler.NewChallengeHandler(challengeService, logger),
		ChallengeDayHandler:        handler.NewChallengeDayHandler(challengeDayService, logger),
		PromptHandler:              handler.NewPromptHandler(promptService, logger),
		PaymentHandler:             handler.NewPaymentHandler(paymentService, logger),
		CertificateTemplateHandler: handler.NewCertificateTemplateHandler(certificateService, logger),
		UploadHandler:              handler.NewUploadHandler(uploadService, logger),
		EventsHandler:              handler.NewEventsHandler(bus, logger, eventKeepAlive),
		ToolsHandler:               handler.NewToolsHandler(seedService, cleanupService, logger),
		HealthProbes:               probes,
		MetricsHandler:             observability.MetricsHandler(),
		JWTMiddleware:              middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, cfg.ShutdownTimeout, func(ctx context.Context) {
		cleanupService.Stop(ctx)
		stopBus()
		if natsConn != nil {
			if err := natsConn.Drain(); err != nil {
				logger.Warn().Err(err).Msg("nats drain failed")
			}
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
}

// bodyLimit leaves room for the largest media cap once base64 encoded inside a JSON payload.
func bodyLimit(cfg config.Config) int {
	largest := cfg.UploadMaxAudioMB
	if cfg.UploadMaxImageMB > largest {
		largest = cfg.UploadMaxImageMB
	}
	return (largest*4/3 + 2) * 1024 * 1024
}

func waitForShutdown(app *fiber.App, timeout time.Duration, release func(context.Context)) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	release(ctx)

	log.Println("server stopped")
}
