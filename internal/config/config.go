package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	AutoMigrate            bool
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	CacheTTL               time.Duration
	CleanupSchedule        string
	SeedEnabled            bool
	SeedToken              string
	OpenAIAPIKey           string
	OpenAIModel            string
	OpenAIBaseURL          string
	EventsChannel          string
	UploadMaxImageMB       int
	UploadMaxAudioMB       int
	UploadRateLimit        int
	PromptRunRateLimit     int
	ShutdownTimeout        time.Duration
	CORSAllowOrigins       string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// CloudinaryConfigured reports whether uploads can reach Cloudinary.
func (c Config) CloudinaryConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CMS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Content Admin API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("cloudinary.folder", "cms/content")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cleanup.schedule", "@every 1h")
	v.SetDefault("seed.enabled", false)
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("events.channel", "cms")
	v.SetDefault("upload.max_image_mb", 5)
	v.SetDefault("upload.max_audio_mb", 10)
	v.SetDefault("upload.rate_limit", 30)
	v.SetDefault("prompt.rate_limit", 10)
	v.SetDefault("shutdown_timeout", "5s")
	v.SetDefault("cors.allow_origins", "*")

	ttl, err := time.ParseDuration(v.GetString("cache.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}

	shutdownTimeout, err := time.ParseDuration(v.GetString("shutdown_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	schedule := strings.TrimSpace(v.GetString("cleanup.schedule"))
	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return Config{}, fmt.Errorf("invalid cleanup schedule: %w", err)
		}
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		AutoMigrate:            v.GetBool("database.auto_migrate"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		CacheTTL:               ttl,
		CleanupSchedule:        schedule,
		SeedEnabled:            v.GetBool("seed.enabled"),
		SeedToken:              v.GetString("seed.token"),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		OpenAIModel:            v.GetString("openai_model"),
		OpenAIBaseURL:          v.GetString("openai_base_url"),
		EventsChannel:          v.GetString("events.channel"),
		UploadMaxImageMB:       v.GetInt("upload.max_image_mb"),
		UploadMaxAudioMB:       v.GetInt("upload.max_audio_mb"),
		UploadRateLimit:        v.GetInt("upload.rate_limit"),
		PromptRunRateLimit:     v.GetInt("prompt.rate_limit"),
		ShutdownTimeout:        shutdownTimeout,
		CORSAllowOrigins:       v.GetString("cors.allow_origins"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}
	if cfg.SeedEnabled && strings.TrimSpace(cfg.SeedToken) == "" {
		return Config{}, fmt.Errorf("seed token must be provided when seeding is enabled")
	}

	if cfg.UploadMaxImageMB <= 0 {
		cfg.UploadMaxImageMB = 5
	}
	if cfg.UploadMaxAudioMB <= 0 {
		cfg.UploadMaxAudioMB = 10
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	return cfg, nil
}
