package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service. It is built
// once at process start and passed by reference into the services that need
// it; nothing reads the environment after Load returns.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	ReportCacheTTL         time.Duration
	OpenRouterAPIKey       string
	OpenRouterBaseURL      string
	OpenRouterReferer      string
	VisionModel            string
	RubricModel            string
	GradingTimeout         time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	UploadMaxSizeMB        int
	NATSURL                string
	DemoTeacherID          string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CHALKBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Chalkboard API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("report.cache_ttl", "2m")
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.vision_model", "meta-llama/llama-3.2-90b-vision-instruct")
	v.SetDefault("grading.timeout", "60s")
	v.SetDefault("cloudinary.folder", "chalkboard/boards")
	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("demo.teacher_id", "11111111-1111-1111-1111-111111111111")

	cacheTTL, err := time.ParseDuration(v.GetString("report.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid report cache ttl: %w", err)
	}

	gradingTimeout, err := time.ParseDuration(v.GetString("grading.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading timeout: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		ReportCacheTTL:         cacheTTL,
		OpenRouterAPIKey:       v.GetString("openrouter.api_key"),
		OpenRouterBaseURL:      v.GetString("openrouter.base_url"),
		OpenRouterReferer:      v.GetString("openrouter.referer"),
		VisionModel:            v.GetString("openrouter.vision_model"),
		RubricModel:            v.GetString("openrouter.rubric_model"),
		GradingTimeout:         gradingTimeout,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		NATSURL:                v.GetString("nats.url"),
		DemoTeacherID:          v.GetString("demo.teacher_id"),
	}

	if cfg.OpenRouterAPIKey == "" {
		return Config{}, fmt.Errorf("openrouter api key must be provided")
	}

	if cfg.RubricModel == "" {
		cfg.RubricModel = cfg.VisionModel
	}

	if cfg.GradingTimeout <= 0 {
		cfg.GradingTimeout = 60 * time.Second
	}

	return cfg, nil
}
