// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// RedisConfig provides Redis connection settings for the checkpoint store
// and the task scheduler.
type RedisConfig interface {
	GetRedisURL() string
	GetCheckpointTTL() time.Duration
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetTaskQueueName() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// LLMConfig provides settings for the completion service.
type LLMConfig interface {
	GetLLMAPIKey() string
	GetLLMBaseURL() string
	GetLLMModel() string
}

// GeocodingConfig provides settings for the LocationIQ geocoder.
type GeocodingConfig interface {
	GetLocationIQKey() string
}

// WorkflowConfig provides webhook URLs for the n8n automation workflows.
type WorkflowConfig interface {
	GetSlotsWebhookURL() string
	GetScheduleWebhookURL() string
	GetHandoffWebhookURL() string
}

// WebhookConfig provides settings for the inbound WhatsApp webhook.
type WebhookConfig interface {
	GetWhatsAppVerifyToken() string
}

// =============================================================================
// Concrete Config
// =============================================================================

// Config holds all application settings loaded from the environment.
type Config struct {
	Env           string
	HTTPAddr      string
	DatabaseURL   string
	RedisURL      string
	CheckpointTTL time.Duration
	TaskQueue     string

	CORSAllowAll bool
	CORSOrigins  []string

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	LocationIQKey string

	SlotsWebhookURL    string
	ScheduleWebhookURL string
	HandoffWebhookURL  string

	WhatsAppVerifyToken string
}

// Load reads configuration from the environment (and .env in development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CheckpointTTL: mustDuration(getEnv("CHECKPOINT_TTL", "24h")),
		TaskQueue:     getEnv("TASK_QUEUE_NAME", "default"),

		CORSAllowAll: corsAllowAll,
		CORSOrigins:  corsOrigins,

		LLMAPIKey:  getEnv("OPENAI_API_KEY", ""),
		LLMBaseURL: getEnv("OPENAI_BASE_URL", ""),
		LLMModel:   getEnv("OPENAI_MODEL", "gpt-4o"),

		LocationIQKey: getEnv("LOCATION_IQ_KEY", ""),

		SlotsWebhookURL:    getEnv("WORKFLOW_SLOTS_URL", ""),
		ScheduleWebhookURL: getEnv("WORKFLOW_SCHEDULE_URL", ""),
		HandoffWebhookURL:  getEnv("WORKFLOW_HANDOFF_URL", ""),

		WhatsAppVerifyToken: getEnv("WHATSAPP_VERIFY_TOKEN", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.WhatsAppVerifyToken == "" {
		return nil, fmt.Errorf("WHATSAPP_VERIFY_TOKEN is required")
	}

	return cfg, nil
}

// Interface implementations.

func (c *Config) GetDatabaseURL() string              { return c.DatabaseURL }
func (c *Config) GetRedisURL() string                 { return c.RedisURL }
func (c *Config) GetCheckpointTTL() time.Duration     { return c.CheckpointTTL }
func (c *Config) GetTaskQueueName() string            { return c.TaskQueue }
func (c *Config) GetHTTPAddr() string                 { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool               { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string            { return c.CORSOrigins }
func (c *Config) GetLLMAPIKey() string                { return c.LLMAPIKey }
func (c *Config) GetLLMBaseURL() string               { return c.LLMBaseURL }
func (c *Config) GetLLMModel() string                 { return c.LLMModel }
func (c *Config) GetLocationIQKey() string            { return c.LocationIQKey }
func (c *Config) GetSlotsWebhookURL() string          { return c.SlotsWebhookURL }
func (c *Config) GetScheduleWebhookURL() string       { return c.ScheduleWebhookURL }
func (c *Config) GetHandoffWebhookURL() string        { return c.HandoffWebhookURL }
func (c *Config) GetWhatsAppVerifyToken() string      { return c.WhatsAppVerifyToken }

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
