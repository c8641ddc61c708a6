package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config is the full application configuration, loaded from
// environment variables. Provider and store credentials stay with
// their own packages; this covers everything else.
type Config struct {
	Port     string
	Provider string

	// Redis session store; empty addr falls back to in-memory storage.
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
	MarkerTTL     time.Duration

	// Countdown engine tuning.
	TimerWarningAt    int
	TimerPersistEvery time.Duration

	// JWT bearer auth for recruiter endpoints; empty disables auth.
	JWTSecret string

	// Score audit export job.
	ExportSchedule string
	ExportDir      string
	ExportEnabled  bool

	// Idle session reaper job.
	ReaperSchedule   string
	ReaperEnabled    bool
	IdleThreshold    time.Duration
	CompleteRetained time.Duration

	AllowedOrigins []string
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	config := &Config{
		Port:     getEnvOrDefault("PORT", "8085"),
		Provider: getEnvOrDefault("AI_PROVIDER", "gemini"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
		MarkerTTL:     getEnvDuration("SESSION_MARKER_TTL", 12*time.Hour),

		TimerWarningAt:    getEnvInt("TIMER_WARNING_AT", 5),
		TimerPersistEvery: getEnvDuration("TIMER_PERSIST_EVERY", 10*time.Second),

		JWTSecret: os.Getenv("JWT_SECRET"),

		ExportSchedule: getEnvOrDefault("EXPORT_SCHEDULE", "0 2 * * *"),
		ExportDir:      getEnvOrDefault("EXPORT_DIR", "./exports"),
		ExportEnabled:  getEnvBool("EXPORT_ENABLED", false),

		ReaperSchedule:   getEnvOrDefault("REAPER_SCHEDULE", "*/30 * * * *"),
		ReaperEnabled:    getEnvBool("REAPER_ENABLED", true),
		IdleThreshold:    getEnvDuration("SESSION_IDLE_THRESHOLD", 24*time.Hour),
		CompleteRetained: getEnvDuration("SESSION_COMPLETE_RETENTION", 6*time.Hour),

		AllowedOrigins: []string{getEnvOrDefault("FRONTEND_ORIGIN", "http://localhost:5173")},
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	// Gemini validation is handled by gemini.NewConfig()
	if config.TimerWarningAt < 0 {
		return errors.New("TIMER_WARNING_AT must not be negative")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
