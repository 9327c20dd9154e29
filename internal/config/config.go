package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the sync daemon.
type Config struct {
	App     AppConfig
	Backend BackendConfig
	Redis   RedisConfig
	Logger  LoggerConfig
	Stub    StubConfig
}

// AppConfig controls daemon level behavior.
type AppConfig struct {
	Name      string
	Env       string
	Version   string
	LocalHost string
	LocalPort string
}

// LocalAddr returns the bind address for the local control API.
func (a AppConfig) LocalAddr() string {
	return fmt.Sprintf("%s:%s", a.LocalHost, a.LocalPort)
}

// BackendConfig holds the remote API endpoints and sync cadence.
type BackendConfig struct {
	BaseURL              string
	PollIntervalSeconds  int
	PollTimeoutSeconds   int
	RetryTimeoutSeconds  int
	OverdueAfterHours    int
}

// RedisConfig holds Redis connection values for the durable store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// StubConfig configures the local stub backend.
type StubConfig struct {
	Host string
	Port string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:      getEnv("APP_NAME", "ticket-sync"),
			Env:       getEnv("APP_ENV", "development"),
			Version:   getEnv("APP_VERSION", "dev"),
			LocalHost: getEnv("APP_LOCAL_HOST", "127.0.0.1"),
			LocalPort: getEnv("APP_LOCAL_PORT", "7070"),
		},
		Backend: BackendConfig{
			BaseURL:             getEnv("BACKEND_BASE_URL", "http://127.0.0.1:8080"),
			PollIntervalSeconds: getEnvAsInt("SYNC_POLL_INTERVAL_SECONDS", 5),
			PollTimeoutSeconds:  getEnvAsInt("SYNC_POLL_TIMEOUT_SECONDS", 4),
			RetryTimeoutSeconds: getEnvAsInt("SYNC_RETRY_TIMEOUT_SECONDS", 15),
			OverdueAfterHours:   getEnvAsInt("SYNC_OVERDUE_AFTER_HOURS", 48),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Stub: StubConfig{
			Host: getEnv("STUB_HOST", "0.0.0.0"),
			Port: getEnv("STUB_PORT", "8080"),
		},
	}

	return cfg, nil
}

// PollInterval returns the automatic poll cadence.
func (b BackendConfig) PollInterval() time.Duration {
	if b.PollIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(b.PollIntervalSeconds) * time.Second
}

// PollTimeout returns the per-poll request deadline.
func (b BackendConfig) PollTimeout() time.Duration {
	if b.PollTimeoutSeconds <= 0 {
		return 4 * time.Second
	}
	return time.Duration(b.PollTimeoutSeconds) * time.Second
}

// RetryTimeout returns the longer deadline used for user-initiated retries.
func (b BackendConfig) RetryTimeout() time.Duration {
	if b.RetryTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(b.RetryTimeoutSeconds) * time.Second
}

// OverdueAfter returns the age past which an open ticket counts as overdue.
func (b BackendConfig) OverdueAfter() time.Duration {
	if b.OverdueAfterHours <= 0 {
		return 48 * time.Hour
	}
	return time.Duration(b.OverdueAfterHours) * time.Hour
}

// Addr returns the stub bind address.
func (s StubConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
