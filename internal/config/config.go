package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the console service.
type Config struct {
	App          AppConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Remote       RemoteConfig
	Toast        ToastConfig
	BranchCache  BranchCacheConfig
	Session      SessionConfig
	Manager      ManagerConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	TimeoutSeconds int
}

// Timeout bounds dialing and each command.
func (c RedisConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines console session parameters.
type AuthConfig struct {
	JWTSecret         string
	SessionTTLMinutes int
}

// RemoteConfig points at the POS REST API.
type RemoteConfig struct {
	BaseURL        string
	TenantSlug     string
	TenantID       string
	TimeoutSeconds int
}

// ToastConfig controls notification lifetime.
type ToastConfig struct {
	TTLMillis int
}

// BranchCacheConfig selects and tunes the branch resolver cache.
type BranchCacheConfig struct {
	Backend      string
	TTLSeconds   int
	SweepSeconds int
}

// SessionConfig selects where remote credentials are persisted.
type SessionConfig struct {
	Backend string
}

// ManagerConfig tunes list managers.
type ManagerConfig struct {
	BulkDeleteConcurrency int
}

// NotificationConfig sizes the per-session activity feed and the activity
// report interval.
type NotificationConfig struct {
	FeedSize      int
	ReportSeconds int
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
			Name:                  getEnv("APP_NAME", "pos-backoffice"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			DB:             redisDB,
			TimeoutSeconds: getEnvAsInt("REDIS_TIMEOUT_SECONDS", 3),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("AUTH_JWT_SECRET", "dev-secret"),
			SessionTTLMinutes: getEnvAsInt("AUTH_SESSION_TTL_MINUTES", 480),
		},
		Remote: RemoteConfig{
			BaseURL:        getEnv("REMOTE_BASE_URL", "http://127.0.0.1:5000/api"),
			TenantSlug:     os.Getenv("REMOTE_TENANT_SLUG"),
			TenantID:       os.Getenv("REMOTE_TENANT_ID"),
			TimeoutSeconds: getEnvAsInt("REMOTE_TIMEOUT_SECONDS", 15),
		},
		Toast: ToastConfig{
			TTLMillis: getEnvAsInt("TOAST_TTL_MILLIS", 3000),
		},
		BranchCache: BranchCacheConfig{
			Backend:      getEnv("BRANCH_CACHE_BACKEND", "memory"),
			TTLSeconds:   getEnvAsInt("BRANCH_CACHE_TTL_SECONDS", 300),
			SweepSeconds: getEnvAsInt("BRANCH_CACHE_SWEEP_SECONDS", 60),
		},
		Session: SessionConfig{
			Backend: getEnv("SESSION_BACKEND", "memory"),
		},
		Manager: ManagerConfig{
			BulkDeleteConcurrency: getEnvAsInt("BULK_DELETE_CONCURRENCY", 8),
		},
		Notification: NotificationConfig{
			FeedSize:      getEnvAsInt("NOTIFICATION_FEED_SIZE", 50),
			ReportSeconds: getEnvAsInt("ACTIVITY_REPORT_SECONDS", 300),
		},
	}

	if cfg.Remote.BaseURL == "" {
		return nil, fmt.Errorf("REMOTE_BASE_URL must not be empty")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-call timeout for the remote API.
func (r RemoteConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// TTL returns how long a toast stays visible.
func (t ToastConfig) TTL() time.Duration {
	if t.TTLMillis <= 0 {
		return 3 * time.Second
	}
	return time.Duration(t.TTLMillis) * time.Millisecond
}

// TTL returns the branch cache entry lifetime.
func (b BranchCacheConfig) TTL() time.Duration {
	return time.Duration(b.TTLSeconds) * time.Second
}

// SweepInterval returns how often expired branch entries are evicted.
func (b BranchCacheConfig) SweepInterval() time.Duration {
	return time.Duration(b.SweepSeconds) * time.Second
}

// ReportInterval returns how often the worker logs activity counters.
func (n NotificationConfig) ReportInterval() time.Duration {
	return time.Duration(n.ReportSeconds) * time.Second
}

// SessionTTL returns the console session lifetime.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLMinutes <= 0 {
		return 8 * time.Hour
	}
	return time.Duration(a.SessionTTLMinutes) * time.Minute
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
