package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Auth modes
const (
	AuthModeBackend = "backend"
	AuthModeLocal   = "local"
)

// Config holds the dashboard configuration
type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Timeline TimelineConfig
}

// AppConfig holds HTTP server settings
type AppConfig struct {
	Port        string
	Env         string
	GinMode     string
	CORSOrigins []string
}

// BackendConfig points at the scheduling backend
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// AuthConfig holds session and login settings
type AuthConfig struct {
	Mode          string
	JWTSecret     string
	SessionTTL    time.Duration
	AdminUsername string
	AdminPassword string
	SecureCookie  bool
}

// DatabaseConfig selects postgres (URL) or sqlite (Path)
type DatabaseConfig struct {
	URL  string
	Path string
}

// envPaths are tried in order; the first existing file is loaded
var envPaths = []string{".env", "../.env", "../../.env"}

// LoadEnvFile loads the first .env file found, if any
func LoadEnvFile() {
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads the configuration from the environment (after loading .env)
func Load() (*Config, error) {
	LoadEnvFile()
	return FromEnv()
}

// FromEnv reads the configuration from the current environment only
func FromEnv() (*Config, error) {
	cfg := &Config{}

	cfg.App = AppConfig{
		Port:        getEnv("PORT", "8000"),
		Env:         getEnv("APP_ENV", "development"),
		GinMode:     getEnv("GIN_MODE", ""),
		CORSOrigins: getEnvSlice("CORS_ORIGINS"),
	}

	timeout, err := time.ParseDuration(getEnv("BACKEND_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}
	cfg.Backend = BackendConfig{
		URL:     strings.TrimRight(getEnv("BACKEND_URL", ""), "/"),
		Timeout: timeout,
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	secure, err := strconv.ParseBool(getEnv("SECURE_COOKIE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SECURE_COOKIE: %w", err)
	}
	cfg.Auth = AuthConfig{
		Mode:          strings.ToLower(getEnv("AUTH_MODE", AuthModeBackend)),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		SessionTTL:    ttl,
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		SecureCookie:  secure,
	}

	cfg.Database = DatabaseConfig{
		URL:  getEnv("DATABASE_URL", ""),
		Path: getEnv("DATA_PATH", "dashboard.db"),
	}

	cfg.Timeline = DefaultTimelineConfig()
	if path := getEnv("TIMELINE_CONFIG", ""); path != "" {
		tc, err := LoadTimelineConfig(path)
		if err != nil {
			return nil, err
		}
		cfg.Timeline = tc
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether the app runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.Auth.Mode != AuthModeBackend && c.Auth.Mode != AuthModeLocal {
		return fmt.Errorf("AUTH_MODE must be %q or %q", AuthModeBackend, AuthModeLocal)
	}
	if c.Auth.JWTSecret == "" && !c.IsDevelopment() {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return c.Timeline.Validate()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
