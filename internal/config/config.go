package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Server
	AppName    string
	ServerAddr string
	AppEnv     string

	// Database
	DatabaseDSN string

	// Tokens
	SigningKey           string
	RefreshSigningKey    string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	Issuer               string

	// Signup
	DeterministicUserIDs bool

	// Federated login
	GoogleClientID string

	// TMDB
	TMDBAPIKey  string
	TMDBBaseURL string

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPTLS      bool

	// Frontend
	FrontendURL string

	// Cache
	CacheTTL time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		AppName:    envOrDefault("APP_NAME", "filmhub"),
		ServerAddr: envOrDefault("SERVER_ADDR", ":5000"),
		AppEnv:     envOrDefault("APP_ENV", "development"),

		DatabaseDSN: envOrDefault("DATABASE_DSN", "file:filmhub.db?cache=shared&_pragma=foreign_keys(1)"),

		SigningKey:           envOrDefault("JWT_SIGNING_KEY", "change-me-in-production"),
		RefreshSigningKey:    envOrDefault("JWT_REFRESH_SIGNING_KEY", "change-me-too-in-production"),
		AccessTokenDuration:  envOrDefaultDuration("ACCESS_TOKEN_DURATION", 15*time.Minute),
		RefreshTokenDuration: envOrDefaultDuration("REFRESH_TOKEN_DURATION", 7*24*time.Hour),
		Issuer:               envOrDefault("JWT_ISSUER", "filmhub"),

		DeterministicUserIDs: envOrDefaultBool("DETERMINISTIC_USER_IDS", false),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		TMDBAPIKey:  os.Getenv("TMDB_API_KEY"),
		TMDBBaseURL: envOrDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envOrDefaultInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     envOrDefault("SMTP_FROM", "no-reply@filmhub.dev"),
		SMTPTLS:      envOrDefaultBool("SMTP_TLS", true),

		FrontendURL: envOrDefault("FRONTEND_URL", "http://localhost:5173"),

		CacheTTL: envOrDefaultDuration("CACHE_TTL", time.Hour),
	}
}

// IsDevelopment reports whether the app runs in local development.
// Session cookies drop the Secure flag only in this mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
