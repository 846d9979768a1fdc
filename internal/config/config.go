package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr        string
	DatabaseURL     string
	TokenSecret     string
	TokenIssuer     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AutoMigrate     bool
	RequireTLS      bool

	// Bulk import knobs.
	MaxUploadBytes int64
	NumbersCLI     string

	// Initial credential assigned to accounts provisioned by staff or by the
	// spreadsheet import. Students are expected to change it on first login.
	DefaultStudentPassword string

	// Credential notification (log-only when SMTP is not configured).
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Login rate limiting (disabled when RedisAddr is empty).
	RedisAddr       string
	RedisPassword   string
	LoginRatePerMin int
}

func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		TokenSecret:     strings.TrimSpace(os.Getenv("TOKEN_SECRET")),
		TokenIssuer:     getEnv("TOKEN_ISSUER", "ppp-api"),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getDurationEnv("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		AutoMigrate:     getBoolEnv("AUTO_MIGRATE", true),
		RequireTLS:      getBoolEnv("REQUIRE_TLS", false),

		MaxUploadBytes: int64(getIntEnv("MAX_UPLOAD_BYTES", 10*1024*1024)),
		NumbersCLI:     getEnv("NUMBERS_CLI", "cat-numbers"),

		DefaultStudentPassword: getEnv("DEFAULT_STUDENT_PASSWORD", "student@123"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getIntEnv("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", ""),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		LoginRatePerMin: getIntEnv("LOGIN_RATE_PER_MIN", 20),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("TOKEN_SECRET is required")
	}
	if len(cfg.TokenSecret) < 32 {
		return Config{}, errors.New("TOKEN_SECRET must be at least 32 characters")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 * 1024 * 1024
	}
	if cfg.LoginRatePerMin <= 0 {
		cfg.LoginRatePerMin = 20
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getBoolEnv(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getIntEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
