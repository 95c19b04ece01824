package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSecretKeyLength = 32

var (
	ErrSecretKeyMissing     = errors.New("SECRET_KEY is required")
	ErrSecretKeyPlaceholder = errors.New("SECRET_KEY uses an insecure placeholder")
	ErrSecretKeyTooShort    = errors.New("SECRET_KEY must be at least 32 characters")
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
	"secret":                                     {},
}

type Config struct {
	AppEnv          string
	Port            string
	DBPath          string
	SecretKey       string
	Location        *time.Location
	DefaultLanguage string
	CookieSecure    bool
	SessionTTL      time.Duration

	GeminiBaseURL      string
	GeminiModel        string
	GenAITimeout       time.Duration
	GenAIRatePerMinute int

	LogLevel  string
	SentryDSN string
}

// Load reads .env (when present) and the process environment. The external
// AI credential is deliberately absent: it lives in the credential store.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppEnv:          envString("APP_ENV", "development"),
		Port:            envString("PORT", "8080"),
		DBPath:          envString("DB_PATH", filepath.Join("data", "just.db")),
		Location:        loadLocation(envString("TZ", "Asia/Seoul")),
		DefaultLanguage: envString("DEFAULT_LANGUAGE", "ko"),
		CookieSecure:    envBool("COOKIE_SECURE", false),
		SessionTTL:      envDuration("SESSION_TTL", 24*time.Hour),

		GeminiBaseURL:      envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:        envString("GEMINI_MODEL", "gemini-2.5-flash"),
		GenAITimeout:       envDuration("GENAI_TIMEOUT", 15*time.Second),
		GenAIRatePerMinute: envInt("GENAI_RATE_PER_MINUTE", 30),

		LogLevel:  envString("LOG_LEVEL", ""),
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	secret, err := resolveSecretKey()
	if err != nil {
		if cfg.IsProduction() {
			return nil, err
		}
		slog.Warn("using ephemeral development secret key", "reason", err)
		secret = developmentSecretKey
	}
	cfg.SecretKey = secret

	return cfg, nil
}

const developmentSecretKey = "development-only-secret-key-0123456789"

func resolveSecretKey() (string, error) {
	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return "", ErrSecretKeyMissing
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return "", ErrSecretKeyPlaceholder
	}
	if len(secret) < minSecretKeyLength {
		return "", ErrSecretKeyTooShort
	}
	return secret, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) String() string {
	return fmt.Sprintf("env=%s port=%s db=%s tz=%s lang=%s model=%s", c.AppEnv, c.Port, c.DBPath, c.Location, c.DefaultLanguage, c.GeminiModel)
}

func loadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("invalid TZ, falling back to UTC", "tz", name)
		return time.UTC
	}
	return location
}

func envString(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}
