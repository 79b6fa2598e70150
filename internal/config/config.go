package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	DBPath              string
	LogLevel            string
	ShortURLBase        string
	APIBaseURL          string
	UserID              string
	UsernameDebounce    time.Duration
	DeleteRetryAttempts int
	LogoMaxBytes        int64
	HTTPTimeout         time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DBPath:              envOr("DB_PATH", "file:biolink.db"),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		ShortURLBase:        envOr("SHORT_URL_BASE", "http://localhost:8080/s"),
		APIBaseURL:          envOr("API_BASE_URL", "http://localhost:8080"),
		UserID:              envOr("USER_ID", ""),
		UsernameDebounce:    envDurationOr("USERNAME_DEBOUNCE", 400*time.Millisecond),
		DeleteRetryAttempts: envIntOr("DELETE_RETRY_ATTEMPTS", 3),
		LogoMaxBytes:        int64(envIntOr("LOGO_MAX_BYTES", 1<<20)),
		HTTPTimeout:         envDurationOr("HTTP_TIMEOUT", 15*time.Second),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []string

	if c.Addr == "" {
		errs = append(errs, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		errs = append(errs, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	for _, kv := range [][2]string{{"SHORT_URL_BASE", c.ShortURLBase}, {"API_BASE_URL", c.APIBaseURL}} {
		if u, err := url.Parse(kv[1]); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("%s must be an absolute URL (got %q)", kv[0], kv[1]))
		}
	}
	if c.UsernameDebounce < 0 {
		errs = append(errs, "USERNAME_DEBOUNCE cannot be negative")
	}
	if c.DeleteRetryAttempts < 0 || c.DeleteRetryAttempts > 10 {
		errs = append(errs, fmt.Sprintf("DELETE_RETRY_ATTEMPTS must be between 0 and 10 (got %d)", c.DeleteRetryAttempts))
	}
	if c.LogoMaxBytes <= 0 {
		errs = append(errs, "LOGO_MAX_BYTES must be positive")
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, "HTTP_TIMEOUT must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
