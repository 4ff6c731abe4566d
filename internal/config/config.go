package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultSessionSecret = "change-me-session-secret"
	defaultDatabaseURL   = "file:files_manager.db"
	defaultCORSOrigins   = "http://localhost:3000,http://localhost:5173,http://127.0.0.1:3000,http://127.0.0.1:5173"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	SessionSecret    string
	SessionTTL       time.Duration
	SessionBackend   string
	SessionBadgerDir string

	CookieName     string
	CookiePath     string
	CookieSecure   bool
	CookieSameSite string

	MaxUploadSize  int64
	StorageBackend string
	StorageDir     string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3Prefix       string

	CORSOrigins []string

	ReaperInterval time.Duration
	MetricsEnabled bool
	LogLevel       string
	LogFormat      string
}

// Load reads an optional .env file, then the environment, into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("HTTP_ADDR", ":3000")
	v.SetDefault("DATABASE_URL", defaultDatabaseURL)
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("SESSION_TTL", "1h")
	v.SetDefault("SESSION_BACKEND", "sql")
	v.SetDefault("SESSION_BADGER_DIR", "")
	v.SetDefault("COOKIE_NAME", "sid")
	v.SetDefault("COOKIE_PATH", "/")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("COOKIE_SAMESITE", "Lax")
	v.SetDefault("MAX_UPLOAD_SIZE", 512*1024)
	v.SetDefault("STORAGE_BACKEND", "local")
	v.SetDefault("STORAGE_DIR", "./uploads")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_PREFIX", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)
	v.SetDefault("REAPER_INTERVAL", "10m")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	return v
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:           strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		HTTPAddr:         strings.TrimSpace(v.GetString("HTTP_ADDR")),
		DatabaseURL:      strings.TrimSpace(v.GetString("DATABASE_URL")),
		SessionSecret:    strings.TrimSpace(v.GetString("SESSION_SECRET")),
		SessionBackend:   strings.ToLower(strings.TrimSpace(v.GetString("SESSION_BACKEND"))),
		SessionBadgerDir: strings.TrimSpace(v.GetString("SESSION_BADGER_DIR")),
		CookieName:       strings.TrimSpace(v.GetString("COOKIE_NAME")),
		CookiePath:       strings.TrimSpace(v.GetString("COOKIE_PATH")),
		CookieSecure:     v.GetBool("COOKIE_SECURE"),
		CookieSameSite:   strings.TrimSpace(v.GetString("COOKIE_SAMESITE")),
		MaxUploadSize:    v.GetInt64("MAX_UPLOAD_SIZE"),
		StorageBackend:   strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
		StorageDir:       strings.TrimSpace(v.GetString("STORAGE_DIR")),
		S3Bucket:         strings.TrimSpace(v.GetString("S3_BUCKET")),
		S3Region:         strings.TrimSpace(v.GetString("S3_REGION")),
		S3Endpoint:       strings.TrimSpace(v.GetString("S3_ENDPOINT")),
		S3Prefix:         strings.TrimSpace(v.GetString("S3_PREFIX")),
		CORSOrigins:      splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		MetricsEnabled:   v.GetBool("METRICS_ENABLED"),
		LogLevel:         strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		LogFormat:        strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),
	}

	var err error
	if cfg.SessionTTL, err = parseDuration(v, "SESSION_TTL"); err != nil {
		return nil, err
	}
	if cfg.ReaperInterval, err = parseDuration(v, "REAPER_INTERVAL"); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	slog.Info("config loaded",
		"env", cfg.AppEnv,
		"addr", cfg.HTTPAddr,
		"session_backend", cfg.SessionBackend,
		"storage_backend", cfg.StorageBackend,
		"cookie_secure", cfg.CookieSecure,
		"cookie_samesite", cfg.CookieSameSite,
	)
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if cfg.ReaperInterval < 0 {
		return fmt.Errorf("REAPER_INTERVAL must be >= 0")
	}
	if cfg.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be > 0")
	}
	if cfg.CookieName == "" {
		return fmt.Errorf("COOKIE_NAME must not be empty")
	}
	if cfg.CookiePath == "" {
		return fmt.Errorf("COOKIE_PATH must not be empty")
	}

	sameSite := strings.ToLower(cfg.CookieSameSite)
	if sameSite != "lax" && sameSite != "none" && sameSite != "strict" {
		return fmt.Errorf("COOKIE_SAMESITE must be one of: Lax, None, Strict")
	}
	if sameSite == "none" && !cfg.CookieSecure {
		return fmt.Errorf("COOKIE_SECURE must be true when COOKIE_SAMESITE=None")
	}

	switch cfg.SessionBackend {
	case "sql", "badger":
	default:
		return fmt.Errorf("SESSION_BACKEND must be one of: sql, badger")
	}

	switch cfg.StorageBackend {
	case "local":
		if cfg.StorageDir == "" {
			return fmt.Errorf("STORAGE_DIR must not be empty when STORAGE_BACKEND=local")
		}
	case "s3":
		if cfg.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set when STORAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of: local, s3")
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be one of: text, json")
	}

	for _, o := range cfg.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS entry %q must start with http:// or https://", o)
		}
	}

	if isProdLike(cfg.AppEnv) {
		if slices.Contains(cfg.CORSOrigins, "*") {
			return fmt.Errorf("in prod/release CORS_ALLOWED_ORIGINS must not contain *")
		}
		if isEmptyOrDefault(cfg.SessionSecret, defaultSessionSecret) {
			return fmt.Errorf("in prod/release SESSION_SECRET must be set and not default")
		}
		if !cfg.CookieSecure {
			return fmt.Errorf("in prod/release COOKIE_SECURE must be true")
		}
	}
	if cfg.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must not be empty")
	}

	return nil
}

// splitList parses a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProd reports whether the service runs in a production-like environment.
func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

// SameSite maps CookieSameSite to its net/http value.
func (c *Config) SameSite() http.SameSite {
	switch strings.ToLower(c.CookieSameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDuration(v *viper.Viper, name string) (time.Duration, error) {
	value := strings.TrimSpace(v.GetString(name))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}
