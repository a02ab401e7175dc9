// Package config handles application configuration loading from environment
// variables and an optional YAML file. It provides a centralized Config struct
// used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Slug modes accepted by SLUG_MODE.
const (
	SlugModeComputed = "computed"
	SlugModeStored   = "stored"
)

// DefaultSummaryLength is the listing summary limit in characters.
const DefaultSummaryLength = 150

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Site settings
	SiteName     string
	SiteURL      string // absolute origin used in permalinks, no trailing slash
	SiteBasePath string // path prefix the site is mounted under, e.g. "/blog"

	// Legal updates behavior
	SlugMode      string // "computed" or "stored"
	SummaryLength int

	CORSAllowedOrigins []string

	// S3-compatible storage used by "export --bucket"
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Prefix    string
}

// Load reads configuration from the YAML file named by LU_CONFIG_FILE (if
// set) and then from environment variables, which take precedence.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("LU_CONFIG_FILE"))
}

// LoadFile is like Load but reads the given YAML file instead of
// LU_CONFIG_FILE. An empty path skips the file. Returns an error if critical
// values are missing or invalid in production mode.
func LoadFile(path string) (*Config, error) {
	file := map[string]string{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	get := func(key, fallback string) string {
		if v, ok := file[key]; ok && v != "" {
			fallback = v
		}
		return envOrDefault(key, fallback)
	}

	cfg := &Config{
		Host: get("APP_HOST", "0.0.0.0"),
		Port: get("APP_PORT", "8080"),
		Env:  get("APP_ENV", "development"),

		DBHost:     get("POSTGRES_HOST", "localhost"),
		DBPort:     get("POSTGRES_PORT", "5432"),
		DBUser:     get("POSTGRES_USER", "legalupdates"),
		DBPassword: get("POSTGRES_PASSWORD", "changeme"),
		DBName:     get("POSTGRES_DB", "legalupdates"),

		ValkeyHost:     get("VALKEY_HOST", "localhost"),
		ValkeyPort:     get("VALKEY_PORT", "6379"),
		ValkeyPassword: get("VALKEY_PASSWORD", ""),

		SiteName:     get("SITE_NAME", "Legal Updates"),
		SiteURL:      strings.TrimRight(get("SITE_URL", "http://localhost:8080"), "/"),
		SiteBasePath: normalizeBasePath(get("SITE_BASE_PATH", "")),

		SlugMode:           strings.ToLower(get("SLUG_MODE", SlugModeComputed)),
		CORSAllowedOrigins: splitList(get("CORS_ALLOWED_ORIGINS", "")),

		S3Endpoint:  get("S3_ENDPOINT", ""),
		S3Region:    get("S3_REGION", "us-east-1"),
		S3AccessKey: get("S3_ACCESS_KEY", ""),
		S3SecretKey: get("S3_SECRET_KEY", ""),
		S3Bucket:    get("S3_BUCKET", ""),
		S3Prefix:    get("S3_PREFIX", "legal-updates"),
	}

	length, err := strconv.Atoi(get("SUMMARY_LENGTH", strconv.Itoa(DefaultSummaryLength)))
	if err != nil || length <= 0 {
		return nil, fmt.Errorf("SUMMARY_LENGTH must be a positive integer")
	}
	cfg.SummaryLength = length

	if cfg.SlugMode != SlugModeComputed && cfg.SlugMode != SlugModeStored {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("SLUG_MODE must be %q or %q", SlugModeComputed, SlugModeStored)
		}
		cfg.SlugMode = SlugModeComputed
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// HomeURL returns the absolute URL the site is served from, including the
// base path and without a trailing slash.
func (c *Config) HomeURL() string {
	return c.SiteURL + c.SiteBasePath
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// normalizeBasePath turns "blog/", "/blog" and "" into "/blog" or "".
func normalizeBasePath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
