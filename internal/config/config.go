// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database. When empty the server falls back to in-memory repositories,
	// which is only suitable for development.
	DatabaseURL string `koanf:"database_url"`

	// JWT Authentication
	JWTSecret string `koanf:"jwt_secret"`

	// Redis, used for distributed rate limiting. Optional; when empty the
	// in-memory rate limit store is used instead.
	RedisURL string `koanf:"redis_url"`

	// Tracing (OpenTelemetry)
	TracingEnabled    bool    `koanf:"tracing_enabled"`
	TracingEndpoint   string  `koanf:"tracing_endpoint"`
	TracingExporter   string  `koanf:"tracing_exporter"` // "otlp-http" or "otlp-grpc"
	TracingSampleRate float64 `koanf:"tracing_sample_rate"`
}

// Configuration validation errors.
var (
	ErrMissingJWTSecret  = errors.New("JWT_SECRET is required")
	ErrInvalidPort       = errors.New("PORT must be a valid integer")
	ErrInvalidSampleRate = errors.New("TRACING_SAMPLE_RATE must be between 0 and 1")
)

// Default values for non-secret configuration.
const (
	DefaultPort              = 8080
	DefaultEnv               = "development"
	DefaultTracingExporter   = "otlp-http"
	DefaultTracingSampleRate = 0.1
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Try PLAYSHARE_PORT first, then PORT for backward compatibility
	port, portErr := getEnvIntOrDefaultMulti([]string{"PLAYSHARE_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	tracingEnabled := k.Bool("tracing_enabled")
	if val := os.Getenv("TRACING_ENABLED"); val != "" {
		// Env var takes precedence over file config
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			tracingEnabled = true
		case "false", "0", "no", "off":
			tracingEnabled = false
		}
	}

	sampleRate, sampleErr := getEnvFloatOrDefault("TRACING_SAMPLE_RATE", k.Float64("tracing_sample_rate"), DefaultTracingSampleRate)
	if sampleErr != nil {
		loadErrs = append(loadErrs, sampleErr)
	}

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		Port:              port,
		Env:               getEnvOrDefaultMulti([]string{"PLAYSHARE_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		DatabaseURL:       getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		JWTSecret:         getEnvOrKoanf("JWT_SECRET", k, "jwt_secret"),
		RedisURL:          getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		TracingEnabled:    tracingEnabled,
		TracingEndpoint:   getEnvOrKoanf("TRACING_ENDPOINT", k, "tracing_endpoint"),
		TracingExporter:   getEnvOrDefault("TRACING_EXPORTER", k.String("tracing_exporter"), DefaultTracingExporter),
		TracingSampleRate: sampleRate,
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if an environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as a float.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		errs = append(errs, ErrInvalidSampleRate)
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                fmt.Sprintf("%d", c.Port),
		"env":                 c.Env,
		"database_url":        maskConnURL(c.DatabaseURL),
		"jwt_secret":          maskSecret(c.JWTSecret),
		"redis_url":           maskConnURL(c.RedisURL),
		"tracing_enabled":     fmt.Sprintf("%t", c.TracingEnabled),
		"tracing_endpoint":    c.TracingEndpoint,
		"tracing_exporter":    c.TracingExporter,
		"tracing_sample_rate": fmt.Sprintf("%g", c.TracingSampleRate),
	}
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskConnURL masks the password in a connection URL.
func maskConnURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
