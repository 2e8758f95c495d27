// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Import   ImportConfig
	Server   ServerConfig
	Logging  LoggingConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	// Env is the deployment environment (default: development)
	Env string `env:"APP_ENV" default:"development"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the pool size used by the serve command (default: 4)
	MaxConns int `env:"DATABASE_MAX_CONNS" default:"4"`

	// ConnectTimeout bounds the initial connection attempt (default: 10s)
	ConnectTimeout time.Duration `env:"DATABASE_CONNECT_TIMEOUT" default:"10s"`
}

// ImportConfig holds import pipeline settings.
type ImportConfig struct {
	// Dir is the directory scanned for table input files (default: ./import)
	Dir string `env:"IMPORT_DIR" default:"./import"`

	// DefaultMode is the write strategy used when none is requested:
	// insert, update or upsert (default: insert)
	DefaultMode string `env:"IMPORT_DEFAULT_MODE" default:"insert"`

	// RowErrorLimit caps the row errors kept per table in a run report.
	// Errors beyond the cap are still counted (default: 50)
	RowErrorLimit int `env:"IMPORT_ROW_ERROR_LIMIT" default:"50"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: all interfaces)
	Host string `env:"SERVER_HOST" default:""`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response.
	// Import runs are served synchronously, so this is generous (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown (default: 10s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
