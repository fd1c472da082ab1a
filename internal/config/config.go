package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all configuration options for the todo service
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	Host            string        `toml:"host" env:"TODO_HOST"`
	Port            int           `toml:"port" env:"TODO_PORT"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"TODO_SHUTDOWN_TIMEOUT"`
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	Backend string `toml:"backend" env:"TODO_STORAGE_BACKEND"`
	Path    string `toml:"path" env:"TODO_STORAGE_PATH"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level" env:"TODO_LOG_LEVEL"`
	Format string `toml:"format" env:"TODO_LOG_FORMAT"`
	File   string `toml:"file" env:"TODO_LOG_FILE"`
	Quiet  bool   `toml:"quiet" env:"TODO_LOG_QUIET"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8000,
			ShutdownTimeout: 5 * time.Second,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    "tasks.txt",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "logs/todo_api.log",
			Quiet:  false,
		},
	}
}

// Address returns the host:port the server listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// URL returns the base URL clients use to reach the server
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// LoadFromEnvironment loads configuration from environment variables.
// Values that fail to parse are ignored.
func (c *Config) LoadFromEnvironment() error {
	// Server configuration
	if host := os.Getenv("TODO_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("TODO_PORT"); port != "" {
		c.Server.Port = ParseIntWithFallback(port, c.Server.Port)
	}
	if timeout := os.Getenv("TODO_SHUTDOWN_TIMEOUT"); timeout != "" {
		c.Server.ShutdownTimeout = ParseDurationWithFallback(timeout, c.Server.ShutdownTimeout)
	}

	// Storage configuration
	if backend := os.Getenv("TODO_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if path := os.Getenv("TODO_STORAGE_PATH"); path != "" {
		c.Storage.Path = path
	}

	// Logging configuration
	if level := os.Getenv("TODO_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("TODO_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
	if file, ok := os.LookupEnv("TODO_LOG_FILE"); ok {
		c.Logging.File = file
	}
	if quiet := os.Getenv("TODO_LOG_QUIET"); quiet != "" {
		c.Logging.Quiet = ParseBoolWithFallback(quiet, c.Logging.Quiet)
	}

	return nil
}

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true,
	"error": true, "fatal": true, "critical": true,
}

var validFormats = map[string]bool{"text": true, "json": true, "logfmt": true}

// Validate validates the configuration and returns any errors.
// Level and format names are case-insensitive.
func (c *Config) Validate() error {
	// Validate server configuration
	if c.Server.Host == "" {
		return &ConfigError{Field: "server.host", Message: "host cannot be empty"}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "port must be between 0 and 65535, got " + strconv.Itoa(c.Server.Port)}
	}
	if c.Server.ShutdownTimeout <= 0 {
		return &ConfigError{Field: "server.shutdown_timeout", Message: "shutdown timeout must be positive"}
	}

	// Validate storage configuration
	if c.Storage.Backend != BackendFile && c.Storage.Backend != BackendSQLite {
		return &ConfigError{Field: "storage.backend", Message: "backend must be file or sqlite, got " + c.Storage.Backend}
	}
	if c.Storage.Path == "" {
		return &ConfigError{Field: "storage.path", Message: "storage path cannot be empty"}
	}

	// Validate logging configuration
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return &ConfigError{Field: "logging.level", Message: "unknown log level " + c.Logging.Level}
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return &ConfigError{Field: "logging.format", Message: "unknown log format " + c.Logging.Format}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
