package config

import (
	stderrors "errors"
	"io/fs"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read, when present, before the environment.
const DefaultEnvFile = ".env"

// Loader handles loading configuration from multiple sources
type Loader struct {
	config *Config

	// ConfigFile is an optional TOML file. A missing file is an error.
	ConfigFile string
	// EnvFile is an optional dotenv file. A missing file is skipped.
	EnvFile string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config:  NewConfig(),
		EnvFile: DefaultEnvFile,
	}
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Read the .env file into the environment (existing variables win)
// 3. Override with the TOML config file
// 4. Override with environment variables
// 5. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	if l.EnvFile != "" {
		if err := godotenv.Load(l.EnvFile); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Field: "env_file", Message: err.Error()}
		}
	}

	if l.ConfigFile != "" {
		if _, err := toml.DecodeFile(l.ConfigFile, l.config); err != nil {
			return nil, &ConfigError{Field: "config_file", Message: err.Error()}
		}
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ConfigOverrides holds command line flag overrides. Nil fields were not set.
type ConfigOverrides struct {
	// Server overrides
	Host            *string
	Port            *int
	ShutdownTimeout *time.Duration

	// Storage overrides
	StorageBackend *string
	StoragePath    *string

	// Logging overrides
	LogLevel  *string
	LogFormat *string
	LogFile   *string
	Quiet     *bool
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	if overrides.Host != nil {
		config.Server.Host = *overrides.Host
	}
	if overrides.Port != nil {
		config.Server.Port = *overrides.Port
	}
	if overrides.ShutdownTimeout != nil {
		config.Server.ShutdownTimeout = *overrides.ShutdownTimeout
	}

	if overrides.StorageBackend != nil {
		config.Storage.Backend = *overrides.StorageBackend
	}
	if overrides.StoragePath != nil {
		config.Storage.Path = *overrides.StoragePath
	}

	if overrides.LogLevel != nil {
		config.Logging.Level = *overrides.LogLevel
	}
	if overrides.LogFormat != nil {
		config.Logging.Format = *overrides.LogFormat
	}
	if overrides.LogFile != nil {
		config.Logging.File = *overrides.LogFile
	}
	if overrides.Quiet != nil {
		config.Logging.Quiet = *overrides.Quiet
	}
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}
