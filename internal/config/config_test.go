package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"TODO_HOST", "TODO_PORT", "TODO_SHUTDOWN_TIMEOUT",
	"TODO_STORAGE_BACKEND", "TODO_STORAGE_PATH",
	"TODO_LOG_LEVEL", "TODO_LOG_FORMAT", "TODO_LOG_FILE", "TODO_LOG_QUIET",
}

// clearEnv unsets every TODO_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	clearEnv(t)
	l := NewLoader()
	l.EnvFile = filepath.Join(t.TempDir(), "missing.env")
	return l
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "tasks.txt", cfg.Storage.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "logs/todo_api.log", cfg.Logging.File)
	assert.False(t, cfg.Logging.Quiet)
	assert.Equal(t, "localhost:8000", cfg.Address())
	assert.Equal(t, "http://localhost:8000", cfg.URL())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("TODO_HOST", "0.0.0.0")
	t.Setenv("TODO_PORT", "9090")
	t.Setenv("TODO_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("TODO_STORAGE_BACKEND", "sqlite")
	t.Setenv("TODO_STORAGE_PATH", "/data/tasks.db")
	t.Setenv("TODO_LOG_LEVEL", "debug")
	t.Setenv("TODO_LOG_FORMAT", "json")
	t.Setenv("TODO_LOG_FILE", "")
	t.Setenv("TODO_LOG_QUIET", "true")

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnvironment())

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/data/tasks.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "", cfg.Logging.File, "an empty TODO_LOG_FILE disables file logging")
	assert.True(t, cfg.Logging.Quiet)
}

func TestLoadFromEnvironment_InvalidValuesIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("TODO_PORT", "eighty")
	t.Setenv("TODO_SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("TODO_LOG_QUIET", "maybe")

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnvironment())

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Logging.Quiet)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "port zero picks a free port", modify: func(c *Config) { c.Server.Port = 0 }},
		{name: "warning alias", modify: func(c *Config) { c.Logging.Level = "warning" }},
		{name: "upper case level", modify: func(c *Config) { c.Logging.Level = "DEBUG" }},
		{name: "empty host", modify: func(c *Config) { c.Server.Host = "" }, wantField: "server.host"},
		{name: "negative port", modify: func(c *Config) { c.Server.Port = -1 }, wantField: "server.port"},
		{name: "port too large", modify: func(c *Config) { c.Server.Port = 70000 }, wantField: "server.port"},
		{name: "zero shutdown timeout", modify: func(c *Config) { c.Server.ShutdownTimeout = 0 }, wantField: "server.shutdown_timeout"},
		{name: "unknown backend", modify: func(c *Config) { c.Storage.Backend = "redis" }, wantField: "storage.backend"},
		{name: "empty path", modify: func(c *Config) { c.Storage.Path = "" }, wantField: "storage.path"},
		{name: "unknown level", modify: func(c *Config) { c.Logging.Level = "loud" }, wantField: "logging.level"},
		{name: "unknown format", modify: func(c *Config) { c.Logging.Format = "xml" }, wantField: "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var configErr *ConfigError
			require.ErrorAs(t, err, &configErr)
			assert.Equal(t, tt.wantField, configErr.Field)
			assert.Contains(t, err.Error(), tt.wantField+": ")
		})
	}
}
