package config

import (
	"fmt"

	"todo-api/internal/repository"
	"todo-api/internal/repository/file"
	"todo-api/internal/repository/sqlite"
)

// CreateRepository creates the storage backend selected by the configuration
func CreateRepository(config *Config) (repository.Repository, error) {
	switch config.Storage.Backend {
	case BackendFile:
		return file.New(config.Storage.Path), nil
	case BackendSQLite:
		repo, err := sqlite.New(config.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil
	default:
		return nil, &ConfigError{Field: "storage.backend", Message: "unknown backend " + config.Storage.Backend}
	}
}
