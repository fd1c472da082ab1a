// Package repository defines how the task store reaches durable storage.
//
// A Repository always moves the complete task set: Load returns every
// persisted record and Save replaces all of them in one atomic step.
package repository

import (
	"context"

	"todo-api/internal/domain"
)

// Repository is a durable home for the task set.
//
// Load reports a backing store that does not exist yet with an error
// matching fs.ErrNotExist. Access problems are reported as permission
// AppErrors; unreadable or corrupt content as storage AppErrors.
// Entries are returned loosely typed, usually as map[string]any, so a bad
// entry can be rejected on its own without failing the whole load.
type Repository interface {
	Load(ctx context.Context) ([]any, error)
	Save(ctx context.Context, records []domain.Record) error
	// Location identifies the backing store in logs and stats.
	Location() string
	Close() error
}
