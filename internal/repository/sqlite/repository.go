// Package sqlite stores the task set in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"

	"todo-api/internal/domain"
	"todo-api/internal/errors"
	"todo-api/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Repository keeps a snapshot of the task set in the tasks table. Every Save
// replaces the table contents inside one transaction.
type Repository struct {
	db       *sql.DB
	path     string
	fresh    bool
	migrated bool
}

// New opens the database at dbPath. A file that exists but cannot be read
// is a permission error; a missing file is created on the first Save.
func New(dbPath string) (*Repository, error) {
	fresh := false
	if f, err := os.Open(dbPath); err != nil {
		switch {
		case stderrors.Is(err, fs.ErrNotExist):
			fresh = true
		case stderrors.Is(err, fs.ErrPermission):
			return nil, errors.NewPermissionError("read", dbPath, err)
		default:
			return nil, HandleDatabaseError("open database", err)
		}
	} else {
		f.Close()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, HandleDatabaseError("open database", err)
	}
	// One connection: the store is the only writer.
	db.SetMaxOpenConns(1)

	return &Repository{db: db, path: dbPath, fresh: fresh}, nil
}

// Location returns the database path.
func (r *Repository) Location() string {
	return r.path
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) ensureSchema(ctx context.Context) error {
	if r.migrated {
		return nil
	}
	if err := migrations.RunMigrations(ctx, r.db); err != nil {
		return HandleDatabaseError("run migrations", err)
	}
	r.migrated = true
	return nil
}

// Load returns every stored task in store order.
func (r *Repository) Load(ctx context.Context) ([]any, error) {
	if r.fresh {
		return nil, fmt.Errorf("database %s: %w", r.path, fs.ErrNotExist)
	}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}

	query := `SELECT id, title, priority, is_done FROM tasks ORDER BY position ASC`
	rows, err := QueryMultiple(ctx, r.db, query, ScanTaskRows, "tasks")
	if err != nil {
		return nil, err
	}

	records := make([]any, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}
	return records, nil
}

// Save replaces the stored task set with records.
func (r *Repository) Save(ctx context.Context, records []domain.Record) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}

	err := WithTransaction(ctx, r.db, "save tasks", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO tasks (id, title, priority, is_done, position) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, record := range records {
			if _, err := stmt.ExecContext(ctx, record.ID, record.Title, string(record.Priority), record.IsDone, i); err != nil {
				return fmt.Errorf("insert task %d: %w", record.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.fresh = false
	return nil
}
