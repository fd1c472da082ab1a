package migrations

import "database/sql"

func init() {
	RegisterGoMigration(1, "create_tasks", Up_000001_create_tasks)
}

// Up_000001_create_tasks creates the tasks table. position keeps the order
// the store holds tasks in, which is not necessarily id order.
func Up_000001_create_tasks(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS tasks (
		id       INTEGER PRIMARY KEY,
		title    TEXT    NOT NULL,
		priority TEXT,
		is_done  INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL
	)`)
	return err
}
