package sqlite

import "database/sql"

// TaskRow is one row of the tasks table.
type TaskRow struct {
	ID       int64
	Title    string
	Priority sql.NullString
	IsDone   bool
}

// Record returns the row in the loosely-typed form the store validates.
// A NULL priority is left out so the default applies.
func (r TaskRow) Record() map[string]any {
	record := map[string]any{
		"id":     r.ID,
		"title":  r.Title,
		"isDone": r.IsDone,
	}
	if r.Priority.Valid {
		record["priority"] = r.Priority.String
	}
	return record
}
