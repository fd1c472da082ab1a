package domain

import (
	"encoding/json"
	"fmt"
	"math"

	"todo-api/internal/errors"
)

// Record is the serialized form of a Task, shared by the HTTP API and the
// persisted task file.
type Record struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Priority Priority `json:"priority"`
	IsDone   bool     `json:"isDone"`
}

// ToRecord returns an independent snapshot of the task.
func (t Task) ToRecord() Record {
	return Record{
		ID:       t.ID,
		Title:    t.Title,
		Priority: t.Priority,
		IsDone:   t.IsDone,
	}
}

// ToRecords converts a slice of tasks to records, preserving order.
func ToRecords(tasks []Task) []Record {
	records := make([]Record, len(tasks))
	for i, task := range tasks {
		records[i] = task.ToRecord()
	}
	return records
}

// FromRecord rebuilds a Task from a loosely-typed record such as a decoded
// JSON object or a database row. Anything other than a map is rejected.
// "id" and "title" are required; "priority" and "isDone" fall back to their
// defaults only when the key is absent.
func FromRecord(entry any) (Task, error) {
	raw, ok := entry.(map[string]any)
	if !ok {
		return Task{}, errors.NewValidationError("Task record must be an object", nil).
			WithContext("value", entry)
	}

	rawID, ok := raw["id"]
	if !ok {
		return Task{}, errors.NewValidationError("Missing required field: id", nil)
	}
	id, err := toID(rawID)
	if err != nil {
		return Task{}, err
	}

	rawTitle, ok := raw["title"]
	if !ok {
		return Task{}, errors.NewValidationError("Missing required field: title", nil)
	}
	title, ok := rawTitle.(string)
	if !ok {
		return Task{}, fieldError("title", rawTitle, "must be a string")
	}

	priority := DefaultPriority
	if rawPriority, ok := raw["priority"]; ok {
		switch s := rawPriority.(type) {
		case string:
			if s == "" {
				return Task{}, invalidPriorityError(s)
			}
			priority = Priority(s)
		case nil:
			return Task{}, invalidPriorityError("null")
		default:
			return Task{}, fieldError("priority", rawPriority, "must be a string")
		}
	}

	isDone := false
	if rawDone, ok := raw["isDone"]; ok && rawDone != nil {
		switch v := rawDone.(type) {
		case bool:
			isDone = v
		case int64:
			isDone = v != 0
		default:
			return Task{}, fieldError("isDone", rawDone, "must be a boolean")
		}
	}

	return RestoreTask(id, title, priority, isDone)
}

func fieldError(field string, value any, reason string) error {
	return errors.NewValidationError(fmt.Sprintf("Invalid %s: %s", field, reason), nil).
		WithContext("field", field).
		WithContext("value", value)
}

func toID(v any) (int64, error) {
	var id int64
	switch n := v.(type) {
	case int64:
		id = n
	case int:
		id = int64(n)
	case float64:
		if n != math.Trunc(n) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, fieldError("id", v, "must be an integer")
		}
		id = int64(n)
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return 0, fieldError("id", v, "must be an integer")
		}
		id = parsed
	default:
		return 0, fieldError("id", v, fmt.Sprintf("unexpected type %T", v))
	}
	if id <= 0 {
		return 0, fieldError("id", v, "must be a positive integer")
	}
	return id, nil
}
