package domain

import (
	"fmt"
	"strings"

	"todo-api/internal/errors"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is used when a task is created without one.
const DefaultPriority = PriorityNormal

// Priorities returns every accepted priority, lowest first.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityNormal, PriorityHigh}
}

// IsValid reports whether p is one of the accepted priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority converts s to a Priority. The empty string maps to DefaultPriority.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return DefaultPriority, nil
	}
	p := Priority(s)
	if !p.IsValid() {
		return "", invalidPriorityError(s)
	}
	return p, nil
}

func invalidPriorityError(value string) error {
	names := make([]string, 0, 3)
	for _, p := range Priorities() {
		names = append(names, string(p))
	}
	return errors.NewValidationError(
		fmt.Sprintf("Priority must be one of: %s", strings.Join(names, ", ")), nil,
	).WithContext("priority", value)
}

// Task represents one item on the todo list.
// A task with ID 0 has not been assigned an identifier by the store yet.
type Task struct {
	ID       int64
	Title    string
	Priority Priority
	IsDone   bool
}

// NewTask creates a pending task. The title is kept as given; callers trim it.
func NewTask(title string, priority Priority) (Task, error) {
	return RestoreTask(0, title, priority, false)
}

// RestoreTask rebuilds a task with a known identity and completion state.
func RestoreTask(id int64, title string, priority Priority, isDone bool) (Task, error) {
	if strings.TrimSpace(title) == "" {
		return Task{}, errors.NewValidationError("Task title cannot be empty", nil)
	}
	p, err := ParsePriority(string(priority))
	if err != nil {
		return Task{}, err
	}
	return Task{
		ID:       id,
		Title:    title,
		Priority: p,
		IsDone:   isDone,
	}, nil
}

// Complete marks the task done. It reports whether the state changed;
// completing a done task is a no-op.
func (t *Task) Complete() bool {
	if t.IsDone {
		return false
	}
	t.IsDone = true
	return true
}

// String returns a one-line summary, e.g. "[✓] 3: Buy milk (normal)".
func (t Task) String() string {
	status := "✗"
	if t.IsDone {
		status = "✓"
	}
	return fmt.Sprintf("[%s] %d: %s (%s)", status, t.ID, t.Title, t.Priority)
}
