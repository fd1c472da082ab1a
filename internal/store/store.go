// Package store holds the authoritative task set and persists it after
// every mutation.
package store

import (
	"context"
	stderrors "errors"
	"io/fs"
	"sync"

	"github.com/charmbracelet/log"

	"todo-api/internal/domain"
	"todo-api/internal/errors"
	"todo-api/internal/repository"
	"todo-api/internal/validation"
)

// Stats summarises the task set.
type Stats struct {
	Total           int
	Completed       int
	Pending         int
	NextID          int64
	StorageLocation string
}

// Store is the in-memory task index backed by a Repository.
// All operations are serialized; persistence happens inside the lock.
type Store struct {
	mu     sync.Mutex
	repo   repository.Repository
	logger *log.Logger

	tasks  map[int64]*domain.Task
	order  []int64
	nextID int64

	taskValidator *validation.TaskValidator
}

// New creates a store and loads the persisted task set. Missing or corrupt
// storage yields an empty store; only a permission failure is returned.
func New(ctx context.Context, repo repository.Repository, logger *log.Logger) (*Store, error) {
	s := &Store{
		repo:          repo,
		logger:        logger,
		tasks:         make(map[int64]*domain.Task),
		nextID:        1,
		taskValidator: validation.NewTaskValidator(),
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	raw, err := s.repo.Load(ctx)
	if err != nil {
		switch {
		case stderrors.Is(err, fs.ErrNotExist):
			s.logger.Info("No existing storage found, starting empty", "location", s.repo.Location())
			return nil
		case errors.IsErrorType(err, errors.ErrorTypePermission):
			s.logger.Error("Cannot read storage", "location", s.repo.Location(), "err", err)
			return err
		default:
			s.logger.Error("Failed to load tasks, starting empty", "location", s.repo.Location(), "err", err)
			return nil
		}
	}

	var maxID int64
	for i, record := range raw {
		task, err := domain.FromRecord(record)
		if err != nil {
			fields := []interface{}{"index", i, "err", errors.GetUserMessage(err)}
			if appErr, ok := errors.AsAppError(err); ok {
				fields = append(fields, appErr.LogFields()...)
			}
			s.logger.Warn("Skipping invalid task record", fields...)
			continue
		}
		if _, exists := s.tasks[task.ID]; exists {
			s.logger.Warn("Skipping duplicate task id", "index", i, "id", task.ID)
			continue
		}
		t := task
		s.tasks[t.ID] = &t
		s.order = append(s.order, t.ID)
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	s.nextID = maxID + 1

	s.logger.Info("Loaded tasks", "count", len(s.order), "location", s.repo.Location())
	return nil
}

// CreateTask validates the input, stores a new pending task and persists the
// set. A failed save is logged and the task is still returned.
func (s *Store) CreateTask(ctx context.Context, title, priority string) (domain.Task, error) {
	if err := s.taskValidator.ValidateTaskForCreation(title, priority); err != nil {
		return domain.Task{}, toAppError(err)
	}
	title, err := s.taskValidator.GetValidTitle(title)
	if err != nil {
		return domain.Task{}, toAppError(err)
	}

	task, err := domain.NewTask(title, domain.Priority(priority))
	if err != nil {
		return domain.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.nextID
	s.nextID++
	s.tasks[task.ID] = &task
	s.order = append(s.order, task.ID)

	s.logger.Info("Created task", "id", task.ID, "title", task.Title, "priority", task.Priority)
	s.save(ctx)
	return task, nil
}

// GetAllTasks returns copies of every task in creation order.
func (s *Store) GetAllTasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]domain.Task, 0, len(s.order))
	for _, id := range s.order {
		tasks = append(tasks, *s.tasks[id])
	}
	return tasks
}

// GetTask returns a copy of the task with the given id.
func (s *Store) GetTask(id int64) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return domain.Task{}, false
	}
	return *task, true
}

// CompleteTask marks a task done. It returns false only when the id is
// unknown. The set is persisted only when the task changed state.
func (s *Store) CompleteTask(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		s.logger.Warn("Task not found", "id", id)
		return false
	}
	if !task.Complete() {
		s.logger.Debug("Task already completed", "id", id)
		return true
	}

	s.logger.Info("Completed task", "id", id)
	s.save(ctx)
	return true
}

// SaveTasks persists the full task set and reports whether it succeeded.
func (s *Store) SaveTasks(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

func (s *Store) save(ctx context.Context) bool {
	records := make([]domain.Record, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.tasks[id].ToRecord())
	}

	if err := s.repo.Save(ctx, records); err != nil {
		if errors.IsErrorType(err, errors.ErrorTypePermission) {
			s.logger.Error("Permission denied saving tasks", "location", s.repo.Location(), "err", err)
		} else {
			s.logger.Error("Failed to save tasks", "location", s.repo.Location(), "err", err)
		}
		return false
	}
	s.logger.Debug("Saved tasks", "count", len(records), "location", s.repo.Location())
	return true
}

// Stats returns counts for the current task set.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		Total:           len(s.order),
		NextID:          s.nextID,
		StorageLocation: s.repo.Location(),
	}
	for _, task := range s.tasks {
		if task.IsDone {
			stats.Completed++
		}
	}
	stats.Pending = stats.Total - stats.Completed
	return stats
}

// toAppError converts a validation failure into the AppError reported to callers.
func toAppError(err error) error {
	var ve *validation.ValidationError
	if stderrors.As(err, &ve) {
		return errors.NewValidationError(ve.GetUserFriendlyMessage(), err)
	}
	return err
}
