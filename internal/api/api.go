// Package api exposes the task store over HTTP.
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"todo-api/internal/domain"
	"todo-api/internal/errors"
	"todo-api/internal/validation"
)

// Messages reported to clients for malformed requests.
const (
	MessageInvalidJSON   = "Invalid JSON"
	MessageNotObject     = "Request body must be a JSON object"
	MessageInvalidTaskID = "Invalid task ID"
	MessageNotFound      = "Not found"
	MessageInternalError = "Internal server error"
)

// maxBodyBytes caps the size of a request body.
const maxBodyBytes = 1 << 20

// TaskStore defines the store operations the handler drives.
type TaskStore interface {
	CreateTask(ctx context.Context, title, priority string) (domain.Task, error)
	GetAllTasks() []domain.Task
	CompleteTask(ctx context.Context, id int64) bool
}

// Handler routes task requests to a TaskStore.
type Handler struct {
	store  TaskStore
	logger *log.Logger
}

// NewHandler creates a handler serving store.
func NewHandler(store TaskStore, logger *log.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// ServeHTTP implements http.Handler. Paths are matched with surrounding
// slashes removed, so "/tasks/" and "/tasks" are the same route.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.Method == http.MethodOptions:
		writeEmpty(w, http.StatusOK)

	case r.Method == http.MethodGet && len(parts) == 1 && parts[0] == "tasks":
		h.listTasks(w, r)

	case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == "tasks":
		h.createTask(w, r)

	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "tasks" && parts[2] == "complete":
		h.completeTask(w, r, parts[1])

	default:
		h.logger.Warn("Route not found", "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusNotFound, MessageNotFound)
	}
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks := h.store.GetAllTasks()
	h.logger.Debug("Returning tasks", "count", len(tasks))
	writeJSON(w, http.StatusOK, domain.ToRecords(tasks))
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	body, err := readObject(w, r)
	if err != nil {
		h.logger.Warn("Rejected request body", "remote", r.RemoteAddr, "err", err)
		writeError(w, errors.HTTPStatus(err), errors.GetUserMessage(err))
		return
	}

	input, err := validation.ValidateCreateTaskBody(body)
	if err != nil {
		h.logger.Warn("Invalid create request", "remote", r.RemoteAddr, "err", err)
		writeError(w, http.StatusBadRequest, userMessage(err))
		return
	}

	task, err := h.store.CreateTask(r.Context(), input.Title, input.Priority)
	if err != nil {
		status := errors.HTTPStatus(err)
		if errors.ShouldLogError(err) {
			h.logger.Error("Failed to create task", "err", err)
		} else {
			h.logger.Warn("Task rejected", "remote", r.RemoteAddr, "err", errors.GetUserMessage(err))
		}
		message := MessageInternalError
		if status == http.StatusBadRequest {
			message = errors.GetUserMessage(err)
		}
		writeError(w, status, message)
		return
	}

	h.logger.Info("Task created", "id", task.ID)
	writeJSON(w, http.StatusCreated, task.ToRecord())
}

func (h *Handler) completeTask(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		// An integer too large for int64 is well formed; no task can have it.
		if stderrors.Is(err, strconv.ErrRange) {
			h.taskNotFound(w, rawID)
			return
		}
		h.logger.Warn("Invalid task ID", "id", rawID)
		writeError(w, http.StatusBadRequest, MessageInvalidTaskID)
		return
	}

	if !h.store.CompleteTask(r.Context(), id) {
		h.taskNotFound(w, rawID)
		return
	}
	h.logger.Info("Task marked as completed", "id", id)
	writeEmpty(w, http.StatusOK)
}

// taskNotFound answers a complete request for an unknown id with an empty body.
func (h *Handler) taskNotFound(w http.ResponseWriter, rawID string) {
	err := errors.NewNotFoundError("task", rawID)
	h.logger.Info("Task not found", err.LogFields()...)
	writeEmpty(w, errors.HTTPStatus(err))
}

// readObject decodes the request body as a JSON object. An absent body,
// malformed JSON and a literal null are all reported as invalid JSON.
func readObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.NewBadRequestError(MessageInvalidJSON, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.NewBadRequestError(MessageInvalidJSON, nil)
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, errors.NewBadRequestError(MessageInvalidJSON, err)
	}
	if value == nil {
		return nil, errors.NewBadRequestError(MessageInvalidJSON, nil)
	}
	object, ok := value.(map[string]any)
	if !ok {
		return nil, errors.NewBadRequestError(MessageNotObject, nil)
	}
	return object, nil
}

func userMessage(err error) string {
	var ve *validation.ValidationError
	if stderrors.As(err, &ve) {
		return ve.GetUserFriendlyMessage()
	}
	return errors.GetUserMessage(err)
}
