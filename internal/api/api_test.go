package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-api/internal/domain"
	"todo-api/internal/errors"
	"todo-api/internal/logging"
	"todo-api/internal/repository/file"
	"todo-api/internal/store"
)

// stubStore records calls and returns canned results.
type stubStore struct {
	tasks      []domain.Task
	createErr  error
	completeOK bool

	createdTitle    string
	createdPriority string
	createCalls     int
	completedID     int64
	panicOnList     bool
}

func (s *stubStore) CreateTask(ctx context.Context, title, priority string) (domain.Task, error) {
	s.createCalls++
	s.createdTitle, s.createdPriority = title, priority
	if s.createErr != nil {
		return domain.Task{}, s.createErr
	}
	return domain.Task{ID: 1, Title: title, Priority: domain.Priority(priority)}, nil
}

func (s *stubStore) GetAllTasks() []domain.Task {
	if s.panicOnList {
		panic("boom")
	}
	return s.tasks
}

func (s *stubStore) CompleteTask(ctx context.Context, id int64) bool {
	s.completedID = id
	return s.completeOK
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func assertCommonHeaders(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHandler_ListTasks(t *testing.T) {
	st := &stubStore{tasks: []domain.Task{
		{ID: 1, Title: "Buy milk", Priority: domain.PriorityNormal},
		{ID: 2, Title: "Купить <хлеб> & соль", Priority: domain.PriorityHigh, IsDone: true},
	}}
	h := NewHandler(st, logging.Discard())

	for _, target := range []string{"/tasks", "/tasks/", "/tasks?done=1"} {
		t.Run(target, func(t *testing.T) {
			rec := serve(t, h, http.MethodGet, target, "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assertCommonHeaders(t, rec)

			var got []domain.Record
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, domain.ToRecords(st.tasks), got)
			assert.Contains(t, rec.Body.String(), "Купить <хлеб> & соль")
		})
	}
}

func TestHandler_ListTasksEmpty(t *testing.T) {
	h := NewHandler(&stubStore{}, logging.Discard())

	rec := serve(t, h, http.MethodGet, "/tasks", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandler_CreateTask(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		createErr    error
		wantStatus   int
		wantError    string
		wantPriority string
		wantCalled   bool
	}{
		{name: "title and priority", body: `{"title":"Buy milk","priority":"high"}`, wantStatus: http.StatusCreated, wantPriority: "high", wantCalled: true},
		{name: "priority defaults to normal", body: `{"title":"Buy milk"}`, wantStatus: http.StatusCreated, wantPriority: "normal", wantCalled: true},
		{name: "null priority", body: `{"title":"Buy milk","priority":null}`, wantStatus: http.StatusBadRequest, wantError: "Priority must be: low, normal or high"},
		{name: "extra keys ignored", body: `{"title":"Buy milk","isDone":true,"id":42}`, wantStatus: http.StatusCreated, wantPriority: "normal", wantCalled: true},
		{name: "absent body", body: "", wantStatus: http.StatusBadRequest, wantError: MessageInvalidJSON},
		{name: "whitespace body", body: "  \n", wantStatus: http.StatusBadRequest, wantError: MessageInvalidJSON},
		{name: "malformed json", body: `{"title":`, wantStatus: http.StatusBadRequest, wantError: MessageInvalidJSON},
		{name: "trailing garbage", body: `{"title":"x"} extra`, wantStatus: http.StatusBadRequest, wantError: MessageInvalidJSON},
		{name: "json null", body: `null`, wantStatus: http.StatusBadRequest, wantError: MessageInvalidJSON},
		{name: "json array", body: `["title"]`, wantStatus: http.StatusBadRequest, wantError: MessageNotObject},
		{name: "json string", body: `"title"`, wantStatus: http.StatusBadRequest, wantError: MessageNotObject},
		{name: "empty object", body: `{}`, wantStatus: http.StatusBadRequest, wantError: "Title is required"},
		{name: "numeric title", body: `{"title":5}`, wantStatus: http.StatusBadRequest, wantError: "Title must be a string"},
		{name: "null title", body: `{"title":null}`, wantStatus: http.StatusBadRequest, wantError: "Title must be a string"},
		{name: "numeric priority", body: `{"title":"x","priority":1}`, wantStatus: http.StatusBadRequest, wantError: "Priority must be a string"},
		{
			name:       "store validation error",
			body:       `{"title":"  "}`,
			createErr:  errors.NewValidationError("Task title cannot be empty", nil),
			wantStatus: http.StatusBadRequest,
			wantError:  "Task title cannot be empty",
			wantCalled: true,
		},
		{
			name:       "unexpected store error",
			body:       `{"title":"x"}`,
			createErr:  errors.NewInternalError("create", assert.AnError),
			wantStatus: http.StatusInternalServerError,
			wantError:  MessageInternalError,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &stubStore{createErr: tt.createErr}
			h := NewHandler(st, logging.Discard())

			rec := serve(t, h, http.MethodPost, "/tasks", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assertCommonHeaders(t, rec)
			assert.Equal(t, tt.wantCalled, st.createCalls == 1)

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorBody(t, rec))
				return
			}

			var got domain.Record
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, "Buy milk", got.Title)
			assert.Equal(t, domain.Priority(tt.wantPriority), got.Priority)
			assert.Equal(t, tt.wantPriority, st.createdPriority)
		})
	}
}

func TestHandler_CompleteTask(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		completeOK bool
		wantStatus int
		wantID     int64
		wantError  string
	}{
		{name: "known task", target: "/tasks/3/complete", completeOK: true, wantStatus: http.StatusOK, wantID: 3},
		{name: "trailing slash", target: "/tasks/3/complete/", completeOK: true, wantStatus: http.StatusOK, wantID: 3},
		{name: "unknown task", target: "/tasks/99/complete", wantStatus: http.StatusNotFound, wantID: 99},
		{name: "negative id", target: "/tasks/-1/complete", wantStatus: http.StatusNotFound, wantID: -1},
		{name: "non-integer id", target: "/tasks/abc/complete", wantStatus: http.StatusBadRequest, wantError: MessageInvalidTaskID},
		{name: "fractional id", target: "/tasks/1.5/complete", wantStatus: http.StatusBadRequest, wantError: MessageInvalidTaskID},
		{name: "id beyond int64", target: "/tasks/99999999999999999999/complete", wantStatus: http.StatusNotFound},
		{name: "negative id beyond int64", target: "/tasks/-99999999999999999999/complete", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &stubStore{completeOK: tt.completeOK}
			h := NewHandler(st, logging.Discard())

			rec := serve(t, h, http.MethodPost, tt.target, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assertCommonHeaders(t, rec)
			assert.Equal(t, tt.wantID, st.completedID)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorBody(t, rec))
			} else {
				assert.Empty(t, rec.Body.String())
			}
		})
	}
}

func TestHandler_Options(t *testing.T) {
	h := NewHandler(&stubStore{}, logging.Discard())

	for _, target := range []string{"/tasks", "/tasks/1/complete", "/anything/else"} {
		rec := serve(t, h, http.MethodOptions, target, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assertCommonHeaders(t, rec)
		assert.Empty(t, rec.Body.String())
	}
}

func TestHandler_NotFound(t *testing.T) {
	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/"},
		{http.MethodGet, "/tasks/1"},
		{http.MethodGet, "/tasks/1/complete"},
		{http.MethodPost, "/"},
		{http.MethodPost, "/tasks/1"},
		{http.MethodPost, "/tasks/1/undo"},
		{http.MethodPut, "/tasks"},
		{http.MethodDelete, "/tasks/1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			st := &stubStore{}
			h := NewHandler(st, logging.Discard())

			rec := serve(t, h, tt.method, tt.target, "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assertCommonHeaders(t, rec)
			assert.Equal(t, MessageNotFound, errorBody(t, rec))
			assert.Zero(t, st.createCalls)
		})
	}
}

func TestRoutes_EndToEnd(t *testing.T) {
	ctx := context.Background()
	repo := file.New(filepath.Join(t.TempDir(), "tasks.txt"))
	st, err := store.New(ctx, repo, logging.Discard())
	require.NoError(t, err)

	srv := httptest.NewServer(Routes(NewHandler(st, logging.Discard()), logging.Discard()))
	defer srv.Close()

	post := func(path, body string) *http.Response {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		return resp
	}

	resp := post("/tasks", `{"title":"Buy milk","priority":"high"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created domain.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.Equal(t, domain.Record{ID: 1, Title: "Buy milk", Priority: domain.PriorityHigh}, created)

	resp = post("/tasks/1/complete", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/tasks")
	require.NoError(t, err)
	var listed []domain.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	assert.Equal(t, []domain.Record{{ID: 1, Title: "Buy milk", Priority: domain.PriorityHigh, IsDone: true}}, listed)

	resp = post("/tasks/99/complete", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = post("/tasks", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	resp.Body.Close()

	// The store state survives a restart.
	reloaded, err := store.New(ctx, file.New(repo.Location()), logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, st.GetAllTasks(), reloaded.GetAllTasks())
}
