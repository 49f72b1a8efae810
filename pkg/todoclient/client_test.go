package todoclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeJSON(t *testing.T, w http.ResponseWriter, status int, data any, message string, details map[string]string) {
	t.Helper()
	body := map[string]any{"status": status, "success": status < 300, "message": message}
	if data != nil {
		body["data"] = data
	}
	if details != nil {
		body["error"] = details
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestClient_SendsBearerAndDecodesData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "L 1", r.URL.Query().Get("listId"))
		envelopeJSON(t, w, http.StatusOK, []map[string]any{
			{"id": "T1", "title": "Buy milk", "completed": false, "subtasks": []any{map[string]any{"title": "a", "completed": true}}, "listId": "L 1"},
		}, "ok", nil)
	}))
	defer srv.Close()

	tasks, err := New(srv.URL+"/", "tok").Tasks(context.Background(), "L 1")

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.Equal(t, []Subtask{{Title: "a", Completed: true}}, tasks[0].Subtasks)
}

func TestClient_EmptyArrayDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelopeJSON(t, w, http.StatusOK, []any{}, "ok", nil)
	}))
	defer srv.Close()

	lists, err := New(srv.URL, "").Lists(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, lists)
	assert.Empty(t, lists)
}

func TestClient_MissingDataIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelopeJSON(t, w, http.StatusOK, nil, "ok", nil)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Lists(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.Status)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelopeJSON(t, w, http.StatusBadRequest, nil, "validation failed", map[string]string{"name": "is required"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "tok").CreateList(context.Background(), "")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation failed", apiErr.Message)
	assert.Equal(t, "is required", apiErr.Details["name"])
}

func TestClient_DeleteTaskSendsBody(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		envelopeJSON(t, w, http.StatusOK, map[string]string{"id": "T1"}, "task deleted", nil)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL, "tok").DeleteTask(context.Background(), "T1"))
	assert.Equal(t, map[string]string{"id": "T1"}, got)
}

func TestTaskUpdate_MarshalJSON(t *testing.T) {
	done := true
	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	empty := []Subtask(nil)

	cases := []struct {
		name string
		upd  TaskUpdate
		want string
	}{
		{"only id and completed", TaskUpdate{ID: "T1", Completed: &done}, `{"id":"T1","completed":true}`},
		{"explicit nulls", TaskUpdate{ID: "T1", ClearDueDate: true, ClearDescription: true}, `{"id":"T1","dueDate":null,"description":null}`},
		{"due date", TaskUpdate{ID: "T1", DueDate: &due}, `{"id":"T1","dueDate":"2026-03-01T09:00:00Z"}`},
		{"empty subtasks stay an array", TaskUpdate{ID: "T1", Subtasks: &empty}, `{"id":"T1","subtasks":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.upd)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(b))
		})
	}
}
