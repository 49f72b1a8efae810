package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/internal/testutil"
	"github.com/oksasatya/go-ddd-todo/pkg/helpers"
	"github.com/oksasatya/go-ddd-todo/pkg/validation"
)

const (
	alice = "7b0c3e55-5f36-4a5e-9a8e-3f3c2a1d0001"
	bob   = "7b0c3e55-5f36-4a5e-9a8e-3f3c2a1d0002"
)

type envelope struct {
	Status  int               `json:"status"`
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

type harness struct {
	store  *testutil.MemStore
	index  *testutil.FakeIndexer
	events *testutil.FakePublisher
	engine *gin.Engine
}

// asUser stands in for the auth middleware: the X-Test-User header becomes the caller.
func asUser(c *gin.Context) {
	if uid := c.GetHeader("X-Test-User"); uid != "" {
		c.Set(ctxUserID, uid)
	}
	c.Next()
}

func newHarness() *harness {
	gin.SetMode(gin.TestMode)
	validation.Init()

	store := testutil.NewMemStore()
	index := testutil.NewFakeIndexer()
	events := &testutil.FakePublisher{}
	lists := NewListHandler(application.NewListService(store.Lists(), index, events, nil), nil)
	tasks := NewTaskHandler(application.NewTaskService(store.Tasks(), store.Lists(), index, events, nil, false), nil)

	e := gin.New()
	api := e.Group("/api", asUser)
	api.GET("/lists", lists.List)
	api.POST("/lists", lists.Create)
	api.DELETE("/lists", lists.Delete)
	api.GET("/tasks", tasks.List)
	api.POST("/tasks", tasks.Create)
	api.PUT("/tasks", tasks.Update)
	api.DELETE("/tasks", tasks.Delete)
	api.GET("/tasks/search", tasks.Search)

	return &harness{store: store, index: index, events: events, engine: e}
}

func (h *harness) do(t *testing.T, method, path, user string, body any) (int, envelope) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		var raw []byte
		if s, ok := body.(string); ok {
			raw = []byte(s)
		} else {
			var err error
			raw, err = json.Marshal(body)
			require.NoError(t, err)
		}
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (h *harness) createList(t *testing.T, user, name string) listResponse {
	t.Helper()
	code, env := h.do(t, http.MethodPost, "/api/lists", user, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var l listResponse
	require.NoError(t, json.Unmarshal(env.Data, &l))
	return l
}

func (h *harness) createTask(t *testing.T, user string, body gin.H) taskResponse {
	t.Helper()
	code, env := h.do(t, http.MethodPost, "/api/tasks", user, body)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var task taskResponse
	require.NoError(t, json.Unmarshal(env.Data, &task))
	return task
}

func TestLists_RequireCaller(t *testing.T) {
	h := newHarness()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/lists"},
		{http.MethodPost, "/api/lists"},
		{http.MethodGet, "/api/tasks"},
	} {
		var body any
		if tc.method == http.MethodPost {
			body = gin.H{"name": "Groceries"}
		}
		code, env := h.do(t, tc.method, tc.path, "", body)
		assert.Equal(t, http.StatusUnauthorized, code, tc.path)
		assert.False(t, env.Success)
	}
	assert.Equal(t, 0, h.store.Calls())
}

func TestLists_CreateAndList(t *testing.T) {
	h := newHarness()

	created := h.createList(t, alice, "  Groceries ")
	assert.Equal(t, "Groceries", created.Name)
	assert.Equal(t, alice, created.UserID)
	h.createList(t, bob, "Bob's")

	code, env := h.do(t, http.MethodGet, "/api/lists", alice, nil)
	require.Equal(t, http.StatusOK, code)
	var lists []listResponse
	require.NoError(t, json.Unmarshal(env.Data, &lists))
	require.Len(t, lists, 1)
	assert.Equal(t, created.ID, lists[0].ID)
}

func TestCollections_EmptyOwnerGetsEmptyArray(t *testing.T) {
	h := newHarness()

	for _, path := range []string{"/api/lists", "/api/tasks", "/api/tasks?listId=none", "/api/tasks/search?q=milk"} {
		code, env := h.do(t, http.MethodGet, path, alice, nil)
		require.Equal(t, http.StatusOK, code, path)
		assert.JSONEq(t, `[]`, string(env.Data), path)
	}
}

func TestLists_CreateRejectsBadNames(t *testing.T) {
	h := newHarness()

	for _, name := range []string{"", "   ", strings.Repeat("x", 61)} {
		code, env := h.do(t, http.MethodPost, "/api/lists", alice, gin.H{"name": name})
		assert.Equal(t, http.StatusBadRequest, code, name)
		assert.Contains(t, env.Error, "name")
	}
	code, _ := h.do(t, http.MethodPost, "/api/lists", alice, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 0, h.store.ListCount())
}

func TestLists_DeleteCascades(t *testing.T) {
	h := newHarness()
	l := h.createList(t, alice, "Work")
	keep := h.createList(t, alice, "Home")
	h.createTask(t, alice, gin.H{"title": "a", "listId": l.ID})
	h.createTask(t, alice, gin.H{"title": "b", "listId": l.ID})
	h.createTask(t, alice, gin.H{"title": "c", "listId": keep.ID})

	code, env := h.do(t, http.MethodDelete, "/api/lists?id="+l.ID, alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"list_id":"`+l.ID+`","deleted_tasks":2}`, string(env.Data))
	assert.Equal(t, 1, h.store.TaskCount())
	assert.Contains(t, h.index.Deleted, "list:"+l.ID)
}

func TestLists_DeleteErrors(t *testing.T) {
	h := newHarness()
	l := h.createList(t, alice, "Work")

	code, env := h.do(t, http.MethodDelete, "/api/lists", alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "is required", env.Error["id"])

	code, _ = h.do(t, http.MethodDelete, "/api/lists?id="+l.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(t, http.MethodDelete, "/api/lists?id=not-a-uuid", alice, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 1, h.store.ListCount())
}

func TestTasks_CreateAndFilter(t *testing.T) {
	h := newHarness()
	work := h.createList(t, alice, "Work")
	home := h.createList(t, alice, "Home")

	task := h.createTask(t, alice, gin.H{
		"title":       "Ship it",
		"listId":      work.ID,
		"dueDate":     "2026-03-01",
		"description": "before lunch",
		"subtasks":    []gin.H{{"title": "tests"}},
	})
	assert.False(t, task.Completed)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *task.DueDate)
	assert.Equal(t, []subtaskDTO{{Title: "tests"}}, task.Subtasks)
	h.createTask(t, alice, gin.H{"title": "Laundry", "listId": home.ID})

	code, env := h.do(t, http.MethodGet, "/api/tasks?listId="+work.ID, alice, nil)
	require.Equal(t, http.StatusOK, code)
	var tasks []taskResponse
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)

	_, env = h.do(t, http.MethodGet, "/api/tasks", alice, nil)
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, "Laundry", tasks[0].Title)

	assert.True(t, h.index.Has(task.ID))
}

func TestTasks_CreateValidation(t *testing.T) {
	h := newHarness()
	l := h.createList(t, alice, "Work")

	cases := []struct {
		name  string
		body  gin.H
		field string
	}{
		{"missing title", gin.H{"listId": l.ID}, "title"},
		{"long title", gin.H{"title": strings.Repeat("t", 61), "listId": l.ID}, "title"},
		{"missing list", gin.H{"title": "x"}, "listId"},
		{"malformed list", gin.H{"title": "x", "listId": "nope"}, "listId"},
		{"blank subtask", gin.H{"title": "x", "listId": l.ID, "subtasks": []gin.H{{"title": " "}}}, "subtasks[0].title"},
		{"bad date", gin.H{"title": "x", "listId": l.ID, "dueDate": "tomorrow"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := h.do(t, http.MethodPost, "/api/tasks", alice, tc.body)
			assert.Equal(t, http.StatusBadRequest, code)
			if tc.field != "" {
				assert.Contains(t, env.Error, tc.field)
			}
		})
	}
	assert.Equal(t, 0, h.store.TaskCount())
}

func TestTasks_UpdateMergesAndClears(t *testing.T) {
	h := newHarness()
	l := h.createList(t, alice, "Work")
	task := h.createTask(t, alice, gin.H{"title": "Ship", "listId": l.ID, "dueDate": "2026-03-01T09:00:00Z", "description": "d"})

	code, env := h.do(t, http.MethodPut, "/api/tasks", alice, gin.H{"id": task.ID, "completed": true})
	require.Equal(t, http.StatusOK, code)
	var got taskResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.Completed)
	assert.Equal(t, "Ship", got.Title)
	require.NotNil(t, got.DueDate)
	require.NotNil(t, got.Description)

	code, env = h.do(t, http.MethodPut, "/api/tasks", alice, `{"id":"`+task.ID+`","dueDate":null,"description":null}`)
	require.Equal(t, http.StatusOK, code)
	got = taskResponse{}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Nil(t, got.DueDate)
	assert.Nil(t, got.Description)
	assert.True(t, got.Completed)
}

func TestTasks_UpdateErrors(t *testing.T) {
	h := newHarness()
	l := h.createList(t, alice, "Work")
	task := h.createTask(t, alice, gin.H{"title": "Ship", "listId": l.ID})

	code, _ := h.do(t, http.MethodPut, "/api/tasks", bob, gin.H{"id": task.ID, "completed": true})
	assert.Equal(t, http.StatusNotFound, code)

	code, env := h.do(t, http.MethodPut, "/api/tasks", alice, gin.H{"id": task.ID, "title": "  "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "title")

	code, env = h.do(t, http.MethodPut, "/api/tasks", alice, gin.H{"completed": true})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "id")

	code, env = h.do(t, http.MethodPut, "/api/tasks", alice, gin.H{"id": task.ID, "description": strings.Repeat("x", 2001)})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error, "description")
}

func TestTasks_Delete(t *testing.T) {
	h := newHarness()
	l := h.createList(t, alice, "Work")
	task := h.createTask(t, alice, gin.H{"title": "Ship", "listId": l.ID})

	code, _ := h.do(t, http.MethodDelete, "/api/tasks", bob, gin.H{"id": task.ID})
	assert.Equal(t, http.StatusNotFound, code)

	code, env := h.do(t, http.MethodDelete, "/api/tasks", alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "is required", env.Error["id"])

	code, env = h.do(t, http.MethodDelete, "/api/tasks", alice, gin.H{"id": task.ID})
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":"`+task.ID+`"}`, string(env.Data))
	assert.Equal(t, 0, h.store.TaskCount())

	types := make([]string, 0)
	for _, ev := range h.events.Events() {
		types = append(types, ev.Type)
	}
	assert.Contains(t, types, application.EventTaskDeleted)
}

func TestTasks_Search(t *testing.T) {
	h := newHarness()
	l := h.createList(t, alice, "Work")
	h.createTask(t, alice, gin.H{"title": "Buy milk", "listId": l.ID})
	other := h.createList(t, bob, "Bob")
	h.createTask(t, bob, gin.H{"title": "Buy milk too", "listId": other.ID})

	code, env := h.do(t, http.MethodGet, "/api/tasks/search?q=milk", alice, nil)
	require.Equal(t, http.StatusOK, code)
	var hits []application.TaskHit
	require.NoError(t, json.Unmarshal(env.Data, &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "Buy milk", hits[0].Title)
}

func TestWriteError_InternalIs500(t *testing.T) {
	h := newHarness()
	h.store.Err = errors.New("db down")

	code, env := h.do(t, http.MethodGet, "/api/lists", alice, nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", env.Message)
	assert.NotContains(t, env.Message, "db down")
}

func TestAuthHandler_CallbackSetsCookiesAndRedirects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := testutil.NewMemStore()
	sessions := testutil.NewFakeSessions()
	provider := &testutil.FakeProvider{
		Code:     "good",
		Identity: application.ExternalIdentity{Subject: "g-1", Email: "ada@example.com", Name: "Ada", Verified: true},
	}
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	svc := application.NewAuthService(store.Users(), provider, sessions, jwt, nil, nil, time.Hour)
	h := NewAuthHandler(svc, helpers.NewCookie("", false), "http://app.test/", nil)

	e := gin.New()
	e.GET("/login", h.GoogleLogin)
	e.GET("/callback", h.GoogleCallback)

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login?callbackUrl=/lists", nil))
	require.Equal(t, http.StatusFound, w.Code)
	states := sessions.States()
	require.Len(t, states, 1)
	assert.Contains(t, w.Header().Get("Location"), "state="+states[0])

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state="+states[0]+"&code=good", nil))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://app.test/lists", w.Header().Get("Location"))

	names := map[string]bool{}
	for _, ck := range w.Result().Cookies() {
		names[ck.Name] = ck.Value != ""
	}
	assert.True(t, names[helpers.AccessCookie])
	assert.True(t, names[helpers.RefreshCookie])

	// the state is single use
	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state="+states[0]+"&code=good", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_LogoutEndsOnlyCallersSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	store := testutil.NewMemStore()
	sessions := testutil.NewFakeSessions()
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	svc := application.NewAuthService(store.Users(), nil, sessions, jwt, nil, nil, time.Hour)
	h := NewAuthHandler(svc, helpers.NewCookie("", false), "http://app.test/", nil)

	u := &entity.User{Email: "ada@example.com", Name: "Ada"}
	require.NoError(t, store.Users().UpsertByEmail(ctx, u))
	laptop, err := svc.IssueTokens(ctx, u)
	require.NoError(t, err)
	phone, err := svc.IssueTokens(ctx, u)
	require.NoError(t, err)
	phoneID, err := svc.Resolve(ctx, phone.AccessToken)
	require.NoError(t, err)

	e := gin.New()
	e.POST("/logout", func(c *gin.Context) {
		c.Set(ctxUserID, u.ID)
		c.Set(ctxSessionID, phoneID.SessionID)
		c.Next()
	}, h.Logout)

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
	require.Equal(t, http.StatusOK, w.Code)

	_, err = svc.Resolve(ctx, phone.AccessToken)
	assert.ErrorIs(t, err, application.ErrUnauthorized)
	_, err = svc.Resolve(ctx, laptop.AccessToken)
	assert.NoError(t, err)
}

func TestAuthHandler_ProviderDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := testutil.NewMemStore()
	svc := application.NewAuthService(store.Users(), nil, testutil.NewFakeSessions(), helpers.NewJWTManager("a", "r", time.Minute, time.Hour), nil, nil, time.Hour)
	h := NewAuthHandler(svc, helpers.NewCookie("", false), "http://app.test", nil)

	e := gin.New()
	e.GET("/login", h.GoogleLogin)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthHandler_Ready(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(map[string]Check{
		"postgres": func(_ context.Context) error { return nil },
	})
	e := gin.New()
	e.GET("/readyz", h.Ready)

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	h.Checks["redis"] = func(_ context.Context) error { return errors.New("connection refused") }
	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}
