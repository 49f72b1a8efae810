// Package todoclient is a Go client for the to-do API plus the optimistic
// state layer a UI drives: an explicit store of lists and tasks updated
// through actions, and a controller that applies changes locally before the
// server confirms them.
package todoclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API is the server surface the controller depends on.
type API interface {
	Lists(ctx context.Context) ([]List, error)
	CreateList(ctx context.Context, name string) (*List, error)
	DeleteList(ctx context.Context, id string) error
	Tasks(ctx context.Context, listID string) ([]Task, error)
	CreateTask(ctx context.Context, in NewTask) (*Task, error)
	UpdateTask(ctx context.Context, upd TaskUpdate) (*Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("todo api: status %d", e.Status)
	}
	return fmt.Sprintf("todo api: status %d: %s", e.Status, e.Message)
}

// Client talks JSON to the /api routes with a bearer access token.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return &APIError{Status: resp.StatusCode, Message: "malformed response"}
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message}
		_ = json.Unmarshal(env.Error, &apiErr.Details)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return &APIError{Status: resp.StatusCode, Message: "response has no data"}
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) Lists(ctx context.Context) ([]List, error) {
	out := []List{}
	if err := c.do(ctx, http.MethodGet, "/api/lists", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateList(ctx context.Context, name string) (*List, error) {
	var out List
	if err := c.do(ctx, http.MethodPost, "/api/lists", map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteList(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/lists?id="+url.QueryEscape(id), nil, nil)
}

// Tasks returns every task of the caller, or one list's when listID is set.
func (c *Client) Tasks(ctx context.Context, listID string) ([]Task, error) {
	path := "/api/tasks"
	if listID != "" {
		path += "?listId=" + url.QueryEscape(listID)
	}
	out := []Task{}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, in NewTask) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, upd TaskUpdate) (*Task, error) {
	var out Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks", upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks", map[string]string{"id": id}, nil)
}

var _ API = (*Client)(nil)
