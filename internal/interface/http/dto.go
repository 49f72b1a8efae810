package handlers

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
)

type listResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toListResponse(l entity.List) listResponse {
	return listResponse{ID: l.ID, Name: l.Name, UserID: l.UserID, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt}
}

type subtaskDTO struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type taskResponse struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Completed   bool         `json:"completed"`
	DueDate     *time.Time   `json:"dueDate"`
	Description *string      `json:"description,omitempty"`
	Subtasks    []subtaskDTO `json:"subtasks"`
	ListID      string       `json:"listId"`
	UserID      string       `json:"userId"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func toTaskResponse(t entity.Task) taskResponse {
	subs := make([]subtaskDTO, 0, len(t.Subtasks))
	for _, s := range t.Subtasks {
		subs = append(subs, subtaskDTO{Title: s.Title, Completed: s.Completed})
	}
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Completed:   t.Completed,
		DueDate:     t.DueDate,
		Description: t.Description,
		Subtasks:    subs,
		ListID:      t.ListID,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func fromSubtaskDTOs(in []subtaskDTO) []entity.Subtask {
	out := make([]entity.Subtask, 0, len(in))
	for _, s := range in {
		out = append(out, entity.Subtask{Title: s.Title, Completed: s.Completed})
	}
	return out
}

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	LastLoginAt time.Time `json:"lastLogin"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toUserResponse(u entity.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Image: u.ImageURL, LastLoginAt: u.LastLoginAt, CreatedAt: u.CreatedAt}
}

// jsonDate accepts RFC 3339 timestamps, plain YYYY-MM-DD dates and "" (no date).
type jsonDate struct {
	t time.Time
}

func (d *jsonDate) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte(`""`)) {
		d.t = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.t = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	d.t = t.UTC()
	return nil
}

// ptr returns nil for the zero date.
func (d *jsonDate) ptr() *time.Time {
	if d == nil || d.t.IsZero() {
		return nil
	}
	t := d.t
	return &t
}
