package todoclient

import (
	"encoding/json"
	"time"
)

type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Subtask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Description *string    `json:"description,omitempty"`
	Subtasks    []Subtask  `json:"subtasks"`
	ListID      string     `json:"listId"`
	UserID      string     `json:"userId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask is the create payload.
type NewTask struct {
	Title       string     `json:"title"`
	ListID      string     `json:"listId"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Description *string    `json:"description,omitempty"`
	Subtasks    []Subtask  `json:"subtasks,omitempty"`
}

// TaskUpdate is a partial update: nil fields are not sent. The Clear flags
// send an explicit null for dueDate or description.
type TaskUpdate struct {
	ID               string
	Title            *string
	Completed        *bool
	DueDate          *time.Time
	ClearDueDate     bool
	Description      *string
	ClearDescription bool
	Subtasks         *[]Subtask
}

func (u TaskUpdate) MarshalJSON() ([]byte, error) {
	m := map[string]any{"id": u.ID}
	if u.Title != nil {
		m["title"] = *u.Title
	}
	if u.Completed != nil {
		m["completed"] = *u.Completed
	}
	switch {
	case u.ClearDueDate:
		m["dueDate"] = nil
	case u.DueDate != nil:
		m["dueDate"] = u.DueDate.UTC().Format(time.RFC3339)
	}
	switch {
	case u.ClearDescription:
		m["description"] = nil
	case u.Description != nil:
		m["description"] = *u.Description
	}
	if u.Subtasks != nil {
		subs := *u.Subtasks
		if subs == nil {
			subs = []Subtask{}
		}
		m["subtasks"] = subs
	}
	return json.Marshal(m)
}

// apply merges the supplied fields into t.
func (u TaskUpdate) apply(t Task) Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	if u.ClearDueDate {
		t.DueDate = nil
	} else if u.DueDate != nil {
		d := *u.DueDate
		t.DueDate = &d
	}
	if u.ClearDescription {
		t.Description = nil
	} else if u.Description != nil {
		d := *u.Description
		t.Description = &d
	}
	if u.Subtasks != nil {
		t.Subtasks = append([]Subtask(nil), (*u.Subtasks)...)
	}
	return t
}

// inverse returns the update that restores t's values for the fields u touches.
func (u TaskUpdate) inverse(t Task) TaskUpdate {
	inv := TaskUpdate{ID: u.ID}
	if u.Title != nil {
		title := t.Title
		inv.Title = &title
	}
	if u.Completed != nil {
		done := t.Completed
		inv.Completed = &done
	}
	if u.ClearDueDate || u.DueDate != nil {
		if t.DueDate == nil {
			inv.ClearDueDate = true
		} else {
			d := *t.DueDate
			inv.DueDate = &d
		}
	}
	if u.ClearDescription || u.Description != nil {
		if t.Description == nil {
			inv.ClearDescription = true
		} else {
			d := *t.Description
			inv.Description = &d
		}
	}
	if u.Subtasks != nil {
		subs := append([]Subtask{}, t.Subtasks...)
		inv.Subtasks = &subs
	}
	return inv
}
