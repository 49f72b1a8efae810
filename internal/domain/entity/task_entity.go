package entity

import (
	"strconv"
	"time"
)

// Subtask is embedded in its parent Task and has no identity of its own.
type Subtask struct {
	Title     string
	Completed bool
}

// Task is a completable unit of work belonging to one list and one owner.
type Task struct {
	ID          string
	Title       string
	Completed   bool
	DueDate     *time.Time
	Description *string
	Subtasks    []Subtask
	UserID      string
	ListID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Normalize trims titles and checks bounds on the task, its description and its subtasks.
// A nil subtask sequence becomes an empty one.
func (t *Task) Normalize() error {
	title, err := NormalizeTitle("title", t.Title)
	if err != nil {
		return err
	}
	t.Title = title
	if err := CheckDescription(t.Description); err != nil {
		return err
	}
	subs, err := NormalizeSubtasks(t.Subtasks)
	if err != nil {
		return err
	}
	t.Subtasks = subs
	return nil
}

// NormalizeSubtasks returns a trimmed copy of subs, never nil.
func NormalizeSubtasks(subs []Subtask) ([]Subtask, error) {
	out := make([]Subtask, 0, len(subs))
	for i, s := range subs {
		title, err := NormalizeTitle("subtasks["+strconv.Itoa(i)+"].title", s.Title)
		if err != nil {
			return nil, err
		}
		out = append(out, Subtask{Title: title, Completed: s.Completed})
	}
	return out, nil
}

// TaskPatch carries one optional slot per mutable task attribute.
// Nil pointers and unset Nullable slots leave the stored value untouched.
type TaskPatch struct {
	Title       *string
	Completed   *bool
	DueDate     Nullable[time.Time]
	Description Nullable[string]
	Subtasks    *[]Subtask
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Completed == nil && !p.DueDate.Set && !p.Description.Set && p.Subtasks == nil
}

// Normalize validates the supplied slots in place.
func (p *TaskPatch) Normalize() error {
	if p.Title != nil {
		title, err := NormalizeTitle("title", *p.Title)
		if err != nil {
			return err
		}
		p.Title = &title
	}
	if p.Description.Set {
		if err := CheckDescription(p.Description.Value); err != nil {
			return err
		}
	}
	if p.Subtasks != nil {
		subs, err := NormalizeSubtasks(*p.Subtasks)
		if err != nil {
			return err
		}
		p.Subtasks = &subs
	}
	return nil
}

// Apply merges the supplied slots into t field by field.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.Subtasks != nil {
		t.Subtasks = append([]Subtask{}, (*p.Subtasks)...)
	}
}
