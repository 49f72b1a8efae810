package todoclient

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const tempPrefix = "tmp-"

// User-facing messages set on State.Error.
const (
	MsgFetchLists = "An error occurred while fetching lists"
	MsgFetchTasks = "An error occurred while fetching tasks"
	MsgAddList    = "An error occurred while adding the list"
	MsgDeleteList = "An error occurred while deleting the list"
	MsgAddTask    = "An error occurred while adding the task"
	MsgUpdateTask = "An error occurred while updating the task"
	MsgDeleteTask = "An error occurred while deleting the task"
)

var (
	ErrNoListSelected = errors.New("no list selected")
	// ErrPending is returned for changes to an item the server has not confirmed yet.
	ErrPending    = errors.New("item not saved yet")
	ErrNoSuchTask = errors.New("task not in local state")
)

// IsTemp reports whether id was assigned locally and awaits reconciliation.
func IsTemp(id string) bool { return strings.HasPrefix(id, tempPrefix) }

// Controller runs the optimistic flows: every change lands in the Store
// first, then is reconciled with or rolled back from the server's answer.
// Every method returns the server error after compensating locally.
type Controller struct {
	API   API
	Store *Store
	NewID func() string
}

func NewController(api API, store *Store) *Controller {
	return &Controller{
		API:   api,
		Store: store,
		NewID: func() string { return tempPrefix + uuid.NewString() },
	}
}

// LoadLists fetches the lists and selects the first one.
func (c *Controller) LoadLists(ctx context.Context) error {
	c.Store.Dispatch(SetLoading{Loading: true})
	c.Store.Dispatch(SetError{})
	lists, err := c.API.Lists(ctx)
	if err != nil {
		c.Store.Dispatch(SetError{Message: MsgFetchLists})
		c.Store.Dispatch(SetLoading{Loading: false})
		return err
	}
	c.Store.Dispatch(ListsLoaded{Lists: lists})
	if len(lists) == 0 {
		c.Store.Dispatch(SetLoading{Loading: false})
		return nil
	}
	return c.SelectList(ctx, lists[0].ID)
}

// SelectList makes id the active list and loads its tasks.
func (c *Controller) SelectList(ctx context.Context, id string) error {
	c.Store.Dispatch(SelectList{ID: id})
	return c.LoadTasks(ctx, id)
}

// LoadTasks fetches one list's tasks. The result is discarded if another
// list was selected meanwhile; the request itself is not cancelled.
func (c *Controller) LoadTasks(ctx context.Context, listID string) error {
	c.Store.Dispatch(SetLoading{Loading: true})
	c.Store.Dispatch(SetError{})
	defer c.Store.Dispatch(SetLoading{Loading: false})

	tasks, err := c.API.Tasks(ctx, listID)
	if err != nil {
		c.Store.Dispatch(SetError{Message: MsgFetchTasks})
		return err
	}
	c.Store.Dispatch(TasksLoaded{ListID: listID, Tasks: tasks})
	return nil
}

// AddList appends a temporary list, then swaps in the server record and
// selects it. A blank name is ignored.
func (c *Controller) AddList(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	tempID := c.NewID()
	c.Store.Dispatch(AddList{List: List{ID: tempID, Name: name}})

	created, err := c.API.CreateList(ctx, name)
	if err != nil {
		c.Store.Dispatch(SetError{Message: MsgAddList})
		c.Store.Dispatch(RollbackList{TempID: tempID})
		return err
	}
	c.Store.Dispatch(ReconcileList{TempID: tempID, List: *created})
	return c.SelectList(ctx, created.ID)
}

// DeleteList drops the list locally, clearing the selection when it was
// active. On failure the previous lists, selection and tasks come back as they were.
func (c *Controller) DeleteList(ctx context.Context, id string) error {
	if IsTemp(id) {
		return ErrPending
	}
	snap := c.Store.snapshot()
	c.Store.Dispatch(RemoveList{ID: id})

	if err := c.API.DeleteList(ctx, id); err != nil {
		c.Store.Dispatch(RestoreSnapshot{Snapshot: snap})
		c.Store.Dispatch(SetError{Message: MsgDeleteList})
		return err
	}
	return nil
}

// AddTask prepends a temporary task to the selected list, then swaps in the
// server record.
func (c *Controller) AddTask(ctx context.Context, title string) error {
	listID := c.Store.State().SelectedListID
	if strings.TrimSpace(title) == "" {
		return nil
	}
	if listID == "" {
		return ErrNoListSelected
	}
	if IsTemp(listID) {
		return ErrPending
	}
	tempID := c.NewID()
	c.Store.Dispatch(AddTask{Task: Task{ID: tempID, Title: title, ListID: listID, Subtasks: []Subtask{}}})

	created, err := c.API.CreateTask(ctx, NewTask{Title: title, ListID: listID})
	if err != nil {
		c.Store.Dispatch(SetError{Message: MsgAddTask})
		c.Store.Dispatch(RollbackTask{TempID: tempID})
		return err
	}
	c.Store.Dispatch(ReconcileTask{TempID: tempID, Task: *created})
	return nil
}

// ToggleTask flips completed locally and restores it if the server refuses.
func (c *Controller) ToggleTask(ctx context.Context, id string) error {
	t, ok := c.task(id)
	if !ok {
		return ErrNoSuchTask
	}
	done := !t.Completed
	return c.UpdateTask(ctx, TaskUpdate{ID: id, Completed: &done})
}

// UpdateTask applies upd locally, sends it, and on failure restores the
// previous values of exactly the fields upd touched.
func (c *Controller) UpdateTask(ctx context.Context, upd TaskUpdate) error {
	if IsTemp(upd.ID) {
		return ErrPending
	}
	prev, ok := c.task(upd.ID)
	if !ok {
		return ErrNoSuchTask
	}
	c.Store.Dispatch(PatchTask{Update: upd})

	if _, err := c.API.UpdateTask(ctx, upd); err != nil {
		c.Store.Dispatch(SetError{Message: MsgUpdateTask})
		c.Store.Dispatch(PatchTask{Update: upd.inverse(prev)})
		return err
	}
	return nil
}

// DeleteTask removes the task locally. On failure it re-fetches the selected
// list instead of restoring the single item.
func (c *Controller) DeleteTask(ctx context.Context, id string) error {
	if IsTemp(id) {
		return ErrPending
	}
	c.Store.Dispatch(RemoveTask{ID: id})

	if err := c.API.DeleteTask(ctx, id); err != nil {
		c.Store.Dispatch(SetError{Message: MsgDeleteTask})
		if listID := c.Store.State().SelectedListID; listID != "" {
			if ferr := c.LoadTasks(ctx, listID); ferr != nil {
				return errors.Join(err, ferr)
			}
			// the re-fetch clears the message; the delete still failed
			c.Store.Dispatch(SetError{Message: MsgDeleteTask})
		}
		return err
	}
	return nil
}

// Subtask edits rewrite the task's whole sequence through UpdateTask.

func (c *Controller) AddSubtask(ctx context.Context, taskID, title string) error {
	return c.editSubtasks(ctx, taskID, func(s []Subtask) ([]Subtask, error) { return AddSubtask(s, title) })
}

func (c *Controller) ToggleSubtask(ctx context.Context, taskID string, i int) error {
	return c.editSubtasks(ctx, taskID, func(s []Subtask) ([]Subtask, error) { return ToggleSubtask(s, i) })
}

func (c *Controller) RenameSubtask(ctx context.Context, taskID string, i int, title string) error {
	return c.editSubtasks(ctx, taskID, func(s []Subtask) ([]Subtask, error) { return RenameSubtask(s, i, title) })
}

func (c *Controller) RemoveSubtask(ctx context.Context, taskID string, i int) error {
	return c.editSubtasks(ctx, taskID, func(s []Subtask) ([]Subtask, error) { return RemoveSubtask(s, i) })
}

func (c *Controller) editSubtasks(ctx context.Context, taskID string, fn func([]Subtask) ([]Subtask, error)) error {
	t, ok := c.task(taskID)
	if !ok {
		return ErrNoSuchTask
	}
	subs, err := fn(t.Subtasks)
	if err != nil {
		return err
	}
	return c.UpdateTask(ctx, TaskUpdate{ID: taskID, Subtasks: &subs})
}

func (c *Controller) task(id string) (Task, bool) {
	for _, t := range c.Store.State().Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
