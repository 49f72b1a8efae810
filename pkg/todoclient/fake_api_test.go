package todoclient

import (
	"context"
	"errors"
	"sync"
)

var errServer = errors.New("server unavailable")

// fakeAPI answers from canned data; any *Err field makes that call fail.
type fakeAPI struct {
	mu sync.Mutex

	lists    []List
	tasks    map[string][]Task
	nextTask string
	nextList string

	ListsErr, CreateListErr, DeleteListErr error
	TasksErr, CreateTaskErr, UpdateErr     error
	DeleteTaskErr                          error

	// gate, when set for a list id, blocks Tasks until closed
	gate map[string]chan struct{}

	updates []TaskUpdate
	fetches []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{tasks: map[string][]Task{}, gate: map[string]chan struct{}{}}
}

func (f *fakeAPI) Lists(context.Context) ([]List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListsErr != nil {
		return nil, f.ListsErr
	}
	return append([]List{}, f.lists...), nil
}

func (f *fakeAPI) CreateList(_ context.Context, name string) (*List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateListErr != nil {
		return nil, f.CreateListErr
	}
	l := List{ID: f.nextList, Name: name}
	f.lists = append(f.lists, l)
	return &l, nil
}

func (f *fakeAPI) DeleteList(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.DeleteListErr
}

func (f *fakeAPI) Tasks(_ context.Context, listID string) ([]Task, error) {
	f.mu.Lock()
	gate := f.gate[listID]
	f.fetches = append(f.fetches, listID)
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TasksErr != nil {
		return nil, f.TasksErr
	}
	return append([]Task{}, f.tasks[listID]...), nil
}

func (f *fakeAPI) CreateTask(_ context.Context, in NewTask) (*Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateTaskErr != nil {
		return nil, f.CreateTaskErr
	}
	t := Task{ID: f.nextTask, Title: in.Title, ListID: in.ListID, Subtasks: []Subtask{}}
	f.tasks[in.ListID] = append([]Task{t}, f.tasks[in.ListID]...)
	return &t, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, upd TaskUpdate) (*Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, upd)
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	return &Task{ID: upd.ID}, nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.DeleteTaskErr
}
