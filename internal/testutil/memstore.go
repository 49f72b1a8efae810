// Package testutil provides in-memory fakes of the repositories and ports.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/internal/domain/repository"
)

// MemStore is a shared in-memory database behind the fake repositories.
type MemStore struct {
	mu    sync.Mutex
	users map[string]entity.User
	lists map[string]entity.List
	tasks map[string]entity.Task
	clock time.Time

	calls int
	// Err, when set, is returned by every repository call.
	Err error
}

func NewMemStore() *MemStore {
	return &MemStore{
		users: make(map[string]entity.User),
		lists: make(map[string]entity.List),
		tasks: make(map[string]entity.Task),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Calls reports how many repository calls reached the store.
func (m *MemStore) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MemStore) Lists() *ListRepo { return &ListRepo{m: m} }
func (m *MemStore) Tasks() *TaskRepo { return &TaskRepo{m: m} }
func (m *MemStore) Users() *UserRepo { return &UserRepo{m: m} }

// TaskCount counts stored tasks across all owners.
func (m *MemStore) TaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// ListCount counts stored lists across all owners.
func (m *MemStore) ListCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lists)
}

// PutTask stores t as is, bypassing ownership checks. Used to stage orphans.
func (m *MemStore) PutTask(t entity.Task) entity.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.tick()
		t.UpdatedAt = t.CreatedAt
	}
	m.tasks[t.ID] = cloneTask(t)
	return t
}

// tick returns a strictly increasing timestamp so newest-first ordering is stable.
func (m *MemStore) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

// hit records a call; the caller holds m.mu.
func (m *MemStore) hit() error {
	m.calls++
	return m.Err
}

func cloneTask(t entity.Task) entity.Task {
	t.Subtasks = append([]entity.Subtask{}, t.Subtasks...)
	return t
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ---- lists ----

type ListRepo struct{ m *MemStore }

func (r *ListRepo) Create(_ context.Context, l *entity.List) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return err
	}
	l.ID = uuid.NewString()
	l.CreatedAt = r.m.tick()
	l.UpdatedAt = l.CreatedAt
	r.m.lists[l.ID] = *l
	return nil
}

func (r *ListRepo) ListByUser(_ context.Context, userID string) ([]entity.List, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return nil, err
	}
	out := make([]entity.List, 0)
	for _, l := range r.m.lists {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ListRepo) GetByID(_ context.Context, userID, id string) (*entity.List, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return nil, err
	}
	l, ok := r.m.lists[id]
	if !ok || l.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (r *ListRepo) DeleteCascade(_ context.Context, userID, id string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return 0, err
	}
	l, ok := r.m.lists[id]
	if !ok || l.UserID != userID {
		return 0, repository.ErrNotFound
	}
	delete(r.m.lists, id)
	var n int64
	for tid, t := range r.m.tasks {
		if t.ListID == id && t.UserID == userID {
			delete(r.m.tasks, tid)
			n++
		}
	}
	return n, nil
}

// ---- tasks ----

type TaskRepo struct{ m *MemStore }

func (r *TaskRepo) Create(_ context.Context, t *entity.Task) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return err
	}
	if !validID(t.ListID) {
		return repository.ErrInvalidID
	}
	t.ID = uuid.NewString()
	t.CreatedAt = r.m.tick()
	t.UpdatedAt = t.CreatedAt
	r.m.tasks[t.ID] = cloneTask(*t)
	return nil
}

func (r *TaskRepo) List(_ context.Context, userID string, listID *string) ([]entity.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return nil, err
	}
	out := make([]entity.Task, 0)
	for _, t := range r.m.tasks {
		if t.UserID != userID || (listID != nil && t.ListID != *listID) {
			continue
		}
		out = append(out, cloneTask(t))
	}
	sortNewest(out)
	return out, nil
}

func (r *TaskRepo) GetByID(_ context.Context, userID, id string) (*entity.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return nil, err
	}
	t, ok := r.m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	t = cloneTask(t)
	return &t, nil
}

func (r *TaskRepo) Update(_ context.Context, userID, id string, patch entity.TaskPatch) (*entity.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return nil, err
	}
	t, ok := r.m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&t)
	t.UpdatedAt = r.m.tick()
	r.m.tasks[id] = cloneTask(t)
	return &t, nil
}

func (r *TaskRepo) Delete(_ context.Context, userID, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return err
	}
	t, ok := r.m.tasks[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.m.tasks, id)
	return nil
}

func (r *TaskRepo) DeleteByList(_ context.Context, userID, listID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return 0, err
	}
	var n int64
	for id, t := range r.m.tasks {
		if t.UserID == userID && t.ListID == listID {
			delete(r.m.tasks, id)
			n++
		}
	}
	return n, nil
}

func (r *TaskRepo) DeleteOrphans(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return 0, err
	}
	var n int64
	for id, t := range r.m.tasks {
		l, ok := r.m.lists[t.ListID]
		if !ok || l.UserID != t.UserID {
			delete(r.m.tasks, id)
			n++
		}
	}
	return n, nil
}

func (r *TaskRepo) ListDueBetween(_ context.Context, from, to time.Time) ([]entity.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return nil, err
	}
	out := make([]entity.Task, 0)
	for _, t := range r.m.tasks {
		if t.Completed || t.DueDate == nil || t.DueDate.Before(from) || !t.DueDate.Before(to) {
			continue
		}
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].DueDate.Before(*out[j].DueDate)
	})
	return out, nil
}

func sortNewest(ts []entity.Task) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].CreatedAt.After(ts[j].CreatedAt) })
}

// ---- users ----

type UserRepo struct{ m *MemStore }

func (r *UserRepo) UpsertByEmail(_ context.Context, u *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return err
	}
	now := r.m.tick()
	for id, existing := range r.m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			existing.Name = u.Name
			existing.ImageURL = u.ImageURL
			existing.GoogleID = u.GoogleID
			existing.LastLoginAt = u.LastLoginAt
			existing.UpdatedAt = now
			r.m.users[id] = existing
			*u = existing
			return nil
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.m.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return nil, err
	}
	u, ok := r.m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return nil, err
	}
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) UpdateImage(_ context.Context, id, imageURL string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit(); err != nil {
		return err
	}
	u, ok := r.m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ImageURL = imageURL
	r.m.users[id] = u
	return nil
}

var (
	_ repository.ListRepository = (*ListRepo)(nil)
	_ repository.TaskRepository = (*TaskRepo)(nil)
	_ repository.UserRepository = (*UserRepo)(nil)
)
