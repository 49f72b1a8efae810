package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-todo/internal/domain/repository"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

// TaskService owns task CRUD and search.
type TaskService struct {
	Tasks  repo.TaskRepository
	Lists  repo.ListRepository
	Index  TaskIndexer
	Events EventPublisher
	Logger *logrus.Logger

	// EnforceListOwnership rejects a list id the caller does not own.
	// Off by default, where any syntactically valid list id is accepted.
	EnforceListOwnership bool
}

func NewTaskService(tasks repo.TaskRepository, lists repo.ListRepository, index TaskIndexer, events EventPublisher, logger *logrus.Logger, enforceListOwnership bool) *TaskService {
	return &TaskService{
		Tasks:                tasks,
		Lists:                lists,
		Index:                index,
		Events:               events,
		Logger:               logger,
		EnforceListOwnership: enforceListOwnership,
	}
}

type CreateTaskInput struct {
	Title       string
	ListID      string
	DueDate     *time.Time
	Description *string
	Subtasks    []entity.Subtask
}

// List returns the owner's tasks newest first, optionally for a single list.
func (s *TaskService) List(ctx context.Context, owner string, listID *string) ([]entity.Task, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	return s.Tasks.List(ctx, owner, listID)
}

func (s *TaskService) Create(ctx context.Context, owner string, in CreateTaskInput) (*entity.Task, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	t := &entity.Task{
		Title:       in.Title,
		DueDate:     in.DueDate,
		Description: in.Description,
		Subtasks:    in.Subtasks,
		UserID:      owner,
		ListID:      strings.TrimSpace(in.ListID),
	}
	if err := t.Normalize(); err != nil {
		return nil, err
	}
	if t.ListID == "" {
		return nil, &ValidationError{Field: "listId", Message: "is required"}
	}
	if s.EnforceListOwnership {
		if _, err := s.Lists.GetByID(ctx, owner, t.ListID); err != nil {
			return nil, notFound(err)
		}
	}
	if err := s.Tasks.Create(ctx, t); err != nil {
		if errors.Is(err, repo.ErrInvalidID) {
			return nil, &ValidationError{Field: "listId", Message: "is not a valid id"}
		}
		return nil, err
	}
	s.index(ctx, t)
	publish(ctx, s.Events, s.Logger, Event{Type: EventTaskCreated, UserID: owner, ListID: t.ListID, TaskID: t.ID})
	return t, nil
}

// Update merges the supplied patch slots into the caller's task.
// An empty patch returns the stored record unchanged.
func (s *TaskService) Update(ctx context.Context, owner, id string, patch entity.TaskPatch) (*entity.Task, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	if err := patch.Normalize(); err != nil {
		return nil, err
	}
	if patch.Empty() {
		t, err := s.Tasks.GetByID(ctx, owner, id)
		if err != nil {
			return nil, notFound(err)
		}
		return t, nil
	}
	t, err := s.Tasks.Update(ctx, owner, id, patch)
	if err != nil {
		return nil, notFound(err)
	}
	s.index(ctx, t)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, owner, id string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	if err := s.Tasks.Delete(ctx, owner, id); err != nil {
		return notFound(err)
	}
	if s.Index != nil {
		if err := s.Index.DeleteTask(ctx, owner, id); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", id).Warn("search index delete failed")
		}
	}
	publish(ctx, s.Events, s.Logger, Event{Type: EventTaskDeleted, UserID: owner, TaskID: id})
	return nil
}

// Search runs a full-text query restricted to the caller's tasks.
func (s *TaskService) Search(ctx context.Context, owner, q string, size int) ([]TaskHit, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	q = strings.TrimSpace(q)
	if s.Index == nil || q == "" {
		return []TaskHit{}, nil
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	return s.Index.Search(ctx, owner, q, size)
}

func (s *TaskService) index(ctx context.Context, t *entity.Task) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexTask(ctx, *t); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("task_id", t.ID).Warn("search index update failed")
	}
}
