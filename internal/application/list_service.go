package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-todo/internal/domain/repository"
)

// ListService owns list CRUD. Index and Events are optional.
type ListService struct {
	Lists  repo.ListRepository
	Index  TaskIndexer
	Events EventPublisher
	Logger *logrus.Logger
}

func NewListService(lists repo.ListRepository, index TaskIndexer, events EventPublisher, logger *logrus.Logger) *ListService {
	return &ListService{Lists: lists, Index: index, Events: events, Logger: logger}
}

// DeleteListResult reports what a cascading list delete removed.
type DeleteListResult struct {
	ListID       string `json:"list_id"`
	DeletedTasks int64  `json:"deleted_tasks"`
}

// List returns the owner's lists, newest first.
func (s *ListService) List(ctx context.Context, owner string) ([]entity.List, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	return s.Lists.ListByUser(ctx, owner)
}

func (s *ListService) Create(ctx context.Context, owner, name string) (*entity.List, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	l := &entity.List{Name: name, UserID: owner}
	if err := l.Normalize(); err != nil {
		return nil, err
	}
	if err := s.Lists.Create(ctx, l); err != nil {
		return nil, err
	}
	publish(ctx, s.Events, s.Logger, Event{Type: EventListCreated, UserID: owner, ListID: l.ID})
	return l, nil
}

// Delete removes the list and every task of the owner that references it.
// A list owned by someone else is reported exactly like a missing one.
func (s *ListService) Delete(ctx context.Context, owner, id string) (DeleteListResult, error) {
	if err := requireOwner(owner); err != nil {
		return DeleteListResult{}, err
	}
	n, err := s.Lists.DeleteCascade(ctx, owner, id)
	if err != nil {
		return DeleteListResult{}, notFound(err)
	}
	if s.Index != nil {
		if err := s.Index.DeleteList(ctx, owner, id); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("list_id", id).Warn("search index cleanup failed")
		}
	}
	publish(ctx, s.Events, s.Logger, Event{Type: EventListDeleted, UserID: owner, ListID: id, Count: n})
	return DeleteListResult{ListID: id, DeletedTasks: n}, nil
}
