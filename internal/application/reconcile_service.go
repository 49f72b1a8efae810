package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-ddd-todo/internal/domain/repository"
)

// ReconcileService repairs what a non-transactional list delete may leave behind.
type ReconcileService struct {
	Tasks  repo.TaskRepository
	Index  TaskIndexer
	Logger *logrus.Logger
}

func NewReconcileService(tasks repo.TaskRepository, index TaskIndexer, logger *logrus.Logger) *ReconcileService {
	return &ReconcileService{Tasks: tasks, Index: index, Logger: logger}
}

// DecodeEvent parses one message body from the events queue.
func DecodeEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("decode event: missing type")
	}
	return ev, nil
}

// HandleEvent re-runs the owner-scoped cascade for deleted lists. Other
// event types are ignored. It is safe to run more than once.
func (s *ReconcileService) HandleEvent(ctx context.Context, ev Event) error {
	if ev.Type != EventListDeleted {
		return nil
	}
	if ev.UserID == "" || ev.ListID == "" {
		return fmt.Errorf("list.deleted event without user or list id")
	}
	n, err := s.Tasks.DeleteByList(ctx, ev.UserID, ev.ListID)
	if err != nil {
		return fmt.Errorf("cascade list %s: %w", ev.ListID, err)
	}
	if s.Index != nil {
		if err := s.Index.DeleteList(ctx, ev.UserID, ev.ListID); err != nil {
			return fmt.Errorf("index cleanup list %s: %w", ev.ListID, err)
		}
	}
	if n > 0 && s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": ev.UserID, "list_id": ev.ListID, "deleted": n}).Info("removed leftover tasks of deleted list")
	}
	return nil
}

// SweepOrphans removes tasks whose list no longer exists for their owner.
func (s *ReconcileService) SweepOrphans(ctx context.Context) (int64, error) {
	n, err := s.Tasks.DeleteOrphans(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep orphans: %w", err)
	}
	if n > 0 && s.Logger != nil {
		s.Logger.WithField("deleted", n).Info("orphan tasks removed")
	}
	return n, nil
}
