package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
)

// TaskRepository stores tasks. Every owner-facing read and write is scoped by owner.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	// List returns the owner's tasks newest created first, restricted to one
	// list when listID is non-nil.
	List(ctx context.Context, userID string, listID *string) ([]entity.Task, error)
	GetByID(ctx context.Context, userID, id string) (*entity.Task, error)
	// Update atomically merges the patch into the task matching id and owner
	// and returns the stored result.
	Update(ctx context.Context, userID, id string, patch entity.TaskPatch) (*entity.Task, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteByList(ctx context.Context, userID, listID string) (int64, error)

	// DeleteOrphans removes tasks whose list no longer exists for their owner.
	DeleteOrphans(ctx context.Context) (int64, error)
	// ListDueBetween returns incomplete tasks of every owner due in [from, to).
	ListDueBetween(ctx context.Context, from, to time.Time) ([]entity.Task, error)
}
