package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
)

// ListRepository stores lists. Every read and write is scoped by owner.
type ListRepository interface {
	Create(ctx context.Context, l *entity.List) error
	// ListByUser returns the owner's lists, newest created first.
	ListByUser(ctx context.Context, userID string) ([]entity.List, error)
	GetByID(ctx context.Context, userID, id string) (*entity.List, error)
	// DeleteCascade removes the list and every task of the same owner that
	// references it. It returns the number of tasks removed, or ErrNotFound
	// when no list matches both id and owner.
	DeleteCascade(ctx context.Context, userID, id string) (int64, error)
}
