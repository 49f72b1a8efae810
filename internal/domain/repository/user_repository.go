package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// UpsertByEmail creates the user or refreshes name, image, provider id and
	// last login of the existing one. ID and timestamps are written back into u.
	UpsertByEmail(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateImage(ctx context.Context, id, imageURL string) error
}
