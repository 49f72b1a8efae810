package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, name, image_url, google_id, last_login_at, created_at, updated_at`

func (r *UserRepository) UpsertByEmail(ctx context.Context, u *entity.User) error {
	if u.LastLoginAt.IsZero() {
		u.LastLoginAt = time.Now().UTC()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, image_url, google_id, last_login_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
		    image_url = EXCLUDED.image_url,
		    google_id = EXCLUDED.google_id,
		    last_login_at = EXCLUDED.last_login_at,
		    updated_at = now()
		RETURNING id, created_at, updated_at
	`, u.Email, u.Name, u.ImageURL, u.GoogleID, u.LastLoginAt)

	return row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if _, err := parseID(id); err != nil {
		return nil, repository.ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) UpdateImage(ctx context.Context, id, imageURL string) error {
	if _, err := parseID(id); err != nil {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `UPDATE users SET image_url = $1, updated_at = now() WHERE id = $2`, imageURL, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u := &entity.User{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.ImageURL, &u.GoogleID, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
