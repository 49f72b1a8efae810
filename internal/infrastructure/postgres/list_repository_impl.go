package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/internal/domain/repository"
)

type ListRepository struct {
	pool *pgxpool.Pool
}

func NewListRepository(pool *pgxpool.Pool) *ListRepository {
	return &ListRepository{pool: pool}
}

func (r *ListRepository) Create(ctx context.Context, l *entity.List) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lists (user_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, l.UserID, l.Name)

	return row.Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *ListRepository) ListByUser(ctx context.Context, userID string) ([]entity.List, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, created_at, updated_at
		FROM lists
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.List, 0)
	for rows.Next() {
		var l entity.List
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *ListRepository) GetByID(ctx context.Context, userID, id string) (*entity.List, error) {
	if _, err := parseID(id); err != nil {
		return nil, repository.ErrNotFound
	}
	l := &entity.List{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, created_at, updated_at
		FROM lists
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// DeleteCascade removes the list and its tasks in a single transaction, so a
// failure between the two statements cannot leave orphaned tasks behind.
func (r *ListRepository) DeleteCascade(ctx context.Context, userID, id string) (int64, error) {
	if _, err := parseID(id); err != nil {
		return 0, repository.ErrNotFound
	}
	var deleted int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		res, err := tx.Exec(ctx, `DELETE FROM lists WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return fmt.Errorf("delete list: %w", err)
		}
		if res.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		res, err = tx.Exec(ctx, `DELETE FROM tasks WHERE list_id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return fmt.Errorf("delete list tasks: %w", err)
		}
		deleted = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

var _ repository.ListRepository = (*ListRepository)(nil)
