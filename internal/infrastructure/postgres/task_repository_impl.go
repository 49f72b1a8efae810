package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/internal/domain/repository"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `id, user_id, list_id, title, completed, due_date, description, subtasks, created_at, updated_at`

// subtaskRow is the JSONB shape of one embedded subtask.
type subtaskRow struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func encodeSubtasks(subs []entity.Subtask) ([]byte, error) {
	rows := make([]subtaskRow, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, subtaskRow{Title: s.Title, Completed: s.Completed})
	}
	return json.Marshal(rows)
}

func decodeSubtasks(b []byte) ([]entity.Subtask, error) {
	var rows []subtaskRow
	if len(b) > 0 {
		if err := json.Unmarshal(b, &rows); err != nil {
			return nil, fmt.Errorf("decode subtasks: %w", err)
		}
	}
	out := make([]entity.Subtask, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.Subtask{Title: r.Title, Completed: r.Completed})
	}
	return out, nil
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	t := &entity.Task{}
	var subs []byte
	if err := row.Scan(&t.ID, &t.UserID, &t.ListID, &t.Title, &t.Completed, &t.DueDate, &t.Description, &subs, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	decoded, err := decodeSubtasks(subs)
	if err != nil {
		return nil, err
	}
	t.Subtasks = decoded
	return t, nil
}

func collectTasks(rows pgx.Rows) ([]entity.Task, error) {
	defer rows.Close()
	out := make([]entity.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	if _, err := parseID(t.ListID); err != nil {
		return err
	}
	subs, err := encodeSubtasks(t.Subtasks)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (user_id, list_id, title, completed, due_date, description, subtasks)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, t.UserID, t.ListID, t.Title, t.Completed, t.DueDate, t.Description, subs)

	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepository) List(ctx context.Context, userID string, listID *string) ([]entity.Task, error) {
	if listID == nil {
		rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`, userID)
		if err != nil {
			return nil, err
		}
		return collectTasks(rows)
	}
	if _, err := parseID(*listID); err != nil {
		return []entity.Task{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1 AND list_id = $2
		ORDER BY created_at DESC
	`, userID, *listID)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *TaskRepository) GetByID(ctx context.Context, userID, id string) (*entity.Task, error) {
	if _, err := parseID(id); err != nil {
		return nil, repository.ErrNotFound
	}
	t, err := scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// buildTaskUpdate renders the SET clause for the supplied patch slots.
// Placeholders start at $1; the caller appends id and owner after args.
func buildTaskUpdate(p entity.TaskPatch, now time.Time) (string, []any, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Completed != nil {
		add("completed", *p.Completed)
	}
	if p.DueDate.Set {
		add("due_date", p.DueDate.Value)
	}
	if p.Description.Set {
		add("description", p.Description.Value)
	}
	if p.Subtasks != nil {
		b, err := encodeSubtasks(*p.Subtasks)
		if err != nil {
			return "", nil, err
		}
		add("subtasks", b)
	}
	add("updated_at", now)
	return strings.Join(sets, ", "), args, nil
}

func (r *TaskRepository) Update(ctx context.Context, userID, id string, patch entity.TaskPatch) (*entity.Task, error) {
	if _, err := parseID(id); err != nil {
		return nil, repository.ErrNotFound
	}
	sets, args, err := buildTaskUpdate(patch, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	args = append(args, id, userID)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d RETURNING `+taskColumns, sets, len(args)-1, len(args))

	t, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := parseID(id); err != nil {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteByList(ctx context.Context, userID, listID string) (int64, error) {
	if _, err := parseID(listID); err != nil {
		return 0, nil
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE list_id = $1 AND user_id = $2`, listID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *TaskRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM tasks t
		WHERE NOT EXISTS (
			SELECT 1 FROM lists l WHERE l.id = t.list_id AND l.user_id = t.user_id
		)
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *TaskRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]entity.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE completed = false AND due_date >= $1 AND due_date < $2
		ORDER BY user_id, due_date
	`, from, to)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
