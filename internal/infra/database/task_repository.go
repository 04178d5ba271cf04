package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"oneday/internal/domain/task"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrTaskNotFound = fmt.Errorf("task not found")

type taskRow struct {
	ID          string       `db:"id"`
	CategoryID  string       `db:"category_id"`
	Title       string       `db:"title"`
	IsCompleted bool         `db:"is_completed"`
	CompletedAt sql.NullTime `db:"completed_at"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

func (row taskRow) toDomain() *task.Task {
	return &task.Task{
		ID:          row.ID,
		CategoryID:  row.CategoryID,
		Title:       row.Title,
		IsCompleted: row.IsCompleted,
		CompletedAt: row.CompletedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

const taskColumns = `id, category_id, title, is_completed, completed_at, created_at, updated_at`

type SQLTaskRepository struct {
	db  *sqlx.DB
	now clock
}

func NewSQLTaskRepository(db *sqlx.DB) *SQLTaskRepository {
	return &SQLTaskRepository{db: db, now: utcNow}
}

// Create inserts the task. A missing category yields ErrCategoryNotFound.
func (r *SQLTaskRepository) Create(ctx context.Context, t *task.Task) error {
	var exists int
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(`SELECT COUNT(*) FROM categories WHERE id = ?`), t.CategoryID)
	if err != nil {
		return fmt.Errorf("error checking task category: %w", err)
	}
	if exists == 0 {
		return ErrCategoryNotFound
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := r.now()
	query := r.db.Rebind(`INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, query, t.ID, t.CategoryID, t.Title, t.IsCompleted, t.CompletedAt, now, now)
	if err != nil {
		return fmt.Errorf("error creating task: %w", err)
	}
	t.CreatedAt, t.UpdatedAt = now, now
	return nil
}

func (r *SQLTaskRepository) GetByID(ctx context.Context, id string) (*task.Task, error) {
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	var row taskRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("error getting task by ID: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SQLTaskRepository) Update(ctx context.Context, t *task.Task) error {
	now := r.now()
	query := r.db.Rebind(`UPDATE tasks SET title = ?, is_completed = ?, completed_at = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, t.Title, t.IsCompleted, t.CompletedAt, now, t.ID)
	if err != nil {
		return fmt.Errorf("error updating task: %w", err)
	}
	if err := checkAffected(res, ErrTaskNotFound); err != nil {
		return err
	}
	t.UpdatedAt = now
	return nil
}

func (r *SQLTaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("error deleting task: %w", err)
	}
	return checkAffected(res, ErrTaskNotFound)
}

func (r *SQLTaskRepository) ListByCategory(ctx context.Context, categoryID string) ([]*task.Task, error) {
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE category_id = ? ORDER BY created_at, id`)
	return r.list(ctx, "error listing tasks by category", query, categoryID)
}

func (r *SQLTaskRepository) ListAll(ctx context.Context) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at, id`
	return r.list(ctx, "error listing tasks", query)
}

func (r *SQLTaskRepository) ListCompleted(ctx context.Context) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE is_completed = TRUE ORDER BY completed_at DESC, id`
	return r.list(ctx, "error listing completed tasks", query)
}

func (r *SQLTaskRepository) list(ctx context.Context, errMsg, query string, args ...interface{}) ([]*task.Task, error) {
	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	tasks := make([]*task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toDomain())
	}
	return tasks, nil
}
