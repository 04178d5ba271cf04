package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"oneday/internal/domain/category"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrCategoryNotFound = fmt.Errorf("category not found")

type categoryRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row categoryRow) toDomain() *category.Category {
	return &category.Category{ID: row.ID, Title: row.Title, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}
}

type SQLCategoryRepository struct {
	db  *sqlx.DB
	now clock
}

func NewSQLCategoryRepository(db *sqlx.DB) *SQLCategoryRepository {
	return &SQLCategoryRepository{db: db, now: utcNow}
}

func (r *SQLCategoryRepository) Create(ctx context.Context, c *category.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := r.now()
	query := r.db.Rebind(`INSERT INTO categories (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Title, now, now); err != nil {
		return fmt.Errorf("error creating category: %w", err)
	}
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

func (r *SQLCategoryRepository) GetByID(ctx context.Context, id string) (*category.Category, error) {
	query := r.db.Rebind(`SELECT id, title, created_at, updated_at FROM categories WHERE id = ?`)
	var row categoryRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("error getting category by ID: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SQLCategoryRepository) Update(ctx context.Context, c *category.Category) error {
	now := r.now()
	query := r.db.Rebind(`UPDATE categories SET title = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, c.Title, now, c.ID)
	if err != nil {
		return fmt.Errorf("error updating category: %w", err)
	}
	if err := checkAffected(res, ErrCategoryNotFound); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

// Delete removes the category and its tasks in one transaction.
func (r *SQLCategoryRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting category delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM tasks WHERE category_id = ?`), id); err != nil {
		return fmt.Errorf("error deleting category tasks: %w", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM categories WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("error deleting category: %w", err)
	}
	if err := checkAffected(res, ErrCategoryNotFound); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing category delete: %w", err)
	}
	return nil
}

func (r *SQLCategoryRepository) List(ctx context.Context) ([]*category.Category, error) {
	var rows []categoryRow
	err := r.db.SelectContext(ctx, &rows, `SELECT id, title, created_at, updated_at FROM categories ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	categories := make([]*category.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.toDomain())
	}
	return categories, nil
}
