package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"oneday/internal/domain/reminder"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrReminderNotFound = fmt.Errorf("reminder not found")

type reminderRow struct {
	ID        string    `db:"id"`
	Meridiem  string    `db:"meridiem"`
	Hour      int       `db:"hour"`
	Minute    int       `db:"minute"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row reminderRow) toDomain() *reminder.Reminder {
	return &reminder.Reminder{
		ID: row.ID,
		Time: reminder.Time{
			Meridiem: reminder.Meridiem(row.Meridiem),
			Hour:     row.Hour,
			Minute:   row.Minute,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

const reminderColumns = `id, meridiem, hour, minute, created_at, updated_at`

type SQLReminderRepository struct {
	db  *sqlx.DB
	now clock
}

func NewSQLReminderRepository(db *sqlx.DB) *SQLReminderRepository {
	return &SQLReminderRepository{db: db, now: utcNow}
}

// List returns reminders in arrival order: created_at, then insertion sequence.
func (r *SQLReminderRepository) List(ctx context.Context) ([]*reminder.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders ORDER BY created_at, seq`
	var rows []reminderRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error listing reminders: %w", err)
	}
	reminders := make([]*reminder.Reminder, 0, len(rows))
	for _, row := range rows {
		reminders = append(reminders, row.toDomain())
	}
	return reminders, nil
}

func (r *SQLReminderRepository) GetByID(ctx context.Context, id string) (*reminder.Reminder, error) {
	query := r.db.Rebind(`SELECT ` + reminderColumns + ` FROM reminders WHERE id = ?`)
	var row reminderRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("error getting reminder by ID: %w", err)
	}
	return row.toDomain(), nil
}

// Create inserts the reminder unconditionally. Duplicate checks belong to the caller.
func (r *SQLReminderRepository) Create(ctx context.Context, rem *reminder.Reminder) error {
	if rem.ID == "" {
		rem.ID = uuid.NewString()
	}
	now := r.now()
	query := r.db.Rebind(`INSERT INTO reminders (id, seq, meridiem, hour, minute, created_at, updated_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM reminders), ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, rem.ID, string(rem.Time.Meridiem), rem.Time.Hour, rem.Time.Minute, now, now)
	if err != nil {
		return fmt.Errorf("error creating reminder: %w", err)
	}
	rem.CreatedAt, rem.UpdatedAt = now, now
	return nil
}

func (r *SQLReminderRepository) Update(ctx context.Context, rem *reminder.Reminder) error {
	now := r.now()
	query := r.db.Rebind(`UPDATE reminders SET meridiem = ?, hour = ?, minute = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, string(rem.Time.Meridiem), rem.Time.Hour, rem.Time.Minute, now, rem.ID)
	if err != nil {
		return fmt.Errorf("error updating reminder: %w", err)
	}
	if err := checkAffected(res, ErrReminderNotFound); err != nil {
		return err
	}
	rem.UpdatedAt = now
	return nil
}

func (r *SQLReminderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM reminders WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("error deleting reminder: %w", err)
	}
	return checkAffected(res, ErrReminderNotFound)
}
