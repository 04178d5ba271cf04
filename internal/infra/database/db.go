package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver, registered as "sqlite"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute
)

func init() {
	// Queries are written with '?' and rebound per driver.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id         VARCHAR(36) PRIMARY KEY,
		title      TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id           VARCHAR(36) PRIMARY KEY,
		category_id  VARCHAR(36) NOT NULL REFERENCES categories(id),
		title        TEXT NOT NULL,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at TIMESTAMP NULL,
		created_at   TIMESTAMP NOT NULL,
		updated_at   TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_category_id ON tasks (category_id)`,
	// No unique key on the time: unchecked inserts are allowed and cleaned up by the sweep.
	// seq records insertion order for rows sharing a created_at.
	`CREATE TABLE IF NOT EXISTS reminders (
		id         VARCHAR(36) PRIMARY KEY,
		seq        BIGINT NOT NULL,
		meridiem   VARCHAR(2) NOT NULL,
		hour       SMALLINT NOT NULL,
		minute     SMALLINT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

// Open connects to the store, pings it and applies the schema.
// driver is "postgres" or "sqlite".
func Open(ctx context.Context, driver, dataSourceName string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if driver == "sqlite" {
		// A single writer avoids SQLITE_BUSY on the local file.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(defaultMaxOpenConns)
		db.SetMaxIdleConns(defaultMaxIdleConns)
		db.SetConnMaxLifetime(defaultConnMaxLifetime)
		db.SetConnMaxIdleTime(defaultConnMaxIdleTime)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close() // Close the connection if ping fails
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates missing tables and indexes.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// clock returns the timestamp repositories stamp on rows.
type clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

func checkAffected(res interface{ RowsAffected() (int64, error) }, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
