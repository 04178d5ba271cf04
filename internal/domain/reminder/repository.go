package reminder

import (
	"context"
)

// Repository defines the operations for persisting and retrieving reminders.
type Repository interface {
	// List returns every reminder in arrival order (created_at, then id).
	List(ctx context.Context) ([]*Reminder, error)
	GetByID(ctx context.Context, id string) (*Reminder, error)
	Create(ctx context.Context, r *Reminder) error
	Update(ctx context.Context, r *Reminder) error // Replaces meridiem, hour and minute
	Delete(ctx context.Context, id string) error
}
