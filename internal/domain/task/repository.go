package task

import (
	"context"
)

// Repository defines the operations for persisting and retrieving tasks.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, t *Task) error // Title and completion state
	Delete(ctx context.Context, id string) error
	ListByCategory(ctx context.Context, categoryID string) ([]*Task, error)
	ListAll(ctx context.Context) ([]*Task, error)
	ListCompleted(ctx context.Context) ([]*Task, error)
}
