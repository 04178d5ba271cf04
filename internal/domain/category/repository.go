package category

import (
	"context"
)

// Repository defines the operations for persisting and retrieving categories.
type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	Update(ctx context.Context, c *Category) error // Title only
	Delete(ctx context.Context, id string) error  // Tasks of the category are deleted with it
	List(ctx context.Context) ([]*Category, error)
}
