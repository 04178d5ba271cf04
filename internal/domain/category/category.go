package category

import (
	"fmt"
	"strings"
	"time"
)

var ErrEmptyTitle = fmt.Errorf("category title must not be empty")

// Category groups tasks. Tasks reference it by ID.
type Category struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeTitle trims the title and rejects empty ones.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	return title, nil
}
