package reminder

import (
	"time"
)

// Reminder is a persisted daily reminder. Arrival order is CreatedAt.
type Reminder struct {
	ID        string
	Time      Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
