package task

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"oneday/internal/domain/calendar"
)

var ErrEmptyTitle = fmt.Errorf("task title must not be empty")

// Task is a to-do entry inside a category.
type Task struct {
	ID          string
	CategoryID  string
	Title       string
	IsCompleted bool
	CompletedAt sql.NullTime // Set while the task is completed
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeTitle trims the title and rejects empty ones.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	return title, nil
}

// Toggle flips completion. Completing stamps the completion time; reopening clears it.
func (t *Task) Toggle(now time.Time) {
	t.IsCompleted = !t.IsCompleted
	if t.IsCompleted {
		t.CompletedAt = sql.NullTime{Time: now, Valid: true}
		return
	}
	t.CompletedAt = sql.NullTime{}
}

// CompletedDateKey returns the date key of the completion, if any.
func (t *Task) CompletedDateKey(loc *time.Location) (string, bool) {
	if !t.IsCompleted || !t.CompletedAt.Valid {
		return "", false
	}
	if loc == nil {
		loc = time.UTC
	}
	return calendar.DateKey(t.CompletedAt.Time.In(loc)), true
}

// SortForDisplay orders completed tasks first, then by most recent
// completion, then by creation.
func SortForDisplay(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.IsCompleted != b.IsCompleted {
			return a.IsCompleted
		}
		if a.CompletedAt.Valid && b.CompletedAt.Valid && !a.CompletedAt.Time.Equal(b.CompletedAt.Time) {
			return a.CompletedAt.Time.After(b.CompletedAt.Time)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// CompletedDates collects the distinct completion date keys of tasks.
func CompletedDates(tasks []*Task, loc *time.Location) map[string]bool {
	dates := make(map[string]bool)
	for _, t := range tasks {
		if key, ok := t.CompletedDateKey(loc); ok {
			dates[key] = true
		}
	}
	return dates
}

// Titles returns the task titles in order.
func Titles(tasks []*Task) []string {
	titles := make([]string, 0, len(tasks))
	for _, t := range tasks {
		titles = append(titles, t.Title)
	}
	return titles
}
