package task

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTitle(t *testing.T) {
	title, err := NormalizeTitle("  독서  ")
	require.NoError(t, err)
	assert.Equal(t, "독서", title)

	_, err = NormalizeTitle("   ")
	assert.True(t, errors.Is(err, ErrEmptyTitle))
}

func TestToggle(t *testing.T) {
	now := time.Date(2024, 8, 21, 22, 30, 0, 0, time.UTC)
	tk := &Task{Title: "산책"}

	tk.Toggle(now)
	assert.True(t, tk.IsCompleted)
	assert.Equal(t, sql.NullTime{Time: now, Valid: true}, tk.CompletedAt)

	tk.Toggle(now.Add(time.Hour))
	assert.False(t, tk.IsCompleted)
	assert.False(t, tk.CompletedAt.Valid)
}

func TestCompletedDateKeyUsesLocation(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	tk := &Task{}
	tk.Toggle(time.Date(2024, 8, 21, 22, 30, 0, 0, time.UTC))

	key, ok := tk.CompletedDateKey(seoul)
	require.True(t, ok)
	assert.Equal(t, "2024-08-22", key)

	key, ok = tk.CompletedDateKey(nil)
	require.True(t, ok)
	assert.Equal(t, "2024-08-21", key)

	_, ok = (&Task{}).CompletedDateKey(nil)
	assert.False(t, ok)
}

func TestSortForDisplay(t *testing.T) {
	base := time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)
	open1 := &Task{ID: "open1", CreatedAt: base}
	open2 := &Task{ID: "open2", CreatedAt: base.Add(time.Minute)}
	doneOld := &Task{ID: "doneOld", IsCompleted: true, CompletedAt: sql.NullTime{Time: base, Valid: true}}
	doneNew := &Task{ID: "doneNew", IsCompleted: true, CompletedAt: sql.NullTime{Time: base.Add(time.Hour), Valid: true}}

	tasks := []*Task{open2, doneOld, open1, doneNew}
	SortForDisplay(tasks)

	var ids []string
	for _, tk := range tasks {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, []string{"doneNew", "doneOld", "open1", "open2"}, ids)
}

func TestCompletedDates(t *testing.T) {
	day := time.Date(2024, 8, 20, 10, 0, 0, 0, time.UTC)
	tasks := []*Task{
		{IsCompleted: true, CompletedAt: sql.NullTime{Time: day, Valid: true}},
		{IsCompleted: true, CompletedAt: sql.NullTime{Time: day.Add(2 * time.Hour), Valid: true}},
		{IsCompleted: true, CompletedAt: sql.NullTime{Time: day.AddDate(0, 0, 1), Valid: true}},
		{IsCompleted: false},
	}

	assert.Equal(t, map[string]bool{"2024-08-20": true, "2024-08-21": true}, CompletedDates(tasks, time.UTC))
	assert.Equal(t, []string{"", "", "", ""}, Titles(tasks))
}
