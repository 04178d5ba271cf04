package database

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"oneday/internal/domain/category"
	"oneday/internal/domain/reminder"
	"oneday/internal/domain/task"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "postgres")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func fixedClock() time.Time { return fixedNow }

func TestMigrate(t *testing.T) {
	db, mock := newMockDB(t)
	for range schema {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
}

func TestSQLReminderRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLReminderRepository(db)

	rows := sqlmock.NewRows([]string{"id", "meridiem", "hour", "minute", "created_at", "updated_at"}).
		AddRow("r1", "AM", 9, 30, fixedNow, fixedNow).
		AddRow("r2", "PM", 5, 0, fixedNow.Add(time.Minute), fixedNow.Add(time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, meridiem, hour, minute, created_at, updated_at FROM reminders ORDER BY created_at, seq")).
		WillReturnRows(rows)

	reminders, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	assert.Equal(t, reminder.Time{Meridiem: reminder.AM, Hour: 9, Minute: 30}, reminders[0].Time)
	assert.Equal(t, "PM500", reminders[1].Time.Identifier())
}

func TestSQLReminderRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLReminderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reminders WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrReminderNotFound)
}

func TestSQLReminderRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLReminderRepository(db)
	repo.now = fixedClock

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reminders (id, seq, meridiem, hour, minute, created_at, updated_at)") + `\s+` +
		regexp.QuoteMeta("VALUES ($1, (SELECT COALESCE(MAX(seq), 0) + 1 FROM reminders), $2, $3, $4, $5, $6)")).
		WithArgs(sqlmock.AnyArg(), "PM", 5, 45, fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rem := &reminder.Reminder{Time: reminder.Time{Meridiem: reminder.PM, Hour: 5, Minute: 45}}
	require.NoError(t, repo.Create(context.Background(), rem))
	assert.NotEmpty(t, rem.ID)
	assert.Equal(t, fixedNow, rem.CreatedAt)
}

func TestSQLReminderRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLReminderRepository(db)
	repo.now = fixedClock
	query := regexp.QuoteMeta("UPDATE reminders SET meridiem = $1, hour = $2, minute = $3, updated_at = $4 WHERE id = $5")

	mock.ExpectExec(query).
		WithArgs("AM", 7, 0, fixedNow, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	rem := &reminder.Reminder{ID: "r1", Time: reminder.Time{Meridiem: reminder.AM, Hour: 7}}
	require.NoError(t, repo.Update(context.Background(), rem))
	assert.Equal(t, fixedNow, rem.UpdatedAt)

	mock.ExpectExec(query).
		WithArgs("AM", 7, 0, fixedNow, "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	rem.ID = "gone"
	assert.ErrorIs(t, repo.Update(context.Background(), rem), ErrReminderNotFound)
}

func TestSQLReminderRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLReminderRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reminders WHERE id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reminders WHERE id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "r1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "r1"), ErrReminderNotFound)
}

func TestSQLCategoryRepository_CreateAndList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLCategoryRepository(db)
	repo.now = fixedClock

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories (id, title, created_at, updated_at) VALUES ($1, $2, $3, $4)")).
		WithArgs(sqlmock.AnyArg(), "운동", fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	c := &category.Category{Title: "운동"}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.Len(t, c.ID, 36)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, created_at, updated_at FROM categories ORDER BY created_at, id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "created_at", "updated_at"}).
			AddRow(c.ID, "운동", fixedNow, fixedNow))
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "운동", list[0].Title)
}

func TestSQLCategoryRepository_DeleteRemovesTasks(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE category_id = $1")).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "c1"))
}

func TestSQLCategoryRepository_DeleteMissingRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE category_id = $1")).
		WithArgs("c9").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
		WithArgs("c9").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Delete(context.Background(), "c9"), ErrCategoryNotFound)
}

func TestSQLTaskRepository_CreateRequiresCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLTaskRepository(db)
	repo.now = fixedClock
	countQuery := regexp.QuoteMeta("SELECT COUNT(*) FROM categories WHERE id = $1")

	mock.ExpectQuery(countQuery).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	err := repo.Create(context.Background(), &task.Task{CategoryID: "missing", Title: "독서"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	mock.ExpectQuery(countQuery).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks (id, category_id, title, is_completed, completed_at, created_at, updated_at)")).
		WithArgs(sqlmock.AnyArg(), "c1", "독서", false, nil, fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	tk := &task.Task{CategoryID: "c1", Title: "독서"}
	require.NoError(t, repo.Create(context.Background(), tk))
	assert.NotEmpty(t, tk.ID)
}

func TestSQLTaskRepository_UpdateCompletion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLTaskRepository(db)
	repo.now = fixedClock

	tk := &task.Task{ID: "t1", CategoryID: "c1", Title: "산책"}
	tk.Toggle(fixedNow)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET title = $1, is_completed = $2, completed_at = $3, updated_at = $4 WHERE id = $5")).
		WithArgs("산책", true, fixedNow, fixedNow, "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), tk))
}

func TestSQLTaskRepository_ListCompleted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLTaskRepository(db)

	rows := sqlmock.NewRows([]string{"id", "category_id", "title", "is_completed", "completed_at", "created_at", "updated_at"}).
		AddRow("t1", "c1", "산책", true, fixedNow, fixedNow, fixedNow)
	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE is_completed = TRUE ORDER BY completed_at DESC, id")).
		WillReturnRows(rows)

	tasks, err := repo.ListCompleted(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	key, ok := tasks[0].CompletedDateKey(time.UTC)
	assert.True(t, ok)
	assert.Equal(t, "2024-03-15", key)
}

func TestSQLTaskRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLTaskRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
