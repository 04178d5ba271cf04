package app

import (
	"context"
	"testing"
	"time"

	"oneday/internal/domain/calendar"
	"oneday/internal/domain/category"
	"oneday/internal/domain/task"
	idb "oneday/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var plannerNow = time.Date(2024, time.March, 15, 1, 30, 0, 0, time.UTC) // 10:30 in Seoul

func newPlannerFixture(t *testing.T) (*PlannerService, *countingRefresher) {
	t.Helper()
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	cats, tasks := newMemPlannerRepos()
	refresher := &countingRefresher{}
	svc := NewPlannerService(cats, tasks, refresher, time.Sunday, seoul, quietLogger())
	svc.now = func() time.Time { return plannerNow }
	return svc, refresher
}

func TestPlanner_CategoryLifecycle(t *testing.T) {
	svc, refresher := newPlannerFixture(t)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, "   ")
	assert.ErrorIs(t, err, category.ErrEmptyTitle)

	c, err := svc.CreateCategory(ctx, "  운동 ")
	require.NoError(t, err)
	assert.Equal(t, "운동", c.Title)

	renamed, err := svc.RenameCategory(ctx, c.ID, "아침 운동")
	require.NoError(t, err)
	assert.Equal(t, "아침 운동", renamed.Title)

	_, err = svc.AddTask(ctx, c.ID, "스트레칭")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCategory(ctx, c.ID))

	all, err := svc.ListAllTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, 2, refresher.calls)

	assert.ErrorIs(t, svc.DeleteCategory(ctx, c.ID), idb.ErrCategoryNotFound)
}

func TestPlanner_AddTaskValidation(t *testing.T) {
	svc, refresher := newPlannerFixture(t)
	ctx := context.Background()

	_, err := svc.AddTask(ctx, "missing", "독서")
	assert.ErrorIs(t, err, idb.ErrCategoryNotFound)

	c, err := svc.CreateCategory(ctx, "공부")
	require.NoError(t, err)
	_, err = svc.AddTask(ctx, c.ID, "")
	assert.ErrorIs(t, err, task.ErrEmptyTitle)
	assert.Zero(t, refresher.calls)
}

func TestPlanner_ToggleAndListOrder(t *testing.T) {
	svc, _ := newPlannerFixture(t)
	ctx := context.Background()
	c, err := svc.CreateCategory(ctx, "공부")
	require.NoError(t, err)

	a, err := svc.AddTask(ctx, c.ID, "영어")
	require.NoError(t, err)
	b, err := svc.AddTask(ctx, c.ID, "수학")
	require.NoError(t, err)

	toggled, err := svc.ToggleTask(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsCompleted)
	assert.True(t, toggled.CompletedAt.Valid)

	list, err := svc.ListTasks(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)

	toggled, err = svc.ToggleTask(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsCompleted)
	assert.False(t, toggled.CompletedAt.Valid)

	_, err = svc.ListTasks(ctx, "missing")
	assert.ErrorIs(t, err, idb.ErrCategoryNotFound)
}

func TestPlanner_RenameAndDeleteTask(t *testing.T) {
	svc, refresher := newPlannerFixture(t)
	ctx := context.Background()
	c, err := svc.CreateCategory(ctx, "집안일")
	require.NoError(t, err)
	tk, err := svc.AddTask(ctx, c.ID, "빨래")
	require.NoError(t, err)

	renamed, err := svc.RenameTask(ctx, tk.ID, "설거지")
	require.NoError(t, err)
	assert.Equal(t, "설거지", renamed.Title)

	require.NoError(t, svc.DeleteTask(ctx, tk.ID))
	assert.ErrorIs(t, svc.DeleteTask(ctx, tk.ID), idb.ErrTaskNotFound)
	assert.Equal(t, 3, refresher.calls)
}

func TestPlanner_MonthViewMarks(t *testing.T) {
	svc, _ := newPlannerFixture(t)
	ctx := context.Background()
	c, err := svc.CreateCategory(ctx, "습관")
	require.NoError(t, err)
	tk, err := svc.AddTask(ctx, c.ID, "물 마시기")
	require.NoError(t, err)
	_, err = svc.ToggleTask(ctx, tk.ID)
	require.NoError(t, err)

	view, err := svc.MonthView(ctx, calendar.YearMonth{Year: 2024, Month: time.March})
	require.NoError(t, err)

	assert.Equal(t, "2024년 3월", view.Title)
	assert.Equal(t, []string{"일", "월", "화", "수", "목", "금", "토"}, view.Weekdays)
	assert.True(t, view.CanGoPrev)
	assert.Len(t, view.Cells, 42) // Mar 2024 starts on Friday: 5 pads + 31 days
	assert.Len(t, view.Weeks(), 6)

	assert.True(t, view.Cells[0].Empty)
	fifteenth := view.Cells[5+14]
	assert.Equal(t, "2024-03-15", fifteenth.Date)
	assert.True(t, fifteenth.Today)
	assert.True(t, fifteenth.Completed)
	assert.False(t, view.Cells[5].Completed)
}

func TestPlanner_MonthViewBounds(t *testing.T) {
	svc, _ := newPlannerFixture(t)
	view, err := svc.MonthView(context.Background(), calendar.YearMonth{Year: 2024, Month: time.January})
	require.NoError(t, err)
	assert.False(t, view.CanGoPrev)

	_, err = svc.MonthView(context.Background(), calendar.YearMonth{Year: 2024, Month: 13})
	assert.ErrorIs(t, err, calendar.ErrInvalidMonth)
}
