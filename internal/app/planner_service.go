package app

import (
	"context"
	"fmt"
	"time"

	"oneday/internal/domain/calendar"
	"oneday/internal/domain/category"
	"oneday/internal/domain/task"
	"oneday/internal/domain/viewstate"

	"github.com/sirupsen/logrus"
)

// BodyRefresher is told when task titles change so armed alerts can list them.
type BodyRefresher interface {
	RefreshBodies(ctx context.Context) error
}

// DayCell is one calendar cell decorated for display.
type DayCell struct {
	Date      string `json:"date,omitempty"`
	Day       int    `json:"day,omitempty"`
	Empty     bool   `json:"empty"`
	Completed bool   `json:"completed"`
	Today     bool   `json:"today"`
}

// MonthView is a month grid with completion marks.
type MonthView struct {
	Month     calendar.YearMonth `json:"month"`
	Title     string             `json:"title"`
	Weekdays  []string           `json:"weekdays"`
	Cells     []DayCell          `json:"cells"`
	CanGoPrev bool               `json:"can_go_prev"`
}

// Weeks splits the cells into rows of seven.
func (v *MonthView) Weeks() [][]DayCell {
	var weeks [][]DayCell
	for i := 0; i+7 <= len(v.Cells); i += 7 {
		weeks = append(weeks, v.Cells[i:i+7])
	}
	return weeks
}

type PlannerService struct {
	categories category.Repository
	tasks      task.Repository
	refresher  BodyRefresher // optional
	weekStart  time.Weekday
	loc        *time.Location
	now        func() time.Time
	logger     *logrus.Entry
}

func NewPlannerService(
	categories category.Repository,
	tasks task.Repository,
	refresher BodyRefresher,
	weekStart time.Weekday,
	loc *time.Location,
	logger *logrus.Entry,
) *PlannerService {
	if loc == nil {
		loc = time.UTC
	}
	return &PlannerService{
		categories: categories,
		tasks:      tasks,
		refresher:  refresher,
		weekStart:  weekStart,
		loc:        loc,
		now:        time.Now,
		logger:     logger,
	}
}

// Today is the current time in the configured location.
func (s *PlannerService) Today() time.Time {
	return s.now().In(s.loc)
}

func (s *PlannerService) WeekStart() time.Weekday {
	return s.weekStart
}

// --- Categories ---

func (s *PlannerService) ListCategories(ctx context.Context) ([]*category.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *PlannerService) CreateCategory(ctx context.Context, title string) (*category.Category, error) {
	title, err := category.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}
	c := &category.Category{Title: title}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"category_id": c.ID, "title": c.Title}).Info("Category created")
	return c, nil
}

func (s *PlannerService) RenameCategory(ctx context.Context, id, title string) (*category.Category, error) {
	title, err := category.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Title = title
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to rename category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes the category together with its tasks.
func (s *PlannerService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("category_id", id).Info("Category deleted")
	s.tasksChanged(ctx)
	return nil
}

// --- Tasks ---

// ListTasks returns the category's tasks, completed first.
func (s *PlannerService) ListTasks(ctx context.Context, categoryID string) ([]*task.Task, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	task.SortForDisplay(tasks)
	return tasks, nil
}

// ListAllTasks returns every task in creation order.
func (s *PlannerService) ListAllTasks(ctx context.Context) ([]*task.Task, error) {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *PlannerService) AddTask(ctx context.Context, categoryID, title string) (*task.Task, error) {
	title, err := task.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}
	t := &task.Task{CategoryID: categoryID, Title: title}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"task_id": t.ID, "category_id": categoryID}).Info("Task added")
	s.tasksChanged(ctx)
	return t, nil
}

func (s *PlannerService) RenameTask(ctx context.Context, id, title string) (*task.Task, error) {
	title, err := task.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Title = title
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to rename task: %w", err)
	}
	s.tasksChanged(ctx)
	return t, nil
}

func (s *PlannerService) DeleteTask(ctx context.Context, id string) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("task_id", id).Info("Task deleted")
	s.tasksChanged(ctx)
	return nil
}

// ToggleTask flips completion and stamps or clears the completion time.
func (s *PlannerService) ToggleTask(ctx context.Context, id string) (*task.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Toggle(s.now().UTC())
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"task_id": id, "completed": t.IsCompleted}).Info("Task toggled")
	return t, nil
}

// CompletedDates returns the date keys, in the configured location, on which
// at least one task was completed.
func (s *PlannerService) CompletedDates(ctx context.Context) (map[string]bool, error) {
	tasks, err := s.tasks.ListCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tasks: %w", err)
	}
	return task.CompletedDates(tasks, s.loc), nil
}

// MonthView builds the grid for ym with completion and today marks.
func (s *PlannerService) MonthView(ctx context.Context, ym calendar.YearMonth) (*MonthView, error) {
	cells, err := calendar.BuildGrid(ym, s.weekStart)
	if err != nil {
		return nil, err
	}
	completed, err := s.CompletedDates(ctx)
	if err != nil {
		return nil, err
	}
	today := calendar.DateKey(s.Today())

	view := &MonthView{
		Month:     ym,
		Title:     calendar.Title(ym),
		Weekdays:  calendar.WeekdayLabels(s.weekStart),
		Cells:     make([]DayCell, 0, len(cells)),
		CanGoPrev: viewstate.MinMonth.Before(ym),
	}
	for _, c := range cells {
		if c.Empty() {
			view.Cells = append(view.Cells, DayCell{Empty: true})
			continue
		}
		key := calendar.DateKey(c.Date)
		view.Cells = append(view.Cells, DayCell{
			Date:      key,
			Day:       c.Day(),
			Completed: completed[key],
			Today:     key == today,
		})
	}
	return view, nil
}

func (s *PlannerService) tasksChanged(ctx context.Context) {
	if s.refresher == nil {
		return
	}
	if err := s.refresher.RefreshBodies(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to refresh alert bodies")
	}
}
