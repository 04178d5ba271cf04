package viewstate

import (
	"time"

	"oneday/internal/domain/calendar"
)

// Init selects today and shows its month.
type Init struct{ Today time.Time }

func (a Init) apply(s State) State {
	s.Today = calendar.DateKey(a.Today)
	s.SelectedDate = s.Today
	s.Month = clampMonth(calendar.Of(a.Today))
	return s
}

// SelectDate selects a day. Malformed keys are ignored.
type SelectDate struct{ Key string }

func (a SelectDate) apply(s State) State {
	d, err := calendar.ParseDateKey(a.Key)
	if err != nil {
		return s
	}
	s.SelectedDate = a.Key
	s.Month = clampMonth(calendar.Of(d))
	return s
}

// NextMonth shows the following month.
type NextMonth struct{}

func (NextMonth) apply(s State) State {
	s.Month = s.Month.Next()
	return s
}

// PrevMonth shows the previous month unless that is before MinMonth.
type PrevMonth struct{}

func (PrevMonth) apply(s State) State {
	if s.CanGoPrev() {
		s.Month = s.Month.Prev()
	}
	return s
}

// ShowMonth jumps to a month, clamped to MinMonth.
type ShowMonth struct{ Month calendar.YearMonth }

func (a ShowMonth) apply(s State) State {
	if a.Month.Validate() != nil {
		return s
	}
	s.Month = clampMonth(a.Month)
	return s
}

// GoToday re-selects today and its month.
type GoToday struct{}

func (GoToday) apply(s State) State {
	if s.Today == "" {
		return s
	}
	return SelectDate{Key: s.Today}.apply(s)
}

// OpenTaskInput toggles the new-task input of a category. Opening another
// category's input clears the draft.
type OpenTaskInput struct{ CategoryID string }

func (a OpenTaskInput) apply(s State) State {
	if s.InputCategoryID == a.CategoryID {
		s.InputCategoryID = ""
		return s
	}
	s.InputCategoryID = a.CategoryID
	s.TaskDraft = ""
	return s
}

type SetTaskDraft struct{ Text string }

func (a SetTaskDraft) apply(s State) State {
	if s.InputCategoryID != "" {
		s.TaskDraft = a.Text
	}
	return s
}

// CloseTaskInput closes the new-task input, e.g. after a save.
type CloseTaskInput struct{}

func (CloseTaskInput) apply(s State) State {
	s.InputCategoryID = ""
	s.TaskDraft = ""
	return s
}

// StartEditTask puts a task in edit mode with its current title as draft.
type StartEditTask struct {
	TaskID string
	Title  string
}

func (a StartEditTask) apply(s State) State {
	s.EditingTaskID = a.TaskID
	s.EditDraft = a.Title
	return s
}

type SetEditDraft struct{ Text string }

func (a SetEditDraft) apply(s State) State {
	if s.EditingTaskID != "" {
		s.EditDraft = a.Text
	}
	return s
}

// FinishEditTask leaves edit mode, after a save, a delete or a cancel.
type FinishEditTask struct{}

func (FinishEditTask) apply(s State) State {
	s.EditingTaskID = ""
	s.EditDraft = ""
	return s
}

type MarkCompleted struct{ Key string }

func (a MarkCompleted) apply(s State) State {
	if s.CompletedDates == nil {
		s.CompletedDates = make(map[string]bool)
	}
	s.CompletedDates[a.Key] = true
	return s
}

type UnmarkCompleted struct{ Key string }

func (a UnmarkCompleted) apply(s State) State {
	delete(s.CompletedDates, a.Key)
	return s
}

// LoadCompleted replaces the completion marks.
type LoadCompleted struct{ Dates map[string]bool }

func (a LoadCompleted) apply(s State) State {
	s.CompletedDates = make(map[string]bool, len(a.Dates))
	for k, v := range a.Dates {
		if v {
			s.CompletedDates[k] = true
		}
	}
	return s
}
