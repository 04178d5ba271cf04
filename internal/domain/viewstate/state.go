// Package viewstate holds the planner screen state as a plain value. Every
// change goes through Update, so the state can be stored, restored and tested
// without any rendering layer.
package viewstate

import (
	"time"

	"oneday/internal/domain/calendar"
)

// MinMonth is the earliest month the calendar navigates to.
var MinMonth = calendar.YearMonth{Year: 2024, Month: time.January}

// State is the planner screen state.
type State struct {
	Today        string             `json:"today"`
	SelectedDate string             `json:"selected_date"`
	Month        calendar.YearMonth `json:"month"`

	// InputCategoryID is the category whose "new task" input is open.
	InputCategoryID string `json:"input_category_id,omitempty"`
	TaskDraft       string `json:"task_draft,omitempty"`

	EditingTaskID string `json:"editing_task_id,omitempty"`
	EditDraft     string `json:"edit_draft,omitempty"`

	CompletedDates map[string]bool `json:"completed_dates,omitempty"`
}

// Action is a state transition.
type Action interface {
	apply(s State) State
}

// Update returns the state after applying a. The input state is not modified.
func Update(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s.clone())
}

// New returns the initial state for today.
func New(today time.Time) State {
	return Update(State{}, Init{Today: today})
}

// CanGoPrev reports whether the previous month is reachable.
func (s State) CanGoPrev() bool {
	return !s.Month.Prev().Before(MinMonth)
}

// IsCompleted reports whether a date carries a completion mark.
func (s State) IsCompleted(dateKey string) bool {
	return s.CompletedDates[dateKey]
}

func (s State) clone() State {
	if s.CompletedDates != nil {
		dates := make(map[string]bool, len(s.CompletedDates))
		for k, v := range s.CompletedDates {
			dates[k] = v
		}
		s.CompletedDates = dates
	}
	return s
}

func clampMonth(ym calendar.YearMonth) calendar.YearMonth {
	if ym.Before(MinMonth) {
		return MinMonth
	}
	return ym
}
