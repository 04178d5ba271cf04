package calendar

import (
	"time"
)

// Cell is one slot of a month grid. Valid is false for padding cells, which
// carry no date.
type Cell struct {
	Date  time.Time
	Valid bool
}

// Empty reports whether the cell is padding.
func (c Cell) Empty() bool {
	return !c.Valid
}

// Day returns the day of month, or 0 for padding.
func (c Cell) Day() int {
	if !c.Valid {
		return 0
	}
	return c.Date.Day()
}

var koreanWeekdays = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// LeadingPad returns how many empty cells precede the 1st of the month when
// weeks start on weekStart. The result is in [0,6].
func LeadingPad(ym YearMonth, weekStart time.Weekday) int {
	return (int(ym.First().Weekday()) - normalizeWeekday(weekStart) + 7) % 7
}

// BuildGrid lays the month out as complete weeks: leading padding, one valid
// cell per day in ascending order, then trailing padding up to a multiple of 7.
func BuildGrid(ym YearMonth, weekStart time.Weekday) ([]Cell, error) {
	if err := ym.Validate(); err != nil {
		return nil, err
	}

	lead := LeadingPad(ym, weekStart)
	days := DaysIn(ym)
	total := (lead + days + 6) / 7 * 7

	cells := make([]Cell, lead, total)
	first := ym.First()
	for d := 0; d < days; d++ {
		cells = append(cells, Cell{Date: first.AddDate(0, 0, d), Valid: true})
	}
	for len(cells) < total {
		cells = append(cells, Cell{})
	}
	return cells, nil
}

// Weeks splits a grid into rows of seven cells.
func Weeks(cells []Cell) [][]Cell {
	weeks := make([][]Cell, 0, len(cells)/7)
	for i := 0; i+7 <= len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// WeekdayLabels returns the very short Korean weekday symbols rotated so the
// first label matches weekStart.
func WeekdayLabels(weekStart time.Weekday) []string {
	start := normalizeWeekday(weekStart)
	labels := make([]string, 7)
	for i := range labels {
		labels[i] = koreanWeekdays[(start+i)%7]
	}
	return labels
}

// ParseWeekStart accepts "sunday" or "monday" and falls back to Sunday.
func ParseWeekStart(s string) time.Weekday {
	if s == "monday" {
		return time.Monday
	}
	return time.Sunday
}

func normalizeWeekday(w time.Weekday) int {
	return (int(w)%7 + 7) % 7
}
