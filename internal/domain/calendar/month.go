// internal/domain/calendar/month.go
package calendar

import (
	"fmt"
	"time"
)

// ErrInvalidMonth is returned when a month falls outside 1–12.
var ErrInvalidMonth = fmt.Errorf("month must be between 1 and 12")

const dateKeyLayout = "2006-01-02"

// YearMonth identifies a calendar month. The day of month is never part of it.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Of returns the month that contains t.
func Of(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses "2024-01".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Of(t), nil
}

func (ym YearMonth) Validate() error {
	if ym.Month < time.January || ym.Month > time.December {
		return fmt.Errorf("%w: got %d", ErrInvalidMonth, int(ym.Month))
	}
	return nil
}

// First returns midnight UTC of the first day of the month.
func (ym YearMonth) First() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (ym YearMonth) Next() YearMonth {
	return Of(ym.First().AddDate(0, 1, 0))
}

func (ym YearMonth) Prev() YearMonth {
	return Of(ym.First().AddDate(0, -1, 0))
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Title renders the month heading shown above the grid, e.g. "2024년 1월".
func Title(ym YearMonth) string {
	return fmt.Sprintf("%d년 %d월", ym.Year, int(ym.Month))
}

// DaysIn returns the number of days in the month, accounting for leap years.
func DaysIn(ym YearMonth) int {
	// Day 0 of the following month normalizes to the last day of this one.
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateKey formats a date the way completion marks and selections are keyed.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// ParseDateKey parses a "2006-01-02" key into midnight UTC.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(dateKeyLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", key, err)
	}
	return t, nil
}
