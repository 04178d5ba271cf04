// internal/domain/reminder/time.go
package reminder

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidTime is returned when a meridiem, hour or minute is outside its domain.
var ErrInvalidTime = fmt.Errorf("invalid reminder time")

// Meridiem is the 12-hour clock half.
type Meridiem string

const (
	AM Meridiem = "AM"
	PM Meridiem = "PM"
)

// Label returns the Korean label shown in pickers and messages.
func (m Meridiem) Label() string {
	switch m {
	case AM:
		return "오전"
	case PM:
		return "오후"
	default:
		return string(m)
	}
}

// ParseMeridiem accepts AM/PM in any case as well as 오전/오후.
func ParseMeridiem(s string) (Meridiem, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AM", "오전":
		return AM, nil
	case "PM", "오후":
		return PM, nil
	}
	return "", fmt.Errorf("%w: meridiem %q", ErrInvalidTime, s)
}

// Time is a daily reminder time on the 12-hour clock. Minutes move in
// five-minute steps. Two values are duplicates iff all fields are equal.
type Time struct {
	Meridiem Meridiem `json:"meridiem"`
	Hour     int      `json:"hour"`
	Minute   int      `json:"minute"`
}

// Validate checks the structural domain of every field.
func (t Time) Validate() error {
	if t.Meridiem != AM && t.Meridiem != PM {
		return fmt.Errorf("%w: meridiem %q", ErrInvalidTime, t.Meridiem)
	}
	if t.Hour < 1 || t.Hour > 12 {
		return fmt.Errorf("%w: hour %d not in 1-12", ErrInvalidTime, t.Hour)
	}
	if t.Minute < 0 || t.Minute > 55 || t.Minute%5 != 0 {
		return fmt.Errorf("%w: minute %d not a multiple of 5 in 0-55", ErrInvalidTime, t.Minute)
	}
	return nil
}

// Hour24 converts to the 24-hour clock: 12 AM is 0, 1–11 PM add 12.
func (t Time) Hour24() int {
	switch {
	case t.Meridiem == PM && t.Hour < 12:
		return t.Hour + 12
	case t.Meridiem == AM && t.Hour == 12:
		return 0
	default:
		return t.Hour
	}
}

// Identifier is the alert identifier for this time. Re-scheduling the same
// nominal time reuses the identifier and so replaces the armed alert.
// The minute is zero padded so 1:15 and 11:05 stay distinct.
func (t Time) Identifier() string {
	return fmt.Sprintf("%s%d%02d", t.Meridiem, t.Hour, t.Minute)
}

func (t Time) String() string {
	return fmt.Sprintf("%s %d:%02d", t.Meridiem, t.Hour, t.Minute)
}

// Label renders the time the way the app lists it, e.g. "오전 9:30".
func (t Time) Label() string {
	return fmt.Sprintf("%s %d:%02d", t.Meridiem.Label(), t.Hour, t.Minute)
}

// Parse reads "PM 5:45" (or "오후 5:45") and validates the result.
func Parse(s string) (Time, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Time{}, fmt.Errorf("%w: expected \"<AM|PM> H:MM\", got %q", ErrInvalidTime, s)
	}
	m, err := ParseMeridiem(fields[0])
	if err != nil {
		return Time{}, err
	}
	hh, mm, ok := strings.Cut(fields[1], ":")
	if !ok {
		return Time{}, fmt.Errorf("%w: expected H:MM, got %q", ErrInvalidTime, fields[1])
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return Time{}, fmt.Errorf("%w: hour %q", ErrInvalidTime, hh)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return Time{}, fmt.Errorf("%w: minute %q", ErrInvalidTime, mm)
	}
	t := Time{Meridiem: m, Hour: hour, Minute: minute}
	if err := t.Validate(); err != nil {
		return Time{}, err
	}
	return t, nil
}

// Hours and Minutes list the values offered by the picker.
func Hours() []int {
	hours := make([]int, 0, 12)
	for h := 1; h <= 12; h++ {
		hours = append(hours, h)
	}
	return hours
}

func Minutes() []int {
	minutes := make([]int, 0, 12)
	for m := 0; m <= 55; m += 5 {
		minutes = append(minutes, m)
	}
	return minutes
}
