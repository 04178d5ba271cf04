package reminder

import (
	"fmt"
)

var (
	ErrDuplicate  = fmt.Errorf("reminder time already exists")
	ErrNotEditing = fmt.Errorf("reminder session is not editing")
)

// SessionState is the phase of a reminder edit session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateEditing
	StateDuplicate
	StateValid
	StateSaved
	StateCancelled
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateDuplicate:
		return "duplicate"
	case StateValid:
		return "valid"
	case StateSaved:
		return "saved"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Session drives one pass through the reminder picker. Every field selection
// re-evaluates the duplicate status against the snapshot taken at Begin.
// Saved and Cancelled are terminal.
type Session struct {
	state     SessionState
	existing  []*Reminder
	editingID string
	previous  Time
	current   Time
}

func NewSession() *Session {
	return &Session{state: StateIdle}
}

// Begin opens the picker. editing is nil for a new reminder, which starts at
// AM 1:00; otherwise the picker starts at the edited reminder's time.
func (s *Session) Begin(existing []*Reminder, editing *Reminder) error {
	if s.state != StateIdle {
		return fmt.Errorf("cannot begin session in state %s", s.state)
	}
	s.existing = existing
	s.current = Time{Meridiem: AM, Hour: 1, Minute: 0}
	if editing != nil {
		s.editingID = editing.ID
		s.previous = editing.Time
		s.current = editing.Time
	}
	s.state = StateEditing
	s.evaluate()
	return nil
}

func (s *Session) SelectMeridiem(m Meridiem) error {
	next := s.current
	next.Meridiem = m
	return s.selectTime(next)
}

func (s *Session) SelectHour(hour int) error {
	next := s.current
	next.Hour = hour
	return s.selectTime(next)
}

func (s *Session) SelectMinute(minute int) error {
	next := s.current
	next.Minute = minute
	return s.selectTime(next)
}

func (s *Session) selectTime(next Time) error {
	if !s.Editing() {
		return ErrNotEditing
	}
	if err := next.Validate(); err != nil {
		return err
	}
	s.current = next
	s.evaluate()
	return nil
}

func (s *Session) evaluate() {
	if IsDuplicate(s.existing, s.current, s.editingID) {
		s.state = StateDuplicate
		return
	}
	s.state = StateValid
}

// Save commits the selection. It is refused while the selection duplicates
// another reminder.
func (s *Session) Save() (Time, error) {
	if !s.Editing() {
		return Time{}, ErrNotEditing
	}
	if s.state == StateDuplicate {
		return Time{}, fmt.Errorf("%w: %s", ErrDuplicate, s.current)
	}
	s.state = StateSaved
	return s.current, nil
}

// Refresh replaces the snapshot the selection is checked against and
// re-evaluates the current selection.
func (s *Session) Refresh(existing []*Reminder) error {
	if !s.Editing() {
		return ErrNotEditing
	}
	s.existing = existing
	s.evaluate()
	return nil
}

// Cancel discards the selection. Cancelling a finished session is a no-op.
func (s *Session) Cancel() {
	if s.Editing() || s.state == StateIdle {
		s.state = StateCancelled
	}
}

// Editing reports whether the session accepts selections.
func (s *Session) Editing() bool {
	return s.state == StateEditing || s.state == StateDuplicate || s.state == StateValid
}

func (s *Session) CanSave() bool      { return s.state == StateValid }
func (s *Session) State() SessionState { return s.state }
func (s *Session) Time() Time          { return s.current }
func (s *Session) EditingID() string   { return s.editingID }

// Previous is the time being replaced when editing; zero for a new reminder.
func (s *Session) Previous() Time { return s.previous }
