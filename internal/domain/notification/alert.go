package notification

import (
	"context"
	"fmt"

	"oneday/internal/domain/reminder"
)

// Alert is a daily notification armed for one reminder time.
type Alert struct {
	Identifier  string
	Hour24      int
	Minute      int
	RepeatDaily bool
	Title       string
	Body        string
}

// AlertFor builds the repeating alert for a reminder time.
func AlertFor(t reminder.Time, body string) Alert {
	return Alert{
		Identifier:  t.Identifier(),
		Hour24:      t.Hour24(),
		Minute:      t.Minute,
		RepeatDaily: true,
		Title:       AlertTitle,
		Body:        body,
	}
}

// Text is the message delivered when the alert fires.
func (a Alert) Text() string {
	return fmt.Sprintf("%s\n%s", a.Title, a.Body)
}

// Scheduler arms and disarms alerts. Scheduling an identifier that is already
// armed replaces the previous alert.
type Scheduler interface {
	Schedule(ctx context.Context, alert Alert) error
	Cancel(identifier string) error
	Scheduled() []string
}
