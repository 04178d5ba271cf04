package httpapi

import (
	"net/http"
	"time"

	"oneday/internal/domain/notification"
	"oneday/internal/domain/reminder"

	ics "github.com/arran4/golang-ical"
	"github.com/gin-gonic/gin"
)

const icsProductID = "-//OneDay//Reminders//KO"

// remindersICS publishes every reminder as a daily recurring event so the
// alerts can be mirrored into a calendar app.
func (h *handlers) remindersICS(c *gin.Context) {
	reminders, err := h.reminders.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	cal := buildCalendar(reminders, h.planner.Today(), time.Now())
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal.Serialize()))
}

// buildCalendar emits one VEVENT per distinct reminder time, starting on
// today's date in today's location.
func buildCalendar(reminders []*reminder.Reminder, today time.Time, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(notification.AlertTitle)
	cal.SetXWRTimezone(today.Location().String())

	seen := make(map[string]bool, len(reminders))
	for _, r := range reminders {
		id := r.Time.Identifier()
		if seen[id] {
			continue
		}
		seen[id] = true

		start := time.Date(today.Year(), today.Month(), today.Day(), r.Time.Hour24(), r.Time.Minute, 0, 0, today.Location())
		event := cal.AddEvent(id + "@oneday")
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(start.Add(5 * time.Minute))
		event.SetSummary(notification.AlertTitle + " " + r.Time.Label())
		event.AddRrule("FREQ=DAILY")
	}
	return cal
}
