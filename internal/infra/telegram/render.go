package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"oneday/internal/app"
	"oneday/internal/domain/calendar"
	"oneday/internal/domain/category"
	"oneday/internal/domain/reminder"
	"oneday/internal/domain/task"
	idb "oneday/internal/infra/database"

	"gopkg.in/telebot.v3"
)

// Callback uniques. Payloads are joined with '|' by telebot.
const (
	uniqueNoop       = "noop"
	uniqueMonth      = "cal_month"   // YYYY-MM
	uniqueDay        = "cal_day"     // YYYY-MM-DD
	uniqueToday      = "cal_today"   // no payload
	uniqueTaskToggle = "task_toggle" // task id
	uniqueRemNew     = "rem_new"     // no payload
	uniqueRemEdit    = "rem_edit"    // reminder id
	uniqueRemDelete  = "rem_delete"  // reminder id
	uniqueRemPick    = "rem_pick"    // field|value, field is m, h or n
	uniqueRemSave    = "rem_save"
	uniqueRemCancel  = "rem_cancel"
)

const emptyCellLabel = "·"

type taskGroup struct {
	Category *category.Category
	Tasks    []*task.Task
}

// --- Calendar ---

func calendarText(view *app.MonthView, selected string) string {
	var sb strings.Builder
	sb.WriteString(view.Title)
	if selected != "" {
		sb.WriteString("\n선택한 날짜: ")
		sb.WriteString(selected)
	}
	return sb.String()
}

func dayLabel(c app.DayCell, selected string) string {
	if c.Empty {
		return emptyCellLabel
	}
	label := strconv.Itoa(c.Day)
	if c.Completed {
		label += "✓"
	}
	if c.Today {
		label = "[" + label + "]"
	}
	if c.Date == selected {
		label = "▸" + label
	}
	return label
}

func calendarMarkup(view *app.MonthView, selected string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(view.Cells)/7+3)

	prev := markup.Data(emptyCellLabel, uniqueNoop)
	if view.CanGoPrev {
		prev = markup.Data("‹", uniqueMonth, view.Month.Prev().String())
	}
	rows = append(rows, markup.Row(
		prev,
		markup.Data(view.Title, uniqueNoop),
		markup.Data("›", uniqueMonth, view.Month.Next().String()),
	))

	labels := make([]telebot.Btn, 0, len(view.Weekdays))
	for _, w := range view.Weekdays {
		labels = append(labels, markup.Data(w, uniqueNoop))
	}
	rows = append(rows, markup.Row(labels...))

	for _, week := range view.Weeks() {
		btns := make([]telebot.Btn, 0, len(week))
		for _, c := range week {
			if c.Empty {
				btns = append(btns, markup.Data(emptyCellLabel, uniqueNoop))
				continue
			}
			btns = append(btns, markup.Data(dayLabel(c, selected), uniqueDay, c.Date))
		}
		rows = append(rows, markup.Row(btns...))
	}

	rows = append(rows, markup.Row(markup.Data("오늘", uniqueToday)))
	markup.Inline(rows...)
	return markup
}

// dayText lists the tasks completed on the date key.
func dayText(dateKey string, tasks []*task.Task, loc *time.Location) string {
	var done []string
	for _, t := range tasks {
		if key, ok := t.CompletedDateKey(loc); ok && key == dateKey {
			done = append(done, "• "+t.Title)
		}
	}
	if len(done) == 0 {
		return dateKey + "\n완료한 할 일이 없습니다."
	}
	return dateKey + " 완료한 할 일\n" + strings.Join(done, "\n")
}

// --- Categories and tasks ---

func categoriesText(categories []*category.Category) string {
	if len(categories) == 0 {
		return "카테고리가 없습니다. /add_category <이름> 으로 추가하세요."
	}
	var sb strings.Builder
	sb.WriteString("카테고리 목록\n")
	for i, c := range categories {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, c.Title)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// tasksText numbers every task across groups and returns the ids in that order.
func tasksText(groups []taskGroup) (string, []string) {
	if len(groups) == 0 {
		return "카테고리가 없습니다. /add_category <이름> 으로 추가하세요.", nil
	}
	var sb strings.Builder
	var ids []string
	for _, g := range groups {
		sb.WriteString("[" + g.Category.Title + "]\n")
		if len(g.Tasks) == 0 {
			sb.WriteString("  (할 일 없음)\n")
			continue
		}
		for _, t := range g.Tasks {
			ids = append(ids, t.ID)
			mark := "⬜"
			if t.IsCompleted {
				mark = "✅"
			}
			fmt.Fprintf(&sb, "%d. %s %s\n", len(ids), mark, t.Title)
		}
	}
	return strings.TrimRight(sb.String(), "\n"), ids
}

func tasksMarkup(groups []taskGroup) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	var rows []telebot.Row
	n := 0
	for _, g := range groups {
		for _, t := range g.Tasks {
			n++
			label := fmt.Sprintf("%d. 완료", n)
			if t.IsCompleted {
				label = fmt.Sprintf("%d. 취소", n)
			}
			rows = append(rows, markup.Row(markup.Data(label, uniqueTaskToggle, t.ID)))
		}
	}
	markup.Inline(rows...)
	return markup
}

// --- Reminders ---

func remindersText(reminders []*reminder.Reminder) string {
	if len(reminders) == 0 {
		return "등록된 알림이 없습니다."
	}
	var sb strings.Builder
	sb.WriteString("알림 목록\n")
	for i, r := range reminders {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r.Time.Label())
	}
	return strings.TrimRight(sb.String(), "\n")
}

func remindersMarkup(reminders []*reminder.Reminder) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(reminders)+1)
	for _, r := range reminders {
		rows = append(rows, markup.Row(
			markup.Data(r.Time.Label(), uniqueNoop),
			markup.Data("수정", uniqueRemEdit, r.ID),
			markup.Data("삭제", uniqueRemDelete, r.ID),
		))
	}
	rows = append(rows, markup.Row(markup.Data("새 알림", uniqueRemNew)))
	markup.Inline(rows...)
	return markup
}

func pickerText(s *reminder.Session) string {
	var sb strings.Builder
	if s.Editing() {
		fmt.Fprintf(&sb, "알림 수정: %s → %s\n", s.Previous().Label(), s.Time().Label())
	} else {
		fmt.Fprintf(&sb, "새 알림: %s\n", s.Time().Label())
	}
	switch s.State() {
	case reminder.StateDuplicate:
		sb.WriteString("이미 같은 시간의 알림이 있습니다.")
	case reminder.StateValid:
		sb.WriteString("저장할 수 있습니다.")
	}
	return sb.String()
}

func selected(label string, on bool) string {
	if on {
		return "● " + label
	}
	return label
}

func pickerMarkup(s *reminder.Session) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	current := s.Time()
	var rows []telebot.Row

	rows = append(rows, markup.Row(
		markup.Data(selected(reminder.AM.Label(), current.Meridiem == reminder.AM), uniqueRemPick, "m", string(reminder.AM)),
		markup.Data(selected(reminder.PM.Label(), current.Meridiem == reminder.PM), uniqueRemPick, "m", string(reminder.PM)),
	))
	rows = append(rows, pickRows(markup, "h", reminder.Hours(), current.Hour, "%d시")...)
	rows = append(rows, pickRows(markup, "n", reminder.Minutes(), current.Minute, "%02d분")...)

	save := markup.Data("저장", uniqueRemSave)
	if !s.CanSave() {
		save = markup.Data("중복된 시간", uniqueNoop)
	}
	rows = append(rows, markup.Row(save, markup.Data("취소", uniqueRemCancel)))
	markup.Inline(rows...)
	return markup
}

func pickRows(markup *telebot.ReplyMarkup, field string, values []int, current int, format string) []telebot.Row {
	const perRow = 6
	var rows []telebot.Row
	for start := 0; start < len(values); start += perRow {
		end := start + perRow
		if end > len(values) {
			end = len(values)
		}
		btns := make([]telebot.Btn, 0, perRow)
		for _, v := range values[start:end] {
			label := selected(fmt.Sprintf(format, v), v == current)
			btns = append(btns, markup.Data(label, uniqueRemPick, field, strconv.Itoa(v)))
		}
		rows = append(rows, markup.Row(btns...))
	}
	return rows
}

// --- Errors ---

// userMessage maps service errors to the text shown in chat.
func userMessage(err error) string {
	switch {
	case errors.Is(err, app.ErrDuplicateReminder):
		return "이미 같은 시간의 알림이 있습니다."
	case errors.Is(err, reminder.ErrInvalidTime):
		return "알림 시간이 올바르지 않습니다. 예: /remind PM 5 45 (분은 5분 단위)"
	case errors.Is(err, calendar.ErrInvalidMonth):
		return "올바른 달이 아닙니다. 예: /calendar 2024-03"
	case errors.Is(err, category.ErrEmptyTitle), errors.Is(err, task.ErrEmptyTitle):
		return "제목을 입력해 주세요."
	case errors.Is(err, idb.ErrCategoryNotFound):
		return "카테고리를 찾을 수 없습니다."
	case errors.Is(err, idb.ErrTaskNotFound):
		return "할 일을 찾을 수 없습니다."
	case errors.Is(err, idb.ErrReminderNotFound):
		return "알림을 찾을 수 없습니다."
	default:
		return "오류가 발생했습니다. 잠시 후 다시 시도해 주세요."
	}
}
