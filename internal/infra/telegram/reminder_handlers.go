package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"oneday/internal/app"
	"oneday/internal/domain/reminder"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

var errNoPicker = errors.New("no reminder picker open")

// RegisterReminderHandlers registers the reminder commands and the inline
// time picker.
func RegisterReminderHandlers(ctx context.Context, g *telebot.Group, reminders *app.ReminderService, sessions *sessionStore, baseLogger *logrus.Entry) {
	g.Handle("/reminders", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/reminders", c)
		list, err := reminders.List(ctx)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list reminders")
			return c.Send(userMessage(err))
		}
		return c.Send(remindersText(list), remindersMarkup(list))
	})

	g.Handle("/remind", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/remind", c)
		args := c.Args()
		if len(args) == 0 {
			text, markup, err := openPicker(ctx, reminders, sessions, c.Chat().ID, "")
			if err != nil {
				handlerLogger.WithError(err).Error("Failed to open reminder picker")
				return c.Send(userMessage(err))
			}
			return c.Send(text, markup)
		}

		t, err := parseRemindArgs(args)
		if err != nil {
			handlerLogger.WithField("args", args).Warn("Invalid reminder time")
			return c.Send(userMessage(err))
		}
		created, err := reminders.Create(ctx, t)
		if err != nil {
			handlerLogger.WithError(err).Warn("Failed to create reminder")
			return c.Send(userMessage(err))
		}
		return c.Send(fmt.Sprintf("매일 %s에 알려 드릴게요.", created.Time.Label()))
	})

	g.Handle("/unremind", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/unremind", c)
		args := c.Args()
		if len(args) != 1 {
			return c.Send("형식: /unremind <번호> (번호는 /reminders 목록 기준)")
		}
		list, err := reminders.List(ctx)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list reminders")
			return c.Send(userMessage(err))
		}
		idx, err := parseIndex(args[0], len(list))
		if err != nil {
			return c.Send("번호가 올바르지 않습니다. /reminders 로 확인하세요.")
		}
		if err := reminders.Delete(ctx, list[idx].ID); err != nil {
			handlerLogger.WithError(err).Warn("Failed to delete reminder")
			return c.Send(userMessage(err))
		}
		return c.Send(fmt.Sprintf("%s 알림을 삭제했습니다.", list[idx].Time.Label()))
	})

	g.Handle("/sweep", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/sweep", c)
		deleted, err := reminders.Sweep(ctx)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to sweep reminders")
			return c.Send(userMessage(err))
		}
		if len(deleted) == 0 {
			return c.Send("중복된 알림이 없습니다.")
		}
		return c.Send(fmt.Sprintf("중복된 알림 %d개를 정리했습니다.", len(deleted)))
	})

	g.Handle(&telebot.Btn{Unique: uniqueRemNew}, func(c telebot.Context) error {
		return respondPicker(ctx, c, reminders, sessions, "", baseLogger)
	})

	g.Handle(&telebot.Btn{Unique: uniqueRemEdit}, func(c telebot.Context) error {
		return respondPicker(ctx, c, reminders, sessions, c.Data(), baseLogger)
	})

	g.Handle(&telebot.Btn{Unique: uniqueRemDelete}, func(c telebot.Context) error {
		id := c.Data()
		if err := reminders.Delete(ctx, id); err != nil {
			baseLogger.WithError(err).WithField("reminder_id", id).Warn("Failed to delete reminder")
			return c.Respond(&telebot.CallbackResponse{Text: userMessage(err)})
		}
		list, err := reminders.List(ctx)
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: userMessage(err)})
		}
		if err := c.Edit(remindersText(list), remindersMarkup(list)); err != nil {
			baseLogger.WithError(err).Warn("Failed to edit reminder list")
		}
		return c.Respond(&telebot.CallbackResponse{Text: "삭제했습니다."})
	})

	g.Handle(&telebot.Btn{Unique: uniqueRemPick}, func(c telebot.Context) error {
		args := c.Args()
		var text string
		var markup *telebot.ReplyMarkup
		var err error
		sessions.update(c.Chat().ID, func(cs *chatSession) {
			if cs.picker == nil {
				err = errNoPicker
				return
			}
			if err = applyPick(cs.picker, args); err == nil {
				text, markup = pickerText(cs.picker), pickerMarkup(cs.picker)
			}
		})
		if errors.Is(err, errNoPicker) {
			return c.Respond(&telebot.CallbackResponse{Text: "시간 선택이 만료되었습니다. /remind 로 다시 시작하세요."})
		}
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: userMessage(err)})
		}
		if err := c.Edit(text, markup); err != nil {
			baseLogger.WithError(err).Debug("Picker edit skipped")
		}
		return c.Respond()
	})

	g.Handle(&telebot.Btn{Unique: uniqueRemSave}, func(c telebot.Context) error {
		chatID := c.Chat().ID
		picked, err := savePicked(ctx, reminders, sessions, chatID)
		log := baseLogger.WithFields(logrus.Fields{"time": picked.String(), "chat_id": chatID})
		switch {
		case errors.Is(err, errNoPicker):
			return c.Respond(&telebot.CallbackResponse{Text: "시간 선택이 만료되었습니다. /remind 로 다시 시작하세요."})
		case errors.Is(err, reminder.ErrDuplicate), errors.Is(err, app.ErrDuplicateReminder):
			var text string
			var markup *telebot.ReplyMarkup
			sessions.update(chatID, func(cs *chatSession) {
				if cs.picker != nil {
					text, markup = pickerText(cs.picker), pickerMarkup(cs.picker)
				}
			})
			if text != "" {
				if err := c.Edit(text, markup); err != nil {
					log.WithError(err).Debug("Picker edit skipped")
				}
			}
			return c.Respond(&telebot.CallbackResponse{Text: userMessage(app.ErrDuplicateReminder), ShowAlert: true})
		case err != nil:
			log.WithError(err).Warn("Failed to save reminder from picker")
			return c.Respond(&telebot.CallbackResponse{Text: userMessage(err), ShowAlert: true})
		}

		if err := c.Edit(fmt.Sprintf("매일 %s에 알려 드릴게요.", picked.Label())); err != nil {
			log.WithError(err).Debug("Picker edit skipped")
		}
		return c.Respond(&telebot.CallbackResponse{Text: "저장했습니다."})
	})

	g.Handle(&telebot.Btn{Unique: uniqueRemCancel}, func(c telebot.Context) error {
		sessions.update(c.Chat().ID, func(cs *chatSession) {
			if cs.picker != nil {
				cs.picker.Cancel()
				cs.picker = nil
			}
		})
		if err := c.Edit("알림 설정을 취소했습니다."); err != nil {
			baseLogger.WithError(err).Debug("Picker edit skipped")
		}
		return c.Respond()
	})
}

// openPicker starts a picker session for a new reminder or, with editingID,
// for an existing one.
func openPicker(ctx context.Context, reminders *app.ReminderService, sessions *sessionStore, chatID int64, editingID string) (string, *telebot.ReplyMarkup, error) {
	existing, err := reminders.List(ctx)
	if err != nil {
		return "", nil, err
	}
	var editing *reminder.Reminder
	if editingID != "" {
		if editing, err = reminders.Get(ctx, editingID); err != nil {
			return "", nil, err
		}
	}
	picker := reminder.NewSession()
	if err := picker.Begin(existing, editing); err != nil {
		return "", nil, err
	}
	sessions.update(chatID, func(cs *chatSession) { cs.picker = picker })
	return pickerText(picker), pickerMarkup(picker), nil
}

func respondPicker(ctx context.Context, c telebot.Context, reminders *app.ReminderService, sessions *sessionStore, editingID string, baseLogger *logrus.Entry) error {
	text, markup, err := openPicker(ctx, reminders, sessions, c.Chat().ID, editingID)
	if err != nil {
		baseLogger.WithError(err).WithField("editing_id", editingID).Warn("Failed to open reminder picker")
		return c.Respond(&telebot.CallbackResponse{Text: userMessage(err)})
	}
	if err := c.Send(text, markup); err != nil {
		return err
	}
	return c.Respond()
}

// savePicked stores the picker's selection. The picker stays open until the
// store accepts the time; when the store reports a duplicate the picker is
// re-checked against a fresh list so the user can pick again.
func savePicked(ctx context.Context, reminders *app.ReminderService, sessions *sessionStore, chatID int64) (reminder.Time, error) {
	var picker *reminder.Session
	var picked reminder.Time
	var err error
	sessions.update(chatID, func(cs *chatSession) {
		switch {
		case cs.picker == nil:
			err = errNoPicker
		case cs.picker.State() == reminder.StateDuplicate:
			err = fmt.Errorf("%w: %s", reminder.ErrDuplicate, cs.picker.Time())
		case !cs.picker.CanSave():
			err = reminder.ErrNotEditing
		default:
			picker, picked = cs.picker, cs.picker.Time()
		}
	})
	if err != nil {
		return picked, err
	}

	if editingID := picker.EditingID(); editingID != "" {
		_, err = reminders.Update(ctx, editingID, picked)
	} else {
		_, err = reminders.Create(ctx, picked)
	}
	if errors.Is(err, app.ErrDuplicateReminder) {
		existing, listErr := reminders.List(ctx)
		if listErr != nil {
			return picked, err
		}
		sessions.update(chatID, func(cs *chatSession) {
			if cs.picker == picker {
				_ = picker.Refresh(existing)
			}
		})
		return picked, err
	}
	if err != nil {
		return picked, err
	}

	sessions.update(chatID, func(cs *chatSession) {
		if cs.picker == picker {
			_, _ = picker.Save()
			cs.picker = nil
		}
	})
	return picked, nil
}

// applyPick feeds one picker button ("m|PM", "h|5", "n|45") into the session.
func applyPick(s *reminder.Session, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: malformed picker data %q", reminder.ErrInvalidTime, strings.Join(args, "|"))
	}
	switch args[0] {
	case "m":
		m, err := reminder.ParseMeridiem(args[1])
		if err != nil {
			return err
		}
		return s.SelectMeridiem(m)
	case "h", "n":
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: %q", reminder.ErrInvalidTime, args[1])
		}
		if args[0] == "h" {
			return s.SelectHour(v)
		}
		return s.SelectMinute(v)
	default:
		return fmt.Errorf("%w: unknown picker field %q", reminder.ErrInvalidTime, args[0])
	}
}

// parseRemindArgs accepts "PM 5 45", "PM 5:45" and "오후 5 45".
func parseRemindArgs(args []string) (reminder.Time, error) {
	switch len(args) {
	case 2:
		return reminder.Parse(args[0] + " " + args[1])
	case 3:
		return reminder.Parse(args[0] + " " + args[1] + ":" + args[2])
	default:
		return reminder.Time{}, fmt.Errorf("%w: expected <AM|PM> <hour> <minute>", reminder.ErrInvalidTime)
	}
}
