package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"oneday/internal/app"
	"oneday/internal/domain/calendar"
	"oneday/internal/domain/viewstate"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

type plannerHandlers struct {
	ctx      context.Context
	planner  *app.PlannerService
	sessions *sessionStore
}

// RegisterPlannerHandlers registers the calendar, category and task commands.
func RegisterPlannerHandlers(ctx context.Context, g *telebot.Group, planner *app.PlannerService, sessions *sessionStore, baseLogger *logrus.Entry) {
	h := &plannerHandlers{ctx: ctx, planner: planner, sessions: sessions}

	g.Handle("/calendar", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/calendar", c)
		action := viewstate.Action(viewstate.Init{Today: planner.Today()})
		if args := c.Args(); len(args) > 0 {
			ym, err := calendar.ParseYearMonth(args[0])
			if err != nil {
				handlerLogger.WithField("arg", args[0]).Warn("Invalid month argument")
				return c.Send(userMessage(err))
			}
			action = viewstate.ShowMonth{Month: ym}
		}
		text, markup, err := h.calendar(c.Chat().ID, action)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to build calendar")
			return c.Send(userMessage(err))
		}
		return c.Send(text, markup)
	})

	g.Handle("/today", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/today", c)
		text, markup, err := h.calendar(c.Chat().ID, viewstate.Init{Today: planner.Today()})
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to build calendar")
			return c.Send(userMessage(err))
		}
		if err := c.Send(text, markup); err != nil {
			return err
		}
		day, err := h.day(calendar.DateKey(planner.Today()))
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list today's tasks")
			return c.Send(userMessage(err))
		}
		return c.Send(day)
	})

	g.Handle(&telebot.Btn{Unique: uniqueMonth}, func(c telebot.Context) error {
		ym, err := calendar.ParseYearMonth(c.Data())
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: userMessage(err)})
		}
		return h.editCalendar(c, viewstate.ShowMonth{Month: ym}, baseLogger)
	})

	g.Handle(&telebot.Btn{Unique: uniqueToday}, func(c telebot.Context) error {
		return h.editCalendar(c, viewstate.Init{Today: planner.Today()}, baseLogger)
	})

	g.Handle(&telebot.Btn{Unique: uniqueDay}, func(c telebot.Context) error {
		key := c.Data()
		if err := h.editCalendar(c, viewstate.SelectDate{Key: key}, baseLogger); err != nil {
			return err
		}
		day, err := h.day(key)
		if err != nil {
			baseLogger.WithError(err).WithField("date", key).Error("Failed to list day tasks")
			return c.Send(userMessage(err))
		}
		return c.Send(day)
	})

	g.Handle("/categories", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/categories", c)
		categories, err := planner.ListCategories(ctx)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list categories")
			return c.Send(userMessage(err))
		}
		return c.Send(categoriesText(categories))
	})

	g.Handle("/add_category", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/add_category", c)
		created, err := planner.CreateCategory(ctx, c.Message().Payload)
		if err != nil {
			handlerLogger.WithError(err).Warn("Failed to add category")
			return c.Send(userMessage(err))
		}
		return c.Send(fmt.Sprintf("카테고리 '%s'을(를) 추가했습니다.", created.Title))
	})

	g.Handle("/add_task", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/add_task", c)
		numArg, title, _ := strings.Cut(strings.TrimSpace(c.Message().Payload), " ")
		if numArg == "" || strings.TrimSpace(title) == "" {
			return c.Send("형식: /add_task <카테고리 번호> <할 일>")
		}
		categories, err := planner.ListCategories(ctx)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list categories")
			return c.Send(userMessage(err))
		}
		idx, err := parseIndex(numArg, len(categories))
		if err != nil {
			return c.Send("카테고리 번호가 올바르지 않습니다. /categories 로 확인하세요.")
		}
		created, err := planner.AddTask(ctx, categories[idx].ID, title)
		if err != nil {
			handlerLogger.WithError(err).Warn("Failed to add task")
			return c.Send(userMessage(err))
		}
		return c.Send(fmt.Sprintf("'%s'에 할 일 '%s'을(를) 추가했습니다.", categories[idx].Title, created.Title))
	})

	g.Handle("/tasks", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/tasks", c)
		text, markup, err := h.tasks(c.Chat().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list tasks")
			return c.Send(userMessage(err))
		}
		return c.Send(text, markup)
	})

	g.Handle("/done", func(c telebot.Context) error {
		handlerLogger := commandLogger(baseLogger, "/done", c)
		args := c.Args()
		if len(args) != 1 {
			return c.Send("형식: /done <번호> (번호는 /tasks 목록 기준)")
		}
		var ids []string
		sessions.update(c.Chat().ID, func(cs *chatSession) { ids = cs.taskIDs })
		if ids == nil {
			if _, _, err := h.tasks(c.Chat().ID); err != nil {
				handlerLogger.WithError(err).Error("Failed to list tasks")
				return c.Send(userMessage(err))
			}
			sessions.update(c.Chat().ID, func(cs *chatSession) { ids = cs.taskIDs })
		}
		idx, err := parseIndex(args[0], len(ids))
		if err != nil {
			return c.Send("번호가 올바르지 않습니다. /tasks 로 확인하세요.")
		}
		toggled, err := h.toggle(c.Chat().ID, ids[idx])
		if err != nil {
			handlerLogger.WithError(err).Warn("Failed to toggle task")
			return c.Send(userMessage(err))
		}
		return c.Send(toggleText(toggled.Title, toggled.IsCompleted))
	})

	g.Handle(&telebot.Btn{Unique: uniqueTaskToggle}, func(c telebot.Context) error {
		toggled, err := h.toggle(c.Chat().ID, c.Data())
		if err != nil {
			baseLogger.WithError(err).WithField("task_id", c.Data()).Warn("Failed to toggle task")
			return c.Respond(&telebot.CallbackResponse{Text: userMessage(err)})
		}
		text, markup, err := h.tasks(c.Chat().ID)
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: userMessage(err)})
		}
		if err := c.Edit(text, markup); err != nil {
			baseLogger.WithError(err).Warn("Failed to edit task list")
		}
		return c.Respond(&telebot.CallbackResponse{Text: toggleText(toggled.Title, toggled.IsCompleted)})
	})
}

// calendar applies action to the chat's view and renders the shown month.
func (h *plannerHandlers) calendar(chatID int64, action viewstate.Action) (string, *telebot.ReplyMarkup, error) {
	state := h.sessions.dispatch(chatID, action)
	view, err := h.planner.MonthView(h.ctx, state.Month)
	if err != nil {
		return "", nil, err
	}
	completed := make(map[string]bool)
	for _, cell := range view.Cells {
		if cell.Completed {
			completed[cell.Date] = true
		}
	}
	h.sessions.dispatch(chatID, viewstate.LoadCompleted{Dates: completed})
	return calendarText(view, state.SelectedDate), calendarMarkup(view, state.SelectedDate), nil
}

func (h *plannerHandlers) editCalendar(c telebot.Context, action viewstate.Action, baseLogger *logrus.Entry) error {
	text, markup, err := h.calendar(c.Chat().ID, action)
	if err != nil {
		baseLogger.WithError(err).Error("Failed to build calendar")
		return c.Respond(&telebot.CallbackResponse{Text: userMessage(err)})
	}
	if err := c.Edit(text, markup); err != nil {
		// Telegram refuses edits that change nothing.
		baseLogger.WithError(err).Debug("Calendar edit skipped")
	}
	return c.Respond()
}

func (h *plannerHandlers) day(key string) (string, error) {
	tasks, err := h.planner.ListAllTasks(h.ctx)
	if err != nil {
		return "", err
	}
	return dayText(key, tasks, h.planner.Today().Location()), nil
}

// tasks renders every category with its tasks and remembers the numbering.
func (h *plannerHandlers) tasks(chatID int64) (string, *telebot.ReplyMarkup, error) {
	categories, err := h.planner.ListCategories(h.ctx)
	if err != nil {
		return "", nil, err
	}
	groups := make([]taskGroup, 0, len(categories))
	for _, cat := range categories {
		tasks, err := h.planner.ListTasks(h.ctx, cat.ID)
		if err != nil {
			return "", nil, err
		}
		groups = append(groups, taskGroup{Category: cat, Tasks: tasks})
	}
	text, ids := tasksText(groups)
	h.sessions.update(chatID, func(cs *chatSession) { cs.taskIDs = ids })
	return text, tasksMarkup(groups), nil
}

type toggledTask struct {
	Title       string
	IsCompleted bool
}

// toggle flips a task and mirrors the completion mark into the chat's view.
func (h *plannerHandlers) toggle(chatID int64, taskID string) (toggledTask, error) {
	t, err := h.planner.ToggleTask(h.ctx, taskID)
	if err != nil {
		return toggledTask{}, err
	}
	if key, ok := t.CompletedDateKey(h.planner.Today().Location()); ok {
		h.sessions.dispatch(chatID, viewstate.MarkCompleted{Key: key})
	}
	return toggledTask{Title: t.Title, IsCompleted: t.IsCompleted}, nil
}

func toggleText(title string, completed bool) string {
	if completed {
		return fmt.Sprintf("'%s' 완료!", title)
	}
	return fmt.Sprintf("'%s' 완료를 취소했습니다.", title)
}

// parseIndex converts a 1-based list number into an index below n.
func parseIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", arg)
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("number %d out of range 1-%d", i, n)
	}
	return i - 1, nil
}

func commandLogger(baseLogger *logrus.Entry, command string, c telebot.Context) *logrus.Entry {
	handlerLogger := baseLogger.WithFields(logrus.Fields{
		"handler":   command,
		"sender_id": c.Sender().ID,
	})
	handlerLogger.Info("Command received")
	return handlerLogger
}
