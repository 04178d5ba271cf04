package httpapi

import (
	"errors"
	"net/http"
	"time"

	"oneday/internal/app"
	"oneday/internal/domain/calendar"
	"oneday/internal/domain/category"
	"oneday/internal/domain/reminder"
	"oneday/internal/domain/task"
	idb "oneday/internal/infra/database"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type handlers struct {
	planner   *app.PlannerService
	reminders *app.ReminderService
	logger    *logrus.Entry
}

type titleRequest struct {
	Title string `json:"title"`
}

type checkRequest struct {
	reminder.Time
	EditingID string `json:"editing_id"`
}

type categoryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type taskResponse struct {
	ID          string     `json:"id"`
	CategoryID  string     `json:"category_id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type reminderResponse struct {
	ID         string    `json:"id"`
	Meridiem   string    `json:"meridiem"`
	Hour       int       `json:"hour"`
	Minute     int       `json:"minute"`
	Identifier string    `json:"identifier"`
	Label      string    `json:"label"`
	CreatedAt  time.Time `json:"created_at"`
}

func toCategoryResponse(c *category.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt}
}

func toTaskResponse(t *task.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		CategoryID:  t.CategoryID,
		Title:       t.Title,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
	}
	if t.CompletedAt.Valid {
		completedAt := t.CompletedAt.Time
		resp.CompletedAt = &completedAt
	}
	return resp
}

func toReminderResponse(r *reminder.Reminder) reminderResponse {
	return reminderResponse{
		ID:         r.ID,
		Meridiem:   string(r.Time.Meridiem),
		Hour:       r.Time.Hour,
		Minute:     r.Time.Minute,
		Identifier: r.Time.Identifier(),
		Label:      r.Time.Label(),
		CreatedAt:  r.CreatedAt,
	}
}

// writeError maps service errors to status codes.
func (h *handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, calendar.ErrInvalidMonth),
		errors.Is(err, reminder.ErrInvalidTime),
		errors.Is(err, category.ErrEmptyTitle),
		errors.Is(err, task.ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, idb.ErrCategoryNotFound),
		errors.Is(err, idb.ErrTaskNotFound),
		errors.Is(err, idb.ErrReminderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app.ErrDuplicateReminder):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
	}
}

func (h *handlers) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// --- Calendar ---

func (h *handlers) getCalendar(c *gin.Context) {
	ym, err := calendar.ParseYearMonth(c.Param("month"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	view, err := h.planner.MonthView(c.Request.Context(), ym)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// --- Categories ---

func (h *handlers) listCategories(c *gin.Context) {
	categories, err := h.planner.ListCategories(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		resp = append(resp, toCategoryResponse(cat))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) createCategory(c *gin.Context) {
	var req titleRequest
	if !h.bind(c, &req) {
		return
	}
	created, err := h.planner.CreateCategory(c.Request.Context(), req.Title)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCategoryResponse(created))
}

func (h *handlers) renameCategory(c *gin.Context) {
	var req titleRequest
	if !h.bind(c, &req) {
		return
	}
	updated, err := h.planner.RenameCategory(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryResponse(updated))
}

func (h *handlers) deleteCategory(c *gin.Context) {
	if err := h.planner.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Tasks ---

func (h *handlers) listTasks(c *gin.Context) {
	tasks, err := h.planner.ListTasks(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toTaskResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) createTask(c *gin.Context) {
	var req titleRequest
	if !h.bind(c, &req) {
		return
	}
	created, err := h.planner.AddTask(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTaskResponse(created))
}

func (h *handlers) renameTask(c *gin.Context) {
	var req titleRequest
	if !h.bind(c, &req) {
		return
	}
	updated, err := h.planner.RenameTask(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(updated))
}

func (h *handlers) deleteTask(c *gin.Context) {
	if err := h.planner.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) toggleTask(c *gin.Context) {
	toggled, err := h.planner.ToggleTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(toggled))
}

// --- Reminders ---

func (h *handlers) listReminders(c *gin.Context) {
	reminders, err := h.reminders.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]reminderResponse, 0, len(reminders))
	for _, r := range reminders {
		resp = append(resp, toReminderResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) createReminder(c *gin.Context) {
	var req reminder.Time
	if !h.bind(c, &req) {
		return
	}
	created, err := h.reminders.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReminderResponse(created))
}

func (h *handlers) checkReminder(c *gin.Context) {
	var req checkRequest
	if !h.bind(c, &req) {
		return
	}
	decision, err := h.reminders.Check(c.Request.Context(), req.Time, req.EditingID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	deleteIDs := decision.DeleteIDs
	if deleteIDs == nil {
		deleteIDs = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"allowed": decision.Allowed, "delete_ids": deleteIDs})
}

func (h *handlers) updateReminder(c *gin.Context) {
	var req reminder.Time
	if !h.bind(c, &req) {
		return
	}
	updated, err := h.reminders.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReminderResponse(updated))
}

func (h *handlers) deleteReminder(c *gin.Context) {
	if err := h.reminders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) sweepReminders(c *gin.Context) {
	deleted, err := h.reminders.Sweep(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if deleted == nil {
		deleted = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"deleted_ids": deleted})
}
