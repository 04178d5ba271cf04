package app

import (
	"context"
	"errors"
	"fmt"

	"oneday/internal/domain/notification"
	"oneday/internal/domain/reminder"
	"oneday/internal/domain/task"
	idb "oneday/internal/infra/database"

	"github.com/sirupsen/logrus"
)

var ErrDuplicateReminder = fmt.Errorf("a reminder with this time already exists")

// ReminderService keeps stored reminders and armed alerts in step.
type ReminderService struct {
	repo      reminder.Repository
	tasks     task.Repository
	scheduler notification.Scheduler
	logger    *logrus.Entry
}

func NewReminderService(repo reminder.Repository, tasks task.Repository, scheduler notification.Scheduler, logger *logrus.Entry) *ReminderService {
	return &ReminderService{repo: repo, tasks: tasks, scheduler: scheduler, logger: logger}
}

func (s *ReminderService) List(ctx context.Context) ([]*reminder.Reminder, error) {
	reminders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

func (s *ReminderService) Get(ctx context.Context, id string) (*reminder.Reminder, error) {
	return s.repo.GetByID(ctx, id)
}

// Check runs the strict duplicate check without saving.
func (s *ReminderService) Check(ctx context.Context, candidate reminder.Time, editingID string) (reminder.SaveDecision, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return reminder.SaveDecision{}, err
	}
	return reminder.ResolveSave(existing, candidate, editingID)
}

// Create stores a new reminder and arms its alert. A time that is already
// taken yields ErrDuplicateReminder.
func (s *ReminderService) Create(ctx context.Context, t reminder.Time) (*reminder.Reminder, error) {
	decision, err := s.Check(ctx, t, "")
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		s.logDuplicate(t, decision)
		return nil, ErrDuplicateReminder
	}

	rem := &reminder.Reminder{Time: t}
	if err := s.repo.Create(ctx, rem); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	if err := s.arm(ctx, t); err != nil {
		return rem, err
	}
	s.logger.WithFields(logrus.Fields{"reminder_id": rem.ID, "time": t.String()}).Info("Reminder created")
	return rem, nil
}

// Update moves a reminder to a new time. The reminder's own record does not
// count as a duplicate.
func (s *ReminderService) Update(ctx context.Context, id string, t reminder.Time) (*reminder.Reminder, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	current := findByID(existing, id)
	if current == nil {
		return nil, idb.ErrReminderNotFound
	}

	decision, err := reminder.ResolveSave(existing, t, id)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		s.logDuplicate(t, decision)
		return nil, ErrDuplicateReminder
	}

	previous := current.Time
	current.Time = t
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	if previous != t && !timeTaken(existing, previous, id) {
		if err := s.scheduler.Cancel(previous.Identifier()); err != nil {
			return current, fmt.Errorf("failed to cancel alert %s: %w", previous.Identifier(), err)
		}
	}
	if err := s.arm(ctx, t); err != nil {
		return current, err
	}
	s.logger.WithFields(logrus.Fields{
		"reminder_id": id,
		"from":        previous.String(),
		"to":          t.String(),
	}).Info("Reminder updated")
	return current, nil
}

// Delete removes a reminder. Its alert stays armed while another record
// still holds the same time.
func (s *ReminderService) Delete(ctx context.Context, id string) error {
	existing, err := s.List(ctx)
	if err != nil {
		return err
	}
	current := findByID(existing, id)
	if current == nil {
		return idb.ErrReminderNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if !timeTaken(existing, current.Time, id) {
		if err := s.scheduler.Cancel(current.Time.Identifier()); err != nil {
			return fmt.Errorf("failed to cancel alert %s: %w", current.Time.Identifier(), err)
		}
	}
	s.logger.WithField("reminder_id", id).Info("Reminder deleted")
	return nil
}

// Sweep deletes every reminder that is not the first of its time by arrival
// order and re-arms the survivors. It returns the deleted ids.
func (s *ReminderService) Sweep(ctx context.Context) ([]string, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	redundant := reminder.Sweep(existing)
	for _, id := range redundant {
		if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, idb.ErrReminderNotFound) {
			return nil, fmt.Errorf("failed to delete duplicate reminder %s: %w", id, err)
		}
	}
	if len(redundant) > 0 {
		s.logger.WithField("deleted", len(redundant)).Info("Duplicate reminders swept")
	}
	if err := s.ArmAll(ctx); err != nil {
		return redundant, err
	}
	return redundant, nil
}

// ArmAll schedules an alert for every stored reminder with a fresh body and
// disarms alerts whose reminder no longer exists.
func (s *ReminderService) ArmAll(ctx context.Context) error {
	reminders, err := s.List(ctx)
	if err != nil {
		return err
	}
	body, err := s.body(ctx)
	if err != nil {
		return err
	}

	wanted := make(map[string]bool, len(reminders))
	for _, r := range reminders {
		id := r.Time.Identifier()
		if wanted[id] {
			continue
		}
		wanted[id] = true
		if err := s.scheduler.Schedule(ctx, notification.AlertFor(r.Time, body)); err != nil {
			return fmt.Errorf("failed to arm alert %s: %w", id, err)
		}
	}
	for _, id := range s.scheduler.Scheduled() {
		if !wanted[id] {
			if err := s.scheduler.Cancel(id); err != nil {
				return fmt.Errorf("failed to cancel stale alert %s: %w", id, err)
			}
		}
	}
	s.logger.WithField("armed", len(wanted)).Debug("Alerts armed")
	return nil
}

// RefreshBodies re-arms every alert so it lists the current tasks.
func (s *ReminderService) RefreshBodies(ctx context.Context) error {
	return s.ArmAll(ctx)
}

func (s *ReminderService) arm(ctx context.Context, t reminder.Time) error {
	body, err := s.body(ctx)
	if err != nil {
		return err
	}
	if err := s.scheduler.Schedule(ctx, notification.AlertFor(t, body)); err != nil {
		return fmt.Errorf("failed to arm alert %s: %w", t.Identifier(), err)
	}
	return nil
}

func (s *ReminderService) body(ctx context.Context) (string, error) {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load tasks for alert body: %w", err)
	}
	return notification.BuildBody(task.Titles(tasks)), nil
}

func (s *ReminderService) logDuplicate(t reminder.Time, decision reminder.SaveDecision) {
	entry := s.logger.WithField("time", t.String())
	if len(decision.DeleteIDs) > 0 {
		entry = entry.WithField("redundant_ids", decision.DeleteIDs)
	}
	entry.Info("Reminder save refused: duplicate time")
}

func findByID(reminders []*reminder.Reminder, id string) *reminder.Reminder {
	for _, r := range reminders {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// timeTaken reports whether a record other than exceptID holds t.
func timeTaken(reminders []*reminder.Reminder, t reminder.Time, exceptID string) bool {
	for _, r := range reminders {
		if r.ID != exceptID && r.Time == t {
			return true
		}
	}
	return false
}
