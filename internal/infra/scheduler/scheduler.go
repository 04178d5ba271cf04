package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"oneday/internal/domain/notification"
	"oneday/internal/domain/telegram"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const jobTimeout = 1 * time.Minute

// AlertScheduler arms daily alerts as cron entries and delivers them to the
// owner chat. It also runs maintenance jobs such as the duplicate sweep.
type AlertScheduler struct {
	cronEngine  *cron.Cron
	client      telegram.Client // nil when the bot is disabled; alerts are only logged
	ownerChatID int64
	logger      *logrus.Entry

	mu      sync.Mutex
	entries map[string]cron.EntryID
	alerts  map[string]notification.Alert
}

func NewAlertScheduler(client telegram.Client, ownerChatID int64, loc *time.Location, logger *logrus.Entry) *AlertScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &AlertScheduler{
		cronEngine:  cron.New(cron.WithLocation(loc)),
		client:      client,
		ownerChatID: ownerChatID,
		logger:      logger,
		entries:     make(map[string]cron.EntryID),
		alerts:      make(map[string]notification.Alert),
	}
}

// Schedule arms the alert, replacing any alert with the same identifier.
func (s *AlertScheduler) Schedule(_ context.Context, alert notification.Alert) error {
	spec := cronSpec(alert)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[alert.Identifier]; ok {
		s.cronEngine.Remove(id)
		delete(s.entries, alert.Identifier)
	}

	id, err := s.cronEngine.AddFunc(spec, func() { s.fire(alert.Identifier) })
	if err != nil {
		return fmt.Errorf("failed to schedule alert %s: %w", alert.Identifier, err)
	}
	s.entries[alert.Identifier] = id
	s.alerts[alert.Identifier] = alert
	s.logger.WithFields(logrus.Fields{"identifier": alert.Identifier, "spec": spec}).Debug("Alert armed")
	return nil
}

// Cancel disarms the alert. Unknown identifiers are ignored.
func (s *AlertScheduler) Cancel(identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[identifier]; ok {
		s.cronEngine.Remove(id)
		delete(s.entries, identifier)
		delete(s.alerts, identifier)
		s.logger.WithField("identifier", identifier).Debug("Alert disarmed")
	}
	return nil
}

// Scheduled lists the armed identifiers in sorted order.
func (s *AlertScheduler) Scheduled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Alert returns the armed alert for identifier.
func (s *AlertScheduler) Alert(identifier string) (notification.Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[identifier]
	return a, ok
}

// fire looks the alert up again so a refreshed body is delivered.
func (s *AlertScheduler) fire(identifier string) {
	alert, ok := s.Alert(identifier)
	if !ok {
		return
	}
	log := s.logger.WithField("identifier", identifier)
	if s.client == nil {
		log.Info("Alert fired (bot disabled, not delivered)")
		return
	}
	if err := s.client.SendMessage(s.ownerChatID, alert.Text(), nil); err != nil {
		log.WithError(err).Error("Failed to deliver alert")
		return
	}
	log.Info("Alert delivered")
}

// AddJob registers a maintenance job. Each run gets its own timeout.
func (s *AlertScheduler) AddJob(name, spec string, job func(ctx context.Context) error) error {
	_, err := s.cronEngine.AddFunc(spec, func() {
		log := s.logger.WithField("job", name)
		log.Info("Cron job triggered")
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := job(ctx); err != nil {
			log.WithError(err).Error("Cron job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add %s cron job: %w", name, err)
	}
	return nil
}

func (s *AlertScheduler) Start() {
	s.logger.Info("Starting alert scheduler...")
	s.cronEngine.Start()
}

func (s *AlertScheduler) Stop() {
	s.logger.Info("Stopping alert scheduler...")
	ctx := s.cronEngine.Stop() // Waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Alert scheduler gracefully stopped.")
}

// cronSpec fires every day at the alert's wall-clock time.
func cronSpec(a notification.Alert) string {
	return fmt.Sprintf("%d %d * * *", a.Minute, a.Hour24)
}
