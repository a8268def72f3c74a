package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phocus/phocus/internal/events"
	"github.com/phocus/phocus/internal/models"
	"github.com/phocus/phocus/internal/period"
	"github.com/phocus/phocus/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RolloverWatcher polls the local clock and, when the calendar date
// advances, broadcasts a period-boundary signal and reconciles streaks.
// It owns no other domain mutation; the reconciliation it performs is
// idempotent and re-derivable.
type RolloverWatcher struct {
	users       services.UserRepositoryI
	goalService *services.GoalService
	notifs      *services.NotificationService
	progression *services.ProgressionService
	bus         services.EventPublisher

	mu        sync.Mutex
	lastCheck string // YYYY-MM-DD of the last observed local date
	now       func() time.Time
}

// NewRolloverWatcher creates a new instance of RolloverWatcher.
func NewRolloverWatcher(users services.UserRepositoryI, goalService *services.GoalService, notifs *services.NotificationService, progression *services.ProgressionService, bus services.EventPublisher) *RolloverWatcher {
	w := &RolloverWatcher{
		users:       users,
		goalService: goalService,
		notifs:      notifs,
		progression: progression,
		bus:         bus,
		now:         time.Now,
	}
	w.lastCheck = period.DateKey(w.now())
	return w
}

// Start registers the cron entries: the minute-cadence date watcher and
// the daily due-soon scan.
func (w *RolloverWatcher) Start() *cron.Cron {
	c := cron.New()

	c.AddFunc("@every 1m", func() {
		w.Check(context.Background())
	})

	c.AddFunc("0 9 * * *", func() {
		if err := w.RunDueSoonScan(context.Background()); err != nil {
			logrus.WithError(err).Error("Due-soon scan failed")
		}
	})

	c.Start()
	return c
}

// Check compares the local date against the last observed one. On a
// rollover it publishes the boundary event and sweeps user streaks.
// Returns true if a rollover was detected.
func (w *RolloverWatcher) Check(ctx context.Context) bool {
	now := w.now()
	today := period.DateKey(now)

	w.mu.Lock()
	if today == w.lastCheck {
		w.mu.Unlock()
		return false
	}
	w.lastCheck = today
	w.mu.Unlock()

	logrus.WithField("date", today).Info("New day detected")
	w.bus.Publish(events.Event{Type: events.PeriodRollover, Period: "daily", At: now})

	w.reconcileStreaks(ctx, now)
	return true
}

func (w *RolloverWatcher) reconcileStreaks(ctx context.Context, now time.Time) {
	users, err := w.users.GetAllUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("Streak reconciliation sweep failed to list users")
		return
	}

	for i := range users {
		user := &users[i]
		if w.progression.ReconcileStreak(user, now) {
			if _, err := w.users.UpdateUser(ctx, user.ID, user); err != nil {
				logrus.WithError(err).WithField("userID", user.ID.Hex()).Warn("Failed to persist reconciled streak")
			}
		}
	}
}

// RunDueSoonScan files reminders for user goals due within 24 hours.
func (w *RolloverWatcher) RunDueSoonScan(ctx context.Context) error {
	goals, err := w.goalService.GetAllGoals(ctx, 500)
	if err != nil {
		return fmt.Errorf("failed to fetch goals: %v", err)
	}

	now := w.now()
	tomorrow := now.Add(24 * time.Hour)

	for _, goal := range goals {
		if goal.OwnerType != models.OwnerUser || goal.Completed() {
			continue
		}
		if goal.DueDate.IsZero() || !goal.DueDate.After(now) || !goal.DueDate.Before(tomorrow) {
			continue
		}
		goalID := goal.ID
		_ = w.notifs.CreateNotification(
			ctx,
			goal.OwnerID,
			"goal_due_soon",
			"Goal Due Soon",
			fmt.Sprintf("Your goal %q is due by %s.", goal.Title, goal.DueDate.Format("Jan 2")),
			&goalID,
		)
	}

	logrus.Info("Due-soon scan completed")
	return nil
}
