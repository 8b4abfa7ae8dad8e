package reminder

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/robfig/cron/v3"

	"github.com/dkocak/taskdeck/internal/store"
)

// Notifier delivers a desktop notification.
type Notifier func(title, body string) error

func desktopNotify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Scheduler periodically scans the store for due reminders and delivers
// them as desktop notifications. It also sweeps overdue tasks.
type Scheduler struct {
	store    *store.Store
	cron     *cron.Cron
	notify   Notifier
	interval time.Duration
}

func NewScheduler(s *store.Store, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		store:    s,
		cron:     cron.New(cron.WithLocation(time.Local)),
		notify:   desktopNotify,
		interval: interval,
	}
}

// SetNotifier replaces the delivery function (used in tests).
func (sc *Scheduler) SetNotifier(n Notifier) {
	sc.notify = n
}

func (sc *Scheduler) Start() error {
	schedule := fmt.Sprintf("@every %ds", int(sc.interval.Seconds()))
	if _, err := sc.cron.AddFunc(schedule, func() {
		sc.Scan(time.Now())
	}); err != nil {
		return fmt.Errorf("schedule reminder scan: %w", err)
	}
	sc.cron.Start()
	return nil
}

func (sc *Scheduler) Stop() {
	ctx := sc.cron.Stop()
	<-ctx.Done()
}

// Scan runs one sweep: overdue statuses are refreshed, then every armed
// reminder whose trigger time has passed fires exactly once.
func (sc *Scheduler) Scan(now time.Time) (fired int, err error) {
	if _, err := sc.store.SweepOverdue(now); err != nil {
		return 0, err
	}

	candidates, err := sc.store.ListReminderCandidates()
	if err != nil {
		return 0, err
	}

	for _, t := range candidates {
		if !Due(t, now) {
			continue
		}
		if err := sc.notify("taskdeck", notificationBody(t, now)); err != nil {
			// Delivery failed; leave the reminder armed for the next scan.
			continue
		}
		if err := sc.store.MarkNotified(t.ID); err != nil {
			return fired, err
		}
		fired++
	}
	return fired, nil
}

func notificationBody(t store.Task, now time.Time) string {
	if t.DueDate == nil {
		return t.Title
	}
	due := t.DueDate.Local()
	if due.Before(now) {
		return fmt.Sprintf("%s — was due %s", t.Title, due.Format("Jan 2 15:04"))
	}
	return fmt.Sprintf("%s — due %s", t.Title, due.Format("Jan 2 15:04"))
}
