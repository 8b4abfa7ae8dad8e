package reminder

import (
	"fmt"
	"time"

	"github.com/dkocak/taskdeck/internal/store"
)

// LeadTime is a minutes-before-due offset a user can pick for a task reminder.
type LeadTime struct {
	Minutes int
	Label   string
}

// LeadTimes lists the selectable reminder offsets, nearest first.
var LeadTimes = []LeadTime{
	{0, "at due time"},
	{5, "5 minutes before"},
	{10, "10 minutes before"},
	{15, "15 minutes before"},
	{30, "30 minutes before"},
	{60, "1 hour before"},
	{120, "2 hours before"},
	{1440, "1 day before"},
}

// TriggerTime computes when a reminder fires for a task due at due.
func TriggerTime(due time.Time, leadMinutes int) time.Time {
	return due.Add(-time.Duration(leadMinutes) * time.Minute)
}

// ValidLeadTimes returns the offsets whose trigger time is still in the
// future at now. The list shrinks as the due date approaches; a due date
// already in the past yields nothing.
func ValidLeadTimes(due, now time.Time) []LeadTime {
	var valid []LeadTime
	for _, lt := range LeadTimes {
		if TriggerTime(due, lt.Minutes).After(now) {
			valid = append(valid, lt)
		}
	}
	return valid
}

// Due reports whether the task's reminder should fire at now.
func Due(t store.Task, now time.Time) bool {
	if !t.Notify || t.Notified || t.DueDate == nil {
		return false
	}
	if t.Status != store.StatusUpcoming && t.Status != store.StatusOverdue {
		return false
	}
	return !TriggerTime(*t.DueDate, t.LeadMinutes).After(now)
}

// Action tells the caller what to do with a task's scheduled reminder after
// an edit.
type Action int

const (
	// Keep leaves the scheduled reminder untouched.
	Keep Action = iota
	// Cancel disarms the reminder.
	Cancel
	// Reschedule re-arms the reminder against the new trigger time.
	Reschedule
)

func (a Action) String() string {
	switch a {
	case Keep:
		return "keep"
	case Cancel:
		return "cancel"
	case Reschedule:
		return "reschedule"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Reconcile decides the fate of a previously scheduled reminder when a task
// is edited from old to new.
func Reconcile(old, new store.Task) Action {
	armed := new.Notify && new.DueDate != nil &&
		(new.Status == store.StatusUpcoming || new.Status == store.StatusOverdue)
	if !armed {
		return Cancel
	}

	wasArmed := old.Notify && old.DueDate != nil &&
		(old.Status == store.StatusUpcoming || old.Status == store.StatusOverdue)
	if !wasArmed {
		return Reschedule
	}

	if !old.DueDate.Equal(*new.DueDate) || old.LeadMinutes != new.LeadMinutes {
		return Reschedule
	}
	return Keep
}

// Apply writes the outcome of Reconcile back to the store: rescheduled
// reminders are re-armed, canceled ones disarmed so the scan skips them.
func Apply(s *store.Store, taskID int64, a Action) error {
	switch a {
	case Reschedule:
		return s.SetNotified(taskID, false)
	case Cancel:
		return s.SetNotified(taskID, true)
	default:
		return nil
	}
}
