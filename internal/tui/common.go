package tui

import (
	"fmt"
	"time"

	"github.com/dkocak/taskdeck/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTasks viewState = iota
	viewWeek
	viewBoard
	viewMonth
	viewStats
)

var viewNames = []string{"Tasks", "Week", "Board", "Month", "Stats"}

// --- Messages ---

type loggedInMsg struct {
	user *store.User
}

type tasksDataMsg struct {
	tasks      []store.Task
	categories []store.Category
}

type weekDataMsg struct {
	start time.Time
	days  [7][]store.Task
}

type boardDataMsg struct {
	columns [4][]store.Task
}

type monthDataMsg struct {
	month  time.Time
	counts map[string]int
	done   map[string]int
}

type statsDataMsg struct {
	summaries []store.DailyCompletion
	totals    []store.CategoryTotal
	counts    map[string]int
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func statusIcon(status string) string {
	switch status {
	case store.StatusCompleted:
		return "✓"
	case store.StatusOverdue:
		return "!"
	case store.StatusCanceled:
		return "✗"
	default:
		return "○"
	}
}

func statusLabel(status string) string {
	switch status {
	case store.StatusUpcoming:
		return "Upcoming"
	case store.StatusOverdue:
		return "Overdue"
	case store.StatusCompleted:
		return "Completed"
	case store.StatusCanceled:
		return "Canceled"
	default:
		return status
	}
}

func formatDue(due *time.Time, now time.Time) string {
	if due == nil {
		return ""
	}
	d := due.Local()
	switch {
	case d.Before(now):
		return d.Format("Jan 02 15:04") + " (overdue)"
	case d.Sub(now) < 24*time.Hour:
		return d.Format("15:04 today")
	default:
		return d.Format("Jan 02 15:04")
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the most recent week boundary at or before t.
func startOfWeek(t time.Time, weekStart string) time.Time {
	day := startOfDay(t)
	first := time.Monday
	if weekStart == "sunday" {
		first = time.Sunday
	}
	diff := (int(day.Weekday()) - int(first) + 7) % 7
	return day.AddDate(0, 0, -diff)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
