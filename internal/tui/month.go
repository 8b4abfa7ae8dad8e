package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkocak/taskdeck/internal/store"
)

type monthModel struct {
	store     *store.Store
	userID    int64
	weekStart string
	width     int
	height    int

	offset int // months relative to the current one
	month  time.Time
	counts map[string]int // date string -> open tasks due
	done   map[string]int // date string -> completed/canceled tasks due
}

func newMonthModel(s *store.Store, userID int64, weekStart string) monthModel {
	return monthModel{store: s, userID: userID, weekStart: weekStart}
}

func (m *monthModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *monthModel) setUser(userID int64) {
	m.userID = userID
}

func (m monthModel) firstOfMonth() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local).AddDate(0, m.offset, 0)
}

func (m monthModel) refresh() tea.Cmd {
	first := m.firstOfMonth()
	next := first.AddDate(0, 1, 0)
	filter := store.TaskFilter{UserID: m.userID, DueFrom: &first, DueTo: &next}
	return func() tea.Msg {
		tasks, _ := m.store.ListTasks(filter)
		counts := make(map[string]int)
		done := make(map[string]int)
		for _, t := range tasks {
			if t.DueDate == nil {
				continue
			}
			day := t.DueDate.Local().Format("2006-01-02")
			if t.Status == store.StatusCompleted || t.Status == store.StatusCanceled {
				done[day]++
			} else {
				counts[day]++
			}
		}
		return monthDataMsg{month: first, counts: counts, done: done}
	}
}

func (m monthModel) update(msg tea.Msg) (monthModel, tea.Cmd) {
	switch msg := msg.(type) {
	case monthDataMsg:
		m.month = msg.month
		m.counts = msg.counts
		m.done = msg.done
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			m.offset--
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			m.offset++
			return m, m.refresh()
		case key.Matches(msg, keys.Back):
			if m.offset != 0 {
				m.offset = 0
				return m, m.refresh()
			}
		}
	}
	return m, nil
}

func (m monthModel) view() string {
	w := m.width - 4
	first := m.firstOfMonth()

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Month"), "  ", mutedStyle.Render(first.Format("January 2006")),
	)

	cellWidth := max(min(w/7-1, 12), 8)
	today := startOfDay(time.Now())

	// Weekday header row following the configured week start.
	firstDay := time.Monday
	if m.weekStart == "sunday" {
		firstDay = time.Sunday
	}
	var heads []string
	for i := 0; i < 7; i++ {
		d := time.Weekday((int(firstDay) + i) % 7)
		heads = append(heads, mutedStyle.Width(cellWidth).Render(d.String()[:3]))
	}
	headRow := lipgloss.JoinHorizontal(lipgloss.Bottom, heads...)

	// Leading blanks before day 1.
	lead := (int(first.Weekday()) - int(firstDay) + 7) % 7
	daysTotal := first.AddDate(0, 1, -1).Day()

	var weeks []string
	var cells []string
	for i := 0; i < lead; i++ {
		cells = append(cells, lipgloss.NewStyle().Width(cellWidth).Render(""))
	}
	for day := 1; day <= daysTotal; day++ {
		date := time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.Local)
		dateStr := date.Format("2006-01-02")

		label := fmt.Sprintf("%2d", day)
		style := normalItemStyle
		if date.Equal(today) {
			style = selectedItemStyle
		}
		cell := style.Render(label)
		if n := m.counts[dateStr]; n > 0 {
			cell += " " + warningStyle.Render(fmt.Sprintf("●%d", n))
		}
		if n := m.done[dateStr]; n > 0 {
			cell += " " + successStyle.Render(fmt.Sprintf("✓%d", n))
		}
		cells = append(cells, lipgloss.NewStyle().Width(cellWidth).Render(cell))

		if len(cells) == 7 {
			weeks = append(weeks, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
			cells = nil
		}
	}
	if len(cells) > 0 {
		for len(cells) < 7 {
			cells = append(cells, lipgloss.NewStyle().Width(cellWidth).Render(""))
		}
		weeks = append(weeks, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	grid := strings.Join(weeks, "\n")
	legend := mutedStyle.Render("  ● due  ✓ done   ←/→: change month  esc: this month")

	content := lipgloss.JoinVertical(lipgloss.Left, header, "", headRow, grid, "", legend)
	return panelStyle.Width(w).Render(content)
}
