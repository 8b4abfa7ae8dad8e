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

type weekModel struct {
	store     *store.Store
	userID    int64
	weekStart string
	width     int
	height    int

	offset int // weeks relative to the current one (negative = past)
	start  time.Time
	days   [7][]store.Task
}

func newWeekModel(s *store.Store, userID int64, weekStart string) weekModel {
	return weekModel{store: s, userID: userID, weekStart: weekStart}
}

func (m *weekModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *weekModel) setUser(userID int64) {
	m.userID = userID
}

func (m weekModel) rangeStart() time.Time {
	return startOfWeek(time.Now(), m.weekStart).AddDate(0, 0, 7*m.offset)
}

func (m weekModel) refresh() tea.Cmd {
	start := m.rangeStart()
	end := start.AddDate(0, 0, 7)
	filter := store.TaskFilter{UserID: m.userID, DueFrom: &start, DueTo: &end}
	return func() tea.Msg {
		tasks, _ := m.store.ListTasks(filter)
		var days [7][]store.Task
		for _, t := range tasks {
			if t.DueDate == nil {
				continue
			}
			idx := int(startOfDay(t.DueDate.Local()).Sub(start).Hours() / 24)
			if idx >= 0 && idx < 7 {
				days[idx] = append(days[idx], t)
			}
		}
		return weekDataMsg{start: start, days: days}
	}
}

func (m weekModel) update(msg tea.Msg) (weekModel, tea.Cmd) {
	switch msg := msg.(type) {
	case weekDataMsg:
		m.start = msg.start
		m.days = msg.days
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

func (m weekModel) view() string {
	w := m.width - 4
	start := m.rangeStart()
	end := start.AddDate(0, 0, 6)

	label := fmt.Sprintf("%s — %s", start.Format("Jan 02"), end.Format("Jan 02, 2006"))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Week"), "  ", mutedStyle.Render(label),
	)

	colWidth := max(w/7-2, 10)
	today := startOfDay(time.Now())

	var columns []string
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		style := columnStyle
		if day.Equal(today) {
			style = activeColumnStyle
		}

		var rows []string
		dayTitle := day.Format("Mon 02")
		if day.Equal(today) {
			rows = append(rows, highlightStyle.Bold(true).Render(dayTitle))
		} else {
			rows = append(rows, titleStyle.Render(dayTitle))
		}

		if len(m.days[i]) == 0 {
			rows = append(rows, mutedStyle.Render("—"))
		}
		for _, t := range m.days[i] {
			icon := statusIcon(t.Status)
			line := fmt.Sprintf("%s %s", icon, truncate(t.Title, colWidth-4))
			switch t.Status {
			case store.StatusOverdue:
				line = errorStyle.Render(line)
			case store.StatusCompleted, store.StatusCanceled:
				line = mutedStyle.Render(line)
			}
			rows = append(rows, line)
		}

		columns = append(columns, style.Width(colWidth).Render(strings.Join(rows, "\n")))
	}

	grid := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	nav := mutedStyle.Render("  ←/→: change week  esc: this week")

	return lipgloss.JoinVertical(lipgloss.Left, " "+header, grid, nav)
}
