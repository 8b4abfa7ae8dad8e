package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkocak/taskdeck/internal/reminder"
	"github.com/dkocak/taskdeck/internal/store"
)

type boardModel struct {
	store  *store.Store
	userID int64
	width  int
	height int

	columns [4][]store.Task // indexed like store.Statuses
	col     int
	row     int
}

func newBoardModel(s *store.Store, userID int64) boardModel {
	return boardModel{store: s, userID: userID}
}

func (m *boardModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *boardModel) setUser(userID int64) {
	m.userID = userID
}

func (m boardModel) refresh() tea.Cmd {
	return func() tea.Msg {
		var columns [4][]store.Task
		for i, status := range store.Statuses {
			s := status
			tasks, _ := m.store.ListTasks(store.TaskFilter{UserID: m.userID, Status: &s})
			columns[i] = tasks
		}
		return boardDataMsg{columns: columns}
	}
}

func (m boardModel) current() *store.Task {
	if m.row < len(m.columns[m.col]) {
		t := m.columns[m.col][m.row]
		return &t
	}
	return nil
}

func (m *boardModel) clampRow() {
	if m.row >= len(m.columns[m.col]) {
		m.row = max(0, len(m.columns[m.col])-1)
	}
}

func (m boardModel) update(msg tea.Msg) (boardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case boardDataMsg:
		m.columns = msg.columns
		m.clampRow()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.row > 0 {
				m.row--
			}
		case key.Matches(msg, keys.Down):
			if m.row < len(m.columns[m.col])-1 {
				m.row++
			}
		case key.Matches(msg, keys.Left):
			if m.col > 0 {
				m.col--
				m.clampRow()
			}
		case key.Matches(msg, keys.Right):
			if m.col < len(m.columns)-1 {
				m.col++
				m.clampRow()
			}
		case key.Matches(msg, keys.MoveUp):
			if t := m.current(); t != nil && m.row > 0 {
				return m.move(*t, store.Statuses[m.col], m.row-1)
			}
		case key.Matches(msg, keys.MoveDown):
			if t := m.current(); t != nil && m.row < len(m.columns[m.col])-1 {
				return m.move(*t, store.Statuses[m.col], m.row+1)
			}
		case key.Matches(msg, keys.MoveLeft):
			if t := m.current(); t != nil && m.col > 0 {
				m.col--
				return m.move(*t, store.Statuses[m.col], m.row)
			}
		case key.Matches(msg, keys.MoveRight):
			if t := m.current(); t != nil && m.col < len(m.columns)-1 {
				m.col++
				return m.move(*t, store.Statuses[m.col], m.row)
			}
		case key.Matches(msg, keys.Delete):
			if t := m.current(); t != nil {
				if err := m.store.DeleteTask(t.ID); err != nil {
					return m, errStatus("delete", err)
				}
				return m, m.refresh()
			}
		}
	}
	return m, nil
}

// move relocates a task on the board and reconciles its reminder, since a
// drag into completed/canceled must silence a pending notification.
func (m boardModel) move(t store.Task, status string, pos int) (boardModel, tea.Cmd) {
	updated, err := m.store.MoveTask(t.ID, status, pos)
	if err != nil {
		return m, errStatus("move", err)
	}
	if err := reminder.Apply(m.store, t.ID, reminder.Reconcile(t, *updated)); err != nil {
		return m, errStatus("reminder", err)
	}
	m.row = updated.Position
	return m, m.refresh()
}

func (m boardModel) view() string {
	w := m.width - 4
	colWidth := max(w/4-2, 14)
	now := time.Now()

	var columns []string
	for i, status := range store.Statuses {
		style := columnStyle
		if i == m.col {
			style = activeColumnStyle
		}

		var rows []string
		head := fmt.Sprintf("%s %s", statusLabel(status), mutedStyle.Render(fmt.Sprintf("(%d)", len(m.columns[i]))))
		rows = append(rows, titleStyle.Render(head))
		rows = append(rows, "")

		if len(m.columns[i]) == 0 {
			rows = append(rows, mutedStyle.Render("—"))
		}
		for j, t := range m.columns[i] {
			cursor := "  "
			style := normalItemStyle
			if i == m.col && j == m.row {
				cursor = "> "
				style = selectedItemStyle
			}
			line := style.Render(cursor + truncate(t.Title, colWidth-6))
			if t.DueDate != nil && (status == store.StatusUpcoming || status == store.StatusOverdue) {
				dueStyle := mutedStyle
				if t.DueDate.Before(now) {
					dueStyle = warningStyle
				}
				line += "\n    " + dueStyle.Render(t.DueDate.Local().Format("Jan 02 15:04"))
			}
			rows = append(rows, line)
		}

		columns = append(columns, style.Width(colWidth).Render(strings.Join(rows, "\n")))
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	nav := mutedStyle.Render("  ←/→/↑/↓: navigate  shift+arrows: move task  d: delete")

	return lipgloss.JoinVertical(lipgloss.Left, " "+titleStyle.Render("Board"), board, nav)
}
