package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkocak/taskdeck/internal/auth"
	"github.com/dkocak/taskdeck/internal/export"
	"github.com/dkocak/taskdeck/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	auth   *auth.Manager
	user   *store.User
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	login loginModel
	tasks tasksModel
	week  weekModel
	board boardModel
	month monthModel
	stats statsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(s *store.Store, mgr *auth.Manager, user *store.User, weekStart string, defaultLead int) App {
	h := help.New()
	h.ShowAll = false

	var userID int64
	if user != nil {
		userID = user.ID
	}

	return App{
		store:      s,
		auth:       mgr,
		user:       user,
		activeView: viewTasks,
		login:      newLoginModel(s, mgr),
		tasks:      newTasksModel(s, userID, defaultLead),
		week:       newWeekModel(s, userID, weekStart),
		board:      newBoardModel(s, userID),
		month:      newMonthModel(s, userID, weekStart),
		stats:      newStatsModel(s, userID),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	if a.user == nil {
		return a.login.init()
	}
	return a.tasks.refresh()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.login.setSize(a.width, a.height)
		a.tasks.setSize(a.width, contentHeight)
		a.week.setSize(a.width, contentHeight)
		a.board.setSize(a.width, contentHeight)
		a.month.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		return a, nil

	case loggedInMsg:
		a.user = msg.user
		a.tasks.setUser(msg.user.ID)
		a.week.setUser(msg.user.ID)
		a.board.setUser(msg.user.ID)
		a.month.setUser(msg.user.ID)
		a.stats.setUser(msg.user.ID)
		a.activeView = viewTasks
		a.setStatus("Signed in as "+msg.user.Email, false)
		return a, a.tasks.refresh()

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil

	case tasksDataMsg:
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		return a, cmd

	case weekDataMsg:
		var cmd tea.Cmd
		a.week, cmd = a.week.update(msg)
		return a, cmd

	case boardDataMsg:
		var cmd tea.Cmd
		a.board, cmd = a.board.update(msg)
		return a, cmd

	case monthDataMsg:
		var cmd tea.Cmd
		a.month, cmd = a.month.update(msg)
		return a, cmd

	case statsDataMsg:
		var cmd tea.Cmd
		a.stats, cmd = a.stats.update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		if a.user == nil {
			var cmd tea.Cmd
			a.login, cmd = a.login.update(msg)
			return a, cmd
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Logout):
			return a.logout()
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTasks
			return a, a.tasks.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewWeek
			return a, a.week.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewBoard
			return a, a.board.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewMonth
			return a, a.month.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewStats
			return a, a.stats.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 5
			return a, a.refreshCurrentView()
		}
	}

	if a.user == nil {
		var cmd tea.Cmd
		a.login, cmd = a.login.update(msg)
		return a, cmd
	}
	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewWeek:
		a.week, cmd = a.week.update(msg)
	case viewBoard:
		a.board, cmd = a.board.update(msg)
	case viewMonth:
		a.month, cmd = a.month.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activeView == viewTasks && a.tasks.formActive
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTasks:
		return a.tasks.refresh()
	case viewWeek:
		return a.week.refresh()
	case viewBoard:
		return a.board.refresh()
	case viewMonth:
		return a.month.refresh()
	case viewStats:
		return a.stats.refresh()
	}
	return nil
}

func (a App) logout() (tea.Model, tea.Cmd) {
	if err := a.auth.Logout(); err != nil {
		a.setStatus(fmt.Sprintf("logout: %v", err), true)
		return a, nil
	}
	a.user = nil
	a.login = newLoginModel(a.store, a.auth)
	a.login.setSize(a.width, a.height)
	a.status = ""
	return a, a.login.init()
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusErr = isError
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	if a.user == nil {
		return a.login.view()
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTasks:
		content = a.tasks.view()
	case viewWeek:
		content = a.week.view()
	case viewBoard:
		content = a.board.view()
	case viewMonth:
		content = a.month.view()
	case viewStats:
		content = a.stats.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("taskdeck")
	who := mutedStyle.Render(a.user.DisplayName)
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - lipgloss.Width(who) - 6
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", tabRow, spacer, who),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	userID := a.user.ID
	return func() tea.Msg {
		tasks, err := a.store.ListTasks(store.TaskFilter{UserID: userID})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		// Build category lookup
		categories := make(map[int64]*store.Category)
		clist, _ := a.store.ListCategories(userID)
		for i := range clist {
			categories[clist[i].ID] = &clist[i]
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("taskdeck-export-%s.csv", dateStr))
			if err := export.ToCSV(tasks, categories, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("taskdeck-export-%s.json", dateStr))
			if err := export.ToJSON(tasks, categories, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
