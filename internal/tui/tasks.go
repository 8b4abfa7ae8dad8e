package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkocak/taskdeck/internal/reminder"
	"github.com/dkocak/taskdeck/internal/store"
)

const dueLayout = "2006-01-02 15:04"

var categoryColors = []string{"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB"}

// statusFilters cycles with the f key; empty string means all.
var statusFilters = []string{"", store.StatusUpcoming, store.StatusOverdue, store.StatusCompleted, store.StatusCanceled}

type tasksModel struct {
	store  *store.Store
	userID int64
	width  int
	height int

	tasks      []store.Task
	categories []store.Category
	cursor     int

	statusFilter   int // index into statusFilters
	categoryFilter int // 0 = all, else index+1 into categories

	defaultLead int

	formActive bool
	form       *huh.Form
	formType   string // "task", "edit_task", "category"
	editingID  int64
	editingOld *store.Task

	// Form field pointers (survive value copies)
	formTitle    *string
	formDesc     *string
	formDue      *string
	formCategory *int64
	formNotify   *bool
	formLead     *int
	formCatName  *string
	formCatColor *string
}

func newTasksModel(s *store.Store, userID int64, defaultLead int) tasksModel {
	title, desc, due := "", "", ""
	var cat int64
	notify := false
	lead := defaultLead
	catName, catColor := "", categoryColors[0]
	return tasksModel{
		store:        s,
		userID:       userID,
		defaultLead:  defaultLead,
		formTitle:    &title,
		formDesc:     &desc,
		formDue:      &due,
		formCategory: &cat,
		formNotify:   &notify,
		formLead:     &lead,
		formCatName:  &catName,
		formCatColor: &catColor,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *tasksModel) setUser(userID int64) {
	m.userID = userID
}

func (m tasksModel) refresh() tea.Cmd {
	filter := store.TaskFilter{UserID: m.userID}
	if s := statusFilters[m.statusFilter]; s != "" {
		status := s
		filter.Status = &status
	}
	if m.categoryFilter > 0 && m.categoryFilter <= len(m.categories) {
		id := m.categories[m.categoryFilter-1].ID
		filter.CategoryID = &id
	}
	return func() tea.Msg {
		tasks, _ := m.store.ListTasks(filter)
		categories, _ := m.store.ListCategories(m.userID)
		return tasksDataMsg{tasks: tasks, categories: categories}
	}
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		m.tasks = msg.tasks
		m.categories = msg.categories
		if m.cursor >= len(m.tasks) {
			m.cursor = max(0, len(m.tasks)-1)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateList(msg)
	}
	return m, nil
}

func (m tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.New):
		return m.showTaskForm(nil)
	case key.Matches(msg, keys.NewCategory):
		return m.showCategoryForm()
	case key.Matches(msg, keys.Edit):
		if len(m.tasks) > 0 {
			t := m.tasks[m.cursor]
			return m.showTaskForm(&t)
		}
	case key.Matches(msg, keys.Category):
		m.categoryFilter = (m.categoryFilter + 1) % (len(m.categories) + 1)
		return m, m.refresh()
	case key.Matches(msg, keys.Filter):
		m.statusFilter = (m.statusFilter + 1) % len(statusFilters)
		return m, m.refresh()
	case key.Matches(msg, keys.Complete):
		if len(m.tasks) > 0 {
			return m.setStatus(m.tasks[m.cursor], store.StatusCompleted)
		}
	case key.Matches(msg, keys.CancelTask):
		if len(m.tasks) > 0 {
			return m.setStatus(m.tasks[m.cursor], store.StatusCanceled)
		}
	case key.Matches(msg, keys.Delete):
		if len(m.tasks) > 0 {
			t := m.tasks[m.cursor]
			if err := m.store.DeleteTask(t.ID); err != nil {
				return m, errStatus("delete", err)
			}
			return m, m.refresh()
		}
	}
	return m, nil
}

// setStatus flips the task to the target status, or back to upcoming when it
// is already there, and reconciles any scheduled reminder.
func (m tasksModel) setStatus(t store.Task, status string) (tasksModel, tea.Cmd) {
	target := status
	if t.Status == status {
		target = store.StatusUpcoming
	}
	updated, err := m.store.SetTaskStatus(t.ID, target)
	if err != nil {
		return m, errStatus("update", err)
	}
	if err := reminder.Apply(m.store, t.ID, reminder.Reconcile(t, *updated)); err != nil {
		return m, errStatus("reminder", err)
	}
	return m, m.refresh()
}

// leadOptions builds the selectable reminder offsets for the form. With a
// known due date only offsets that still fire in the future are offered; a
// stale current selection falls back to the nearest valid one.
func leadOptions(due *time.Time, now time.Time, current int) ([]huh.Option[int], int) {
	leads := reminder.LeadTimes
	if due != nil {
		if valid := reminder.ValidLeadTimes(*due, now); len(valid) > 0 {
			leads = valid
		} else {
			leads = reminder.LeadTimes[:1]
		}
	}
	options := make([]huh.Option[int], len(leads))
	selected := leads[0].Minutes
	for i, lt := range leads {
		options[i] = huh.NewOption(lt.Label, lt.Minutes)
		if lt.Minutes <= current {
			selected = lt.Minutes
		}
	}
	return options, selected
}

func (m tasksModel) showTaskForm(t *store.Task) (tasksModel, tea.Cmd) {
	if len(m.categories) == 0 {
		return m, errStatus("task form", fmt.Errorf("no categories yet"))
	}

	now := time.Now()
	var due *time.Time
	if t != nil {
		*m.formTitle = t.Title
		*m.formDesc = t.Description
		*m.formDue = ""
		if t.DueDate != nil {
			*m.formDue = t.DueDate.Local().Format(dueLayout)
			due = t.DueDate
		}
		*m.formCategory = t.CategoryID
		*m.formNotify = t.Notify
		m.formType = "edit_task"
		m.editingID = t.ID
		old := *t
		m.editingOld = &old
	} else {
		*m.formTitle = ""
		*m.formDesc = ""
		*m.formDue = ""
		*m.formCategory = m.categories[0].ID
		*m.formNotify = false
		m.formType = "task"
		m.editingOld = nil
	}

	catOptions := make([]huh.Option[int64], len(m.categories))
	for i, c := range m.categories {
		catOptions[i] = huh.NewOption(c.Name, c.ID)
	}

	current := m.defaultLead
	if t != nil {
		current = t.LeadMinutes
	}
	options, selected := leadOptions(due, now, current)
	*m.formLead = selected

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle),
			huh.NewInput().Title("Description").Value(m.formDesc),
			huh.NewInput().
				Title("Due (YYYY-MM-DD HH:MM, empty for none)").
				Value(m.formDue).
				Validate(validateDue),
			huh.NewSelect[int64]().Title("Category").Options(catOptions...).Value(m.formCategory),
			huh.NewConfirm().Title("Remind me").Value(m.formNotify),
			huh.NewSelect[int]().Title("Remind").Options(options...).Value(m.formLead),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func validateDue(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.ParseInLocation(dueLayout, strings.TrimSpace(s), time.Local); err != nil {
		return fmt.Errorf("expected YYYY-MM-DD HH:MM")
	}
	return nil
}

func (m tasksModel) showCategoryForm() (tasksModel, tea.Cmd) {
	*m.formCatName = ""
	*m.formCatColor = categoryColors[0]
	m.formType = "category"

	colorOptions := make([]huh.Option[string], len(categoryColors))
	for i, c := range categoryColors {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Category Name").Value(m.formCatName),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(m.formCatColor),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		switch m.formType {
		case "task", "edit_task":
			return m.saveTask()
		case "category":
			if *m.formCatName != "" {
				if _, err := m.store.CreateCategory(m.userID, *m.formCatName, *m.formCatColor); err != nil {
					return m, errStatus("category", err)
				}
			}
			return m, m.refresh()
		}
	}

	return m, cmd
}

func (m tasksModel) saveTask() (tasksModel, tea.Cmd) {
	if *m.formTitle == "" {
		return m, m.refresh()
	}

	var due *time.Time
	if s := strings.TrimSpace(*m.formDue); s != "" {
		d, err := time.ParseInLocation(dueLayout, s, time.Local)
		if err != nil {
			return m, errStatus("due date", err)
		}
		u := d.UTC()
		due = &u
	}

	nt := store.NewTask{
		Title:       *m.formTitle,
		Description: *m.formDesc,
		CategoryID:  *m.formCategory,
		DueDate:     due,
		Notify:      *m.formNotify && due != nil,
		LeadMinutes: *m.formLead,
	}

	if m.formType == "edit_task" {
		updated, err := m.store.UpdateTask(m.editingID, nt)
		if err != nil {
			return m, errStatus("save", err)
		}
		if m.editingOld != nil {
			if err := reminder.Apply(m.store, updated.ID, reminder.Reconcile(*m.editingOld, *updated)); err != nil {
				return m, errStatus("reminder", err)
			}
		}
	} else {
		if _, err := m.store.CreateTask(m.userID, nt); err != nil {
			return m, errStatus("create", err)
		}
	}
	return m, m.refresh()
}

func errStatus(op string, err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("%s: %v", op, err), isError: true}
	}
}

func (m tasksModel) view() string {
	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		switch m.formType {
		case "edit_task":
			title = titleStyle.Render("Edit Task")
		case "category":
			title = titleStyle.Render("New Category")
		}
		formView := m.form.View()
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", formView)
		return panelStyle.Width(m.width - 4).Render(content)
	}
	return m.renderList()
}

func (m tasksModel) filterLabel() string {
	parts := []string{}
	if s := statusFilters[m.statusFilter]; s != "" {
		parts = append(parts, statusLabel(s))
	}
	if m.categoryFilter > 0 && m.categoryFilter <= len(m.categories) {
		parts = append(parts, m.categories[m.categoryFilter-1].Name)
	}
	if len(parts) == 0 {
		return "All"
	}
	return strings.Join(parts, " · ")
}

func (m tasksModel) renderList() string {
	w := m.width - 4
	now := time.Now()

	title := titleStyle.Render("Tasks")
	filter := mutedStyle.Render("  " + m.filterLabel())
	count := mutedStyle.Render("  " + plural(len(m.tasks), "task"))
	header := title + filter + count

	if len(m.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			mutedStyle.Render("No tasks. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	catByID := make(map[int64]store.Category, len(m.categories))
	for _, c := range m.categories {
		catByID[c.ID] = c
	}

	var rows []string
	rows = append(rows, header)
	rows = append(rows, "")

	for i, t := range m.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		if t.Status == store.StatusCompleted || t.Status == store.StatusCanceled {
			if i != m.cursor {
				style = completedItemStyle
			}
		}

		icon := statusIcon(t.Status)
		if t.Status == store.StatusOverdue {
			icon = errorStyle.Render(icon)
		}

		dot := " "
		if c, ok := catByID[t.CategoryID]; ok {
			dot = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("●")
		}

		row := fmt.Sprintf("%s%s %s %s", cursor, icon, dot, style.Render(truncate(t.Title, 40)))
		if due := formatDue(t.DueDate, now); due != "" {
			dueStyle := mutedStyle
			if t.DueDate.Before(now) && t.Status != store.StatusCompleted && t.Status != store.StatusCanceled {
				dueStyle = warningStyle
			}
			row += "  " + dueStyle.Render(due)
		}
		if t.Notify {
			row += " " + highlightStyle.Render("⏰")
		}
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  x: complete  X: cancel  d: delete  f/c: filter"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
