package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/dkocak/taskdeck/internal/auth"
	"github.com/dkocak/taskdeck/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestUser(t *testing.T, s *store.Store) (*store.User, *store.Category) {
	t.Helper()
	u, err := s.CreateUser("ada@example.com", "secret", "Ada")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	c, err := s.EnsureDefaultCategory(u.ID)
	if err != nil {
		t.Fatalf("default category: %v", err)
	}
	return u, c
}

func newTestManager(t *testing.T) *auth.Manager {
	t.Helper()
	m, err := auth.NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func addTask(t *testing.T, s *store.Store, userID, categoryID int64, title string, due *time.Time) *store.Task {
	t.Helper()
	task, err := s.CreateTask(userID, store.NewTask{Title: title, CategoryID: categoryID, DueDate: due})
	if err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return task
}

func timePtr(d time.Time) *time.Time { return &d }

// ============================================================
// Helper functions
// ============================================================

func TestStartOfWeek(t *testing.T) {
	// 2026-03-04 is a Wednesday.
	wed := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

	mon := startOfWeek(wed, "monday")
	if mon.Weekday() != time.Monday || mon.Day() != 2 {
		t.Fatalf("expected Monday Mar 2, got %v", mon)
	}
	if mon.Hour() != 0 || mon.Minute() != 0 {
		t.Fatalf("week start should be midnight, got %v", mon)
	}

	sun := startOfWeek(wed, "sunday")
	if sun.Weekday() != time.Sunday || sun.Day() != 1 {
		t.Fatalf("expected Sunday Mar 1, got %v", sun)
	}

	// A Monday is its own week start.
	if got := startOfWeek(mon, "monday"); !got.Equal(mon) {
		t.Fatalf("Monday should map to itself, got %v", got)
	}
}

func TestStartOfDay(t *testing.T) {
	d := time.Date(2026, 3, 4, 15, 30, 45, 12, time.UTC)
	got := startOfDay(d)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
	if got.Day() != 4 {
		t.Fatalf("day changed: %v", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 4, "hel…"},
		{"hello", 1, "…"},
		{"hello", 0, ""},
		{"héllo wörld", 6, "héllo…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestStatusIconAndLabel(t *testing.T) {
	tests := []struct {
		status      string
		icon, label string
	}{
		{store.StatusUpcoming, "○", "Upcoming"},
		{store.StatusOverdue, "!", "Overdue"},
		{store.StatusCompleted, "✓", "Completed"},
		{store.StatusCanceled, "✗", "Canceled"},
	}
	for _, tt := range tests {
		if got := statusIcon(tt.status); got != tt.icon {
			t.Errorf("statusIcon(%q) = %q, want %q", tt.status, got, tt.icon)
		}
		if got := statusLabel(tt.status); got != tt.label {
			t.Errorf("statusLabel(%q) = %q, want %q", tt.status, got, tt.label)
		}
	}
}

func TestFormatDue(t *testing.T) {
	now := time.Now()

	if got := formatDue(nil, now); got != "" {
		t.Fatalf("nil due should be empty, got %q", got)
	}
	past := now.Add(-time.Hour)
	if got := formatDue(&past, now); !strings.Contains(got, "overdue") {
		t.Fatalf("past due should say overdue, got %q", got)
	}
	soon := now.Add(time.Hour)
	if got := formatDue(&soon, now); !strings.Contains(got, "today") {
		t.Fatalf("due within a day should say today, got %q", got)
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1, "task"); got != "1 task" {
		t.Fatalf("got %q", got)
	}
	if got := plural(3, "task"); got != "3 tasks" {
		t.Fatalf("got %q", got)
	}
}

func TestMinMax(t *testing.T) {
	if min(3, 5) != 3 || min(5, 3) != 3 {
		t.Fatal("min broken")
	}
	if max(3, 5) != 5 || max(5, 3) != 5 {
		t.Fatal("max broken")
	}
}

// ============================================================
// View state
// ============================================================

func TestViewNames(t *testing.T) {
	if len(viewNames) != 5 {
		t.Fatalf("expected 5 view names, got %d", len(viewNames))
	}
	expected := []string{"Tasks", "Week", "Board", "Month", "Stats"}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
}

func TestViewStateConstants(t *testing.T) {
	if viewTasks != 0 || viewWeek != 1 || viewBoard != 2 || viewMonth != 3 || viewStats != 4 {
		t.Fatal("view state constants out of order")
	}
}

// ============================================================
// Reminder lead options
// ============================================================

func TestLeadOptionsNoDue(t *testing.T) {
	now := time.Now()
	options, selected := leadOptions(nil, now, 30)
	if len(options) != 8 {
		t.Fatalf("without a due date all offsets should be offered, got %d", len(options))
	}
	if selected != 30 {
		t.Fatalf("current selection should be kept, got %d", selected)
	}
}

func TestLeadOptionsNearDue(t *testing.T) {
	now := time.Now()
	due := now.Add(20 * time.Minute)

	options, selected := leadOptions(&due, now, 30)
	if len(options) != 4 {
		t.Fatalf("expected offsets under 20 minutes, got %d", len(options))
	}
	// Stale 30-minute selection falls back to the nearest valid offset.
	if selected != 15 {
		t.Fatalf("expected fallback to 15, got %d", selected)
	}
}

func TestLeadOptionsPastDue(t *testing.T) {
	now := time.Now()
	due := now.Add(-time.Hour)

	options, selected := leadOptions(&due, now, 30)
	if len(options) != 1 {
		t.Fatalf("past due should fall back to a single option, got %d", len(options))
	}
	if selected != 0 {
		t.Fatalf("expected 0 (at due time), got %d", selected)
	}
}

// ============================================================
// Tasks model
// ============================================================

func TestTasksRefresh(t *testing.T) {
	s := newTestStore(t)
	u, def := newTestUser(t, s)
	addTask(t, s, u.ID, def.ID, "one", nil)
	addTask(t, s, u.ID, def.ID, "two", nil)

	m := newTasksModel(s, u.ID, 30)
	msg := m.refresh()()
	data, ok := msg.(tasksDataMsg)
	if !ok {
		t.Fatalf("expected tasksDataMsg, got %T", msg)
	}
	if len(data.tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(data.tasks))
	}
	if len(data.categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(data.categories))
	}

	m, _ = m.update(data)
	if len(m.tasks) != 2 {
		t.Fatal("data message should populate the model")
	}
}

func TestTasksCursorClamp(t *testing.T) {
	s := newTestStore(t)
	u, def := newTestUser(t, s)
	addTask(t, s, u.ID, def.ID, "only", nil)

	m := newTasksModel(s, u.ID, 30)
	m.cursor = 5
	m, _ = m.update(m.refresh()().(tasksDataMsg))
	if m.cursor != 0 {
		t.Fatalf("cursor should clamp to last task, got %d", m.cursor)
	}
}

func TestTasksStatusFilterCycle(t *testing.T) {
	s := newTestStore(t)
	u, def := newTestUser(t, s)
	open := addTask(t, s, u.ID, def.ID, "open", nil)
	done := addTask(t, s, u.ID, def.ID, "done", nil)
	s.SetTaskStatus(done.ID, store.StatusCompleted)

	m := newTasksModel(s, u.ID, 30)
	m.statusFilter = 1 // upcoming

	data := m.refresh()().(tasksDataMsg)
	if len(data.tasks) != 1 || data.tasks[0].ID != open.ID {
		t.Fatalf("filter should keep only upcoming, got %d tasks", len(data.tasks))
	}
}

func TestTasksSetStatusToggle(t *testing.T) {
	s := newTestStore(t)
	u, def := newTestUser(t, s)
	task := addTask(t, s, u.ID, def.ID, "T", nil)

	m := newTasksModel(s, u.ID, 30)

	m.setStatus(*task, store.StatusCompleted)
	done, _ := s.GetTask(task.ID)
	if done.Status != store.StatusCompleted {
		t.Fatalf("expected completed, got %s", done.Status)
	}

	// Completing a completed task toggles it back.
	m.setStatus(*done, store.StatusCompleted)
	reopened, _ := s.GetTask(task.ID)
	if reopened.Status != store.StatusUpcoming {
		t.Fatalf("expected upcoming, got %s", reopened.Status)
	}
}

func TestTasksCompleteDisarmsReminder(t *testing.T) {
	s := newTestStore(t)
	u, def := newTestUser(t, s)
	due := time.Now().UTC().Add(time.Hour)
	task, _ := s.CreateTask(u.ID, store.NewTask{Title: "T", CategoryID: def.ID, DueDate: &due, Notify: true, LeadMinutes: 30})

	m := newTasksModel(s, u.ID, 30)
	m.setStatus(*task, store.StatusCompleted)

	candidates, _ := s.ListReminderCandidates()
	if len(candidates) != 0 {
		t.Fatal("completing a task should silence its reminder")
	}
}

func TestValidateDue(t *testing.T) {
	if err := validateDue(""); err != nil {
		t.Fatal("empty due should be valid")
	}
	if err := validateDue("2026-03-04 15:00"); err != nil {
		t.Fatalf("valid due rejected: %v", err)
	}
	if err := validateDue("tomorrow"); err == nil {
		t.Fatal("expected error for bad format")
	}
}

// ============================================================
// Week model
// ============================================================

func TestWeekRefreshGroupsByDay(t *testing.T) {
	s := newTestStore(t)
	u, def := newTestUser(t, s)

	start := startOfWeek(time.Now(), "monday")
	addTask(t, s, u.ID, def.ID, "mon", timePtr(start.Add(10*time.Hour)))
	addTask(t, s, u.ID, def.ID, "wed", timePtr(start.AddDate(0, 0, 2).Add(9*time.Hour)))
	addTask(t, s, u.ID, def.ID, "no due", nil)

	m := newWeekModel(s, u.ID, "monday")
	msg := m.refresh()()
	data, ok := msg.(weekDataMsg)
	if !ok {
		t.Fatalf("expected weekDataMsg, got %T", msg)
	}
	if len(data.days[0]) != 1 || data.days[0][0].Title != "mon" {
		t.Fatalf("Monday column wrong: %+v", data.days[0])
	}
	if len(data.days[2]) != 1 || data.days[2][0].Title != "wed" {
		t.Fatalf("Wednesday column wrong: %+v", data.days[2])
	}
	total := 0
	for _, day := range data.days {
		total += len(day)
	}
	if total != 2 {
		t.Fatalf("undated tasks should be excluded, got %d grouped", total)
	}
}

func TestWeekOffset(t *testing.T) {
	s := newTestStore(t)
	u, _ := newTestUser(t, s)

	m := newWeekModel(s, u.ID, "monday")
	thisWeek := m.rangeStart()

	m.offset = 1
	next := m.rangeStart()
	if !next.Equal(thisWeek.AddDate(0, 0, 7)) {
		t.Fatalf("offset 1 should be next week, got %v", next)
	}

	m.offset = -2
	past := m.rangeStart()
	if !past.Equal(thisWeek.AddDate(0, 0, -14)) {
		t.Fatalf("offset -2 should be two weeks back, got %v", past)
	}
}

// ============================================================
// Board model
// ============================================================

func TestBoardRefreshColumns(t *testing.T) {
	s := newTestStore(t)
	u, def := newTestUser(t, s)
	addTask(t, s, u.ID, def.ID, "open", nil)
	done := addTask(t, s, u.ID, def.ID, "done", nil)
	s.SetTaskStatus(done.ID, store.StatusCompleted)

	m := newBoardModel(s, u.ID)
	msg := m.refresh()()
	data, ok := msg.(boardDataMsg)
	if !ok {
		t.Fatalf("expected boardDataMsg, got %T", msg)
	}
	if len(data.columns[0]) != 1 {
		t.Fatalf("upcoming column should have 1 task, got %d", len(data.columns[0]))
	}
	if len(data.columns[2]) != 1 {
		t.Fatalf("completed column should have 1 task, got %d", len(data.columns[2]))
	}
}

func TestBoardMoveAcrossColumns(t *testing.T) {
	s := newTestStore(t)
	u, def := newTestUser(t, s)
	due := time.Now().UTC().Add(time.Hour)
	task, _ := s.CreateTask(u.ID, store.NewTask{Title: "T", CategoryID: def.ID, DueDate: &due, Notify: true, LeadMinutes: 30})

	m := newBoardModel(s, u.ID)
	m, _ = m.update(m.refresh()().(boardDataMsg))

	m.move(m.columns[0][0], store.StatusCompleted, 0)

	moved, _ := s.GetTask(task.ID)
	if moved.Status != store.StatusCompleted {
		t.Fatalf("expected completed, got %s", moved.Status)
	}
	// The board move must also silence the reminder.
	if !moved.Notified {
		t.Fatal("moving into completed should disarm the reminder")
	}
}

func TestBoardClampRow(t *testing.T) {
	s := newTestStore(t)
	u, def := newTestUser(t, s)
	addTask(t, s, u.ID, def.ID, "only", nil)

	m := newBoardModel(s, u.ID)
	m.row = 7
	m, _ = m.update(m.refresh()().(boardDataMsg))
	if m.row != 0 {
		t.Fatalf("row should clamp to column size, got %d", m.row)
	}
}

// ============================================================
// Month model
// ============================================================

func TestMonthRefreshCounts(t *testing.T) {
	s := newTestStore(t)
	u, def := newTestUser(t, s)

	now := time.Now()
	mid := time.Date(now.Year(), now.Month(), 15, 12, 0, 0, 0, time.Local)
	addTask(t, s, u.ID, def.ID, "a", timePtr(mid))
	addTask(t, s, u.ID, def.ID, "b", timePtr(mid))
	done := addTask(t, s, u.ID, def.ID, "c", timePtr(mid))
	s.SetTaskStatus(done.ID, store.StatusCompleted)

	m := newMonthModel(s, u.ID, "monday")
	msg := m.refresh()()
	data, ok := msg.(monthDataMsg)
	if !ok {
		t.Fatalf("expected monthDataMsg, got %T", msg)
	}

	day := mid.Format("2006-01-02")
	if data.counts[day] != 2 {
		t.Fatalf("expected 2 open tasks on the 15th, got %d", data.counts[day])
	}
	if data.done[day] != 1 {
		t.Fatalf("expected 1 done task on the 15th, got %d", data.done[day])
	}
}

func TestMonthOffset(t *testing.T) {
	s := newTestStore(t)
	u, _ := newTestUser(t, s)

	m := newMonthModel(s, u.ID, "monday")
	this := m.firstOfMonth()
	if this.Day() != 1 {
		t.Fatalf("firstOfMonth should be day 1, got %d", this.Day())
	}

	m.offset = 1
	next := m.firstOfMonth()
	if !next.Equal(this.AddDate(0, 1, 0)) {
		t.Fatalf("offset 1 should be next month, got %v", next)
	}
}

// ============================================================
// Stats model
// ============================================================

func TestStatsRefresh(t *testing.T) {
	s := newTestStore(t)
	u, def := newTestUser(t, s)
	task := addTask(t, s, u.ID, def.ID, "done", nil)
	s.SetTaskStatus(task.ID, store.StatusCompleted)
	addTask(t, s, u.ID, def.ID, "open", nil)

	m := newStatsModel(s, u.ID)
	msg := m.refresh()()
	data, ok := msg.(statsDataMsg)
	if !ok {
		t.Fatalf("expected statsDataMsg, got %T", msg)
	}
	if data.counts[store.StatusCompleted] != 1 || data.counts[store.StatusUpcoming] != 1 {
		t.Fatalf("unexpected counts: %+v", data.counts)
	}
	if len(data.totals) != 1 {
		t.Fatalf("expected 1 category total, got %d", len(data.totals))
	}
	if len(data.summaries) != 1 {
		t.Fatalf("expected 1 summary day, got %d", len(data.summaries))
	}
}

func TestStatsCompletionRate(t *testing.T) {
	s := newTestStore(t)
	m := newStatsModel(s, 1)
	m.counts = map[string]int{
		store.StatusCompleted: 3,
		store.StatusUpcoming:  1,
	}
	completed, total := m.completionRate()
	if completed != 3 || total != 4 {
		t.Fatalf("got %d/%d, want 3/4", completed, total)
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	s := newTestStore(t)
	u, _ := newTestUser(t, s)
	app := NewApp(s, newTestManager(t), u, "monday", 30)

	if app.activeView != viewTasks {
		t.Fatal("default view should be tasks")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppLoginGate(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s, newTestManager(t), nil, "monday", 30)

	if app.user != nil {
		t.Fatal("app should start signed out")
	}
	if app.Init() == nil {
		t.Fatal("signed-out app should initialize the login form")
	}
}

func TestAppLoggedInMsg(t *testing.T) {
	s := newTestStore(t)
	u, _ := newTestUser(t, s)
	app := NewApp(s, newTestManager(t), nil, "monday", 30)

	model, cmd := app.Update(loggedInMsg{user: u})
	got := model.(App)
	if got.user == nil || got.user.ID != u.ID {
		t.Fatal("loggedInMsg should set the user")
	}
	if got.tasks.userID != u.ID || got.board.userID != u.ID {
		t.Fatal("loggedInMsg should propagate the user to child views")
	}
	if cmd == nil {
		t.Fatal("loggedInMsg should trigger a refresh")
	}
}

func TestAppViewStates(t *testing.T) {
	s := newTestStore(t)
	u, _ := newTestUser(t, s)
	app := NewApp(s, newTestManager(t), u, "monday", 30)
	app.width = 120
	app.height = 40

	views := []viewState{viewTasks, viewWeek, viewBoard, viewMonth, viewStats}
	for _, v := range views {
		app.activeView = v
		output := app.View()
		if output == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	s := newTestStore(t)
	u, _ := newTestUser(t, s)
	app := NewApp(s, newTestManager(t), u, "monday", 30)
	app.width = 120
	app.height = 40

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
	if !strings.Contains(header, u.DisplayName) {
		t.Fatal("header should show the signed-in user")
	}
}

func TestAppLoadingState(t *testing.T) {
	s := newTestStore(t)
	u, _ := newTestUser(t, s)
	app := NewApp(s, newTestManager(t), u, "monday", 30)

	if got := app.View(); got != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", got)
	}
}

func TestAppStatusMessage(t *testing.T) {
	s := newTestStore(t)
	u, _ := newTestUser(t, s)
	app := NewApp(s, newTestManager(t), u, "monday", 30)
	app.width = 120
	app.height = 40
	app.status = "test status"

	footer := app.renderFooter()
	if !strings.Contains(footer, "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppExport(t *testing.T) {
	s := newTestStore(t)
	u, def := newTestUser(t, s)
	addTask(t, s, u.ID, def.ID, "T", nil)
	app := NewApp(s, newTestManager(t), u, "monday", 30)
	t.Setenv("HOME", t.TempDir())

	msg := app.doExport(1)() // JSON
	done, ok := msg.(exportDoneMsg)
	if !ok {
		t.Fatalf("expected exportDoneMsg, got %T: %v", msg, msg)
	}
	if done.path == "" {
		t.Fatal("export should return a path")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	bindings := keys.ShortHelp()
	if len(bindings) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"column", func() string { return columnStyle.Render("test") }},
		{"activeColumn", func() string { return activeColumnStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
		{"completedItem", func() string { return completedItemStyle.Render("test") }},
	}

	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}
