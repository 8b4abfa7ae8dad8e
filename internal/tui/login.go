package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkocak/taskdeck/internal/auth"
	"github.com/dkocak/taskdeck/internal/store"
)

const (
	modeSignIn   = "sign_in"
	modeRegister = "register"
)

type loginModel struct {
	store  *store.Store
	auth   *auth.Manager
	width  int
	height int

	form    *huh.Form
	lastErr string

	// Form field pointers (survive value copies)
	mode     *string
	email    *string
	password *string
	name     *string
}

func newLoginModel(s *store.Store, mgr *auth.Manager) loginModel {
	mode, email, password, name := modeSignIn, "", "", ""
	m := loginModel{
		store:    s,
		auth:     mgr,
		mode:     &mode,
		email:    &email,
		password: &password,
		name:     &name,
	}
	m.form = m.newForm()
	return m
}

func (m *loginModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m loginModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Welcome to taskdeck").
				Options(
					huh.NewOption("Sign in", modeSignIn),
					huh.NewOption("Create account", modeRegister),
				).Value(m.mode),
			huh.NewInput().Title("Email").Value(m.email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(m.password),
			huh.NewInput().Title("Display name (new accounts)").Value(m.name),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m loginModel) init() tea.Cmd {
	return m.form.Init()
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m.submit()
	}
	return m, cmd
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	var user *store.User
	var err error
	if *m.mode == modeRegister {
		user, err = m.auth.Register(m.store, *m.email, *m.password, *m.name)
	} else {
		user, err = m.auth.Login(m.store, *m.email, *m.password)
	}
	if err != nil {
		m.lastErr = err.Error()
		*m.password = ""
		m.form = m.newForm()
		return m, m.form.Init()
	}

	m.lastErr = ""
	return m, func() tea.Msg { return loggedInMsg{user: user} }
}

func (m loginModel) view() string {
	content := m.form.View()
	if m.lastErr != "" {
		content = lipgloss.JoinVertical(lipgloss.Left,
			errorStyle.Render(m.lastErr), "", content,
		)
	}

	panel := activePanelStyle.Width(min(m.width-4, 60)).Render(content)
	if m.width == 0 {
		return panel
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}
