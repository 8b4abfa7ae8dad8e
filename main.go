package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dkocak/taskdeck/internal/auth"
	"github.com/dkocak/taskdeck/internal/config"
	"github.com/dkocak/taskdeck/internal/reminder"
	"github.com/dkocak/taskdeck/internal/store"
	"github.com/dkocak/taskdeck/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	dbPath := cfg.DatabasePath
	if dbPath == "" {
		if dbPath, err = store.DefaultDBPath(); err != nil {
			return err
		}
	}

	s, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	if _, err := s.SweepOverdue(time.Now()); err != nil {
		return fmt.Errorf("sweep overdue: %w", err)
	}

	// Mirror the effective config into the persisted settings so anything
	// reading the database sees the same values the app runs with.
	notifications := "on"
	if !cfg.Notifications {
		notifications = "off"
	}
	for key, value := range map[string]string{
		"week_start":           cfg.WeekStart,
		"reminder_interval":    strconv.Itoa(cfg.ReminderInterval),
		"default_lead_minutes": strconv.Itoa(cfg.DefaultLeadMinutes),
		"notifications":        notifications,
	} {
		if err := s.SetSetting(key, value); err != nil {
			return fmt.Errorf("save setting %s: %w", key, err)
		}
	}

	mgr, err := auth.NewManager("")
	if err != nil {
		return err
	}

	var user *store.User
	sess, err := mgr.Current()
	if err != nil {
		return err
	}
	if sess != nil {
		// A stale session (deleted user) falls through to the login screen.
		if u, err := s.GetUser(sess.UserID); err == nil {
			user = u
		}
	}

	if cfg.Notifications {
		sched := reminder.NewScheduler(s, time.Duration(cfg.ReminderInterval)*time.Second)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	app := tui.NewApp(s, mgr, user, cfg.WeekStart, cfg.DefaultLeadMinutes)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
