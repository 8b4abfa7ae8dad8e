package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dkocak/taskdeck/internal/store"
)

const sessionFileName = "session.json"

// Session records the signed-in user between runs.
type Session struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager reads and writes the session file under dir.
type Manager struct {
	dir string
}

// NewManager returns a Manager rooted at dir. An empty dir falls back to
// <user config dir>/taskdeck.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		cfg, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("config dir: %w", err)
		}
		dir = filepath.Join(cfg, "taskdeck")
	}
	return &Manager{dir: dir}, nil
}

func (m *Manager) sessionPath() string {
	return filepath.Join(m.dir, sessionFileName)
}

// Current returns the active session, or nil when not signed in.
// TASKDECK_USER overrides the file with a raw user id.
func (m *Manager) Current() (*Session, error) {
	if env := strings.TrimSpace(os.Getenv("TASKDECK_USER")); env != "" {
		id, err := strconv.ParseInt(env, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse TASKDECK_USER: %w", err)
		}
		return &Session{UserID: id}, nil
	}

	b, err := os.ReadFile(m.sessionPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not signed in
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &sess, nil
}

func (m *Manager) save(sess Session) error {
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(m.sessionPath(), b, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Login verifies credentials against the store and persists the session.
func (m *Manager) Login(s *store.Store, email, password string) (*store.User, error) {
	u, err := s.Authenticate(email, password)
	if err != nil {
		return nil, err
	}
	if err := m.save(Session{UserID: u.ID, Email: u.Email, CreatedAt: time.Now()}); err != nil {
		return nil, err
	}
	return u, nil
}

// Register creates the account, its lazy default category, and signs in.
func (m *Manager) Register(s *store.Store, email, password, displayName string) (*store.User, error) {
	u, err := s.CreateUser(email, password, displayName)
	if err != nil {
		return nil, err
	}
	if _, err := s.EnsureDefaultCategory(u.ID); err != nil {
		return nil, err
	}
	if err := m.save(Session{UserID: u.ID, Email: u.Email, CreatedAt: time.Now()}); err != nil {
		return nil, err
	}
	return u, nil
}

// Logout removes the session file. Missing file is not an error.
func (m *Manager) Logout() error {
	if err := os.Remove(m.sessionPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
