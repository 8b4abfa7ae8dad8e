package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate on a wrong email or password.
var ErrInvalidCredentials = errors.New("invalid email or password")

func (s *Store) CreateUser(email, password, displayName string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO users (email, display_name, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		email, displayName, string(hash), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetUser(id)
}

func (s *Store) GetUser(id int64) (*User, error) {
	u := &User{}
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, email, display_name, avatar_url, phone, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL, &u.Phone, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

func (s *Store) GetUserByEmail(email string) (*User, error) {
	u := &User{}
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, email, display_name, avatar_url, phone, created_at FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL, &u.Phone, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", email, err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

// Authenticate verifies the password for the given email and returns the user.
func (s *Store) Authenticate(email, password string) (*User, error) {
	var id int64
	var hash string
	err := s.db.QueryRow(`SELECT id, password_hash FROM users WHERE email = ?`, email).Scan(&id, &hash)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user %q: %w", email, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.GetUser(id)
}

func (s *Store) UpdateProfile(id int64, displayName, avatarURL, phone string) error {
	_, err := s.db.Exec(
		`UPDATE users SET display_name = ?, avatar_url = ?, phone = ? WHERE id = ?`,
		displayName, avatarURL, phone, id,
	)
	return err
}
