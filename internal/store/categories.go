package store

import (
	"errors"
	"fmt"
	"time"
)

// ErrDefaultCategory is returned when deleting a user's default category.
var ErrDefaultCategory = errors.New("default category cannot be deleted")

const defaultCategoryName = "Inbox"

func (s *Store) CreateCategory(userID int64, name, color string) (*Category, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO categories (user_id, name, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		userID, name, color, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetCategory(id)
}

func (s *Store) GetCategory(id int64) (*Category, error) {
	c := &Category{}
	var createdAt, updatedAt string
	var isDefault int
	err := s.db.QueryRow(
		`SELECT id, user_id, name, color, is_default, created_at, updated_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &isDefault, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	c.IsDefault = isDefault == 1
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return c, nil
}

func (s *Store) ListCategories(userID int64) ([]Category, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, name, color, is_default, created_at, updated_at
		 FROM categories WHERE user_id = ? ORDER BY is_default DESC, name`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		var createdAt, updatedAt string
		var isDefault int
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &isDefault, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.IsDefault = isDefault == 1
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// EnsureDefaultCategory returns the user's default category, creating it
// lazily on first use. Idempotent: at most one default exists per user.
func (s *Store) EnsureDefaultCategory(userID int64) (*Category, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM categories WHERE user_id = ? AND is_default = 1`, userID,
	).Scan(&id)
	if err == nil {
		return s.GetCategory(id)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO categories (user_id, name, color, is_default, created_at, updated_at) VALUES (?, ?, '#6C63FF', 1, ?, ?)`,
		userID, defaultCategoryName, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create default category: %w", err)
	}
	id, _ = res.LastInsertId()
	return s.GetCategory(id)
}

func (s *Store) UpdateCategory(id int64, name, color string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE categories SET name = ?, color = ?, updated_at = ? WHERE id = ?`,
		name, color, now, id,
	)
	return err
}

// DeleteCategory removes a category and moves its tasks to the user's
// default category. Deleting the default itself is refused.
func (s *Store) DeleteCategory(id int64) error {
	c, err := s.GetCategory(id)
	if err != nil {
		return err
	}
	if c.IsDefault {
		return ErrDefaultCategory
	}

	def, err := s.EnsureDefaultCategory(c.UserID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`UPDATE tasks SET category_id = ?, updated_at = ? WHERE category_id = ?`, def.ID, now, id,
	); err != nil {
		return fmt.Errorf("reassign tasks: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return tx.Commit()
}
