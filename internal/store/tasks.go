package store

import (
	"database/sql"
	"fmt"
	"time"
)

const taskColumns = `id, user_id, category_id, title, description, status, due_date,
	position, notify, lead_minutes, notified, completed_at, created_at, updated_at`

func scanTask(scan func(dest ...any) error) (*Task, error) {
	t := &Task{}
	var dueDate, completedAt sql.NullString
	var notify, notified int
	var createdAt, updatedAt string
	err := scan(&t.ID, &t.UserID, &t.CategoryID, &t.Title, &t.Description, &t.Status,
		&dueDate, &t.Position, &notify, &t.LeadMinutes, &notified, &completedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.Notify = notify == 1
	t.Notified = notified == 1
	if dueDate.Valid {
		d, _ := time.Parse(time.RFC3339, dueDate.String)
		t.DueDate = &d
	}
	if completedAt.Valid {
		c, _ := time.Parse(time.RFC3339, completedAt.String)
		t.CompletedAt = &c
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return t, nil
}

// NewTask carries the user-editable fields for creating or updating a task.
type NewTask struct {
	Title       string
	Description string
	CategoryID  int64
	DueDate     *time.Time
	Notify      bool
	LeadMinutes int
}

// CreateTask inserts an upcoming task at the end of its owner's upcoming column.
func (s *Store) CreateTask(userID int64, nt NewTask) (*Task, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	var pos int
	err := s.db.QueryRow(
		`SELECT COALESCE(MAX(position), -1) + 1 FROM tasks WHERE user_id = ? AND status = ?`,
		userID, StatusUpcoming,
	).Scan(&pos)
	if err != nil {
		return nil, fmt.Errorf("next position: %w", err)
	}

	var due any
	if nt.DueDate != nil {
		due = nt.DueDate.UTC().Format(time.RFC3339)
	}
	res, err := s.db.Exec(
		`INSERT INTO tasks (user_id, category_id, title, description, due_date, position, notify, lead_minutes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, nt.CategoryID, nt.Title, nt.Description, due, pos, boolInt(nt.Notify), nt.LeadMinutes, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTask(id)
}

func (s *Store) GetTask(id int64) (*Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

func (s *Store) ListTasks(f TaskFilter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{f.UserID}

	if f.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *f.CategoryID)
	}
	if f.Status != nil {
		query += ` AND status = ?`
		args = append(args, *f.Status)
	}
	if f.DueFrom != nil {
		query += ` AND due_date IS NOT NULL AND due_date >= ?`
		args = append(args, f.DueFrom.UTC().Format(time.RFC3339))
	}
	if f.DueTo != nil {
		query += ` AND due_date IS NOT NULL AND due_date < ?`
		args = append(args, f.DueTo.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY status, position`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask replaces the editable fields. A changed due date re-arms the
// reminder (notified is reset) so an edited task can fire again.
func (s *Store) UpdateTask(id int64, nt NewTask) (*Task, error) {
	old, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var due any
	if nt.DueDate != nil {
		due = nt.DueDate.UTC().Format(time.RFC3339)
	}

	notified := old.Notified
	if !sameTime(old.DueDate, nt.DueDate) || old.LeadMinutes != nt.LeadMinutes {
		notified = false
	}

	_, err = s.db.Exec(
		`UPDATE tasks SET category_id = ?, title = ?, description = ?, due_date = ?,
		 notify = ?, lead_minutes = ?, notified = ?, updated_at = ? WHERE id = ?`,
		nt.CategoryID, nt.Title, nt.Description, due,
		boolInt(nt.Notify), nt.LeadMinutes, boolInt(notified), now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetTask(id)
}

// SetTaskStatus moves a task to another status column, appending it at the
// end. completed_at is stamped only while the task is completed.
func (s *Store) SetTaskStatus(id int64, status string) (*Task, error) {
	t, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	if t.Status == status {
		return t, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var pos int
	err = tx.QueryRow(
		`SELECT COALESCE(MAX(position), -1) + 1 FROM tasks WHERE user_id = ? AND status = ?`,
		t.UserID, status,
	).Scan(&pos)
	if err != nil {
		return nil, fmt.Errorf("next position: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var completedAt any
	if status == StatusCompleted {
		completedAt = now
	}
	if _, err := tx.Exec(
		`UPDATE tasks SET status = ?, position = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
		status, pos, completedAt, now, id,
	); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}

	// Close the gap in the old column.
	if _, err := tx.Exec(
		`UPDATE tasks SET position = position - 1 WHERE user_id = ? AND status = ? AND position > ?`,
		t.UserID, t.Status, t.Position,
	); err != nil {
		return nil, fmt.Errorf("compact column: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetTask(id)
}

// MoveTask places a task at position pos within the given status column,
// shifting neighbors so positions stay dense.
func (s *Store) MoveTask(id int64, status string, pos int) (*Task, error) {
	t, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	if pos < 0 {
		pos = 0
	}

	var count int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE user_id = ? AND status = ?`, t.UserID, status,
	).Scan(&count); err != nil {
		return nil, fmt.Errorf("column size: %w", err)
	}
	if t.Status == status {
		if pos > count-1 {
			pos = count - 1
		}
	} else if pos > count {
		pos = count
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)

	if t.Status == status {
		if pos == t.Position {
			return t, nil
		}
		if pos > t.Position {
			_, err = tx.Exec(
				`UPDATE tasks SET position = position - 1 WHERE user_id = ? AND status = ? AND position > ? AND position <= ?`,
				t.UserID, status, t.Position, pos,
			)
		} else {
			_, err = tx.Exec(
				`UPDATE tasks SET position = position + 1 WHERE user_id = ? AND status = ? AND position >= ? AND position < ?`,
				t.UserID, status, pos, t.Position,
			)
		}
		if err != nil {
			return nil, fmt.Errorf("shift column: %w", err)
		}
	} else {
		if _, err := tx.Exec(
			`UPDATE tasks SET position = position - 1 WHERE user_id = ? AND status = ? AND position > ?`,
			t.UserID, t.Status, t.Position,
		); err != nil {
			return nil, fmt.Errorf("compact old column: %w", err)
		}
		if _, err := tx.Exec(
			`UPDATE tasks SET position = position + 1 WHERE user_id = ? AND status = ? AND position >= ?`,
			t.UserID, status, pos,
		); err != nil {
			return nil, fmt.Errorf("open gap: %w", err)
		}
	}

	var completedAt any
	if status == StatusCompleted {
		if t.CompletedAt != nil {
			completedAt = t.CompletedAt.UTC().Format(time.RFC3339)
		} else {
			completedAt = now
		}
	}
	if _, err := tx.Exec(
		`UPDATE tasks SET status = ?, position = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
		status, pos, completedAt, now, id,
	); err != nil {
		return nil, fmt.Errorf("move task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetTask(id)
}

func (s *Store) DeleteTask(id int64) error {
	t, err := s.GetTask(id)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if _, err := tx.Exec(
		`UPDATE tasks SET position = position - 1 WHERE user_id = ? AND status = ? AND position > ?`,
		t.UserID, t.Status, t.Position,
	); err != nil {
		return fmt.Errorf("compact column: %w", err)
	}
	return tx.Commit()
}

// SweepOverdue flips upcoming tasks whose due date has passed to overdue.
// Completed/canceled tasks and tasks without a due date are never touched.
func (s *Store) SweepOverdue(now time.Time) (int64, error) {
	nowStr := now.UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE tasks SET status = ?, updated_at = ?
		 WHERE status = ? AND due_date IS NOT NULL AND due_date < ?`,
		StatusOverdue, nowStr, StatusUpcoming, nowStr,
	)
	if err != nil {
		return 0, fmt.Errorf("sweep overdue: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ListReminderCandidates returns active tasks with an armed reminder and a
// due date, across all users. The caller decides which have actually come due.
func (s *Store) ListReminderCandidates() ([]Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskColumns+` FROM tasks
		 WHERE notify = 1 AND notified = 0 AND due_date IS NOT NULL AND status IN (?, ?)
		 ORDER BY due_date`,
		StatusUpcoming, StatusOverdue,
	)
	if err != nil {
		return nil, fmt.Errorf("list reminder candidates: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// MarkNotified records that a reminder fired for the task.
func (s *Store) MarkNotified(id int64) error {
	_, err := s.db.Exec(`UPDATE tasks SET notified = 1 WHERE id = ?`, id)
	return err
}

// SetNotified re-arms (false) or disarms (true) a task's reminder.
func (s *Store) SetNotified(id int64, notified bool) error {
	_, err := s.db.Exec(`UPDATE tasks SET notified = ? WHERE id = ?`, boolInt(notified), id)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
