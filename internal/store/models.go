package store

import "time"

// Task statuses.
const (
	StatusUpcoming  = "upcoming"
	StatusOverdue   = "overdue"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)

// Statuses lists all task statuses in board-column order.
var Statuses = []string{StatusUpcoming, StatusOverdue, StatusCompleted, StatusCanceled}

type User struct {
	ID          int64
	Email       string
	DisplayName string
	AvatarURL   string
	Phone       string
	CreatedAt   time.Time
}

type Category struct {
	ID        int64
	UserID    int64
	Name      string
	Color     string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Task struct {
	ID          int64
	UserID      int64
	CategoryID  int64
	Title       string
	Description string
	Status      string
	DueDate     *time.Time
	Position    int
	Notify      bool
	LeadMinutes int
	Notified    bool
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Setting struct {
	Key   string
	Value string
}

// TaskFilter is used to filter tasks in queries.
type TaskFilter struct {
	UserID     int64
	CategoryID *int64
	Status     *string
	DueFrom    *time.Time
	DueTo      *time.Time
	Limit      int
}

// DailyCompletion represents per-day created/completed counts for analytics.
type DailyCompletion struct {
	Date      string
	Created   int
	Completed int
}

// CategoryTotal aggregates task counts per category.
type CategoryTotal struct {
	CategoryID int64
	Name       string
	Color      string
	Total      int
	Completed  int
}
