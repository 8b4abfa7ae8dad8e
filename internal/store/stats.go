package store

import (
	"fmt"
	"time"
)

func (s *Store) CountByStatus(userID int64) (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT status, COUNT(*) FROM tasks WHERE user_id = ? GROUP BY status`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// GetCompletionSummary returns per-day created and completed task counts for
// the half-open range [from, to).
func (s *Store) GetCompletionSummary(userID int64, from, to time.Time) ([]DailyCompletion, error) {
	fromStr := from.UTC().Format(time.RFC3339)
	toStr := to.UTC().Format(time.RFC3339)

	rows, err := s.db.Query(`
		SELECT day, SUM(created), SUM(completed) FROM (
			SELECT date(created_at) AS day, 1 AS created, 0 AS completed
			FROM tasks
			WHERE user_id = ? AND created_at >= ? AND created_at < ?
			UNION ALL
			SELECT date(completed_at) AS day, 0, 1
			FROM tasks
			WHERE user_id = ? AND completed_at IS NOT NULL AND completed_at >= ? AND completed_at < ?
		)
		GROUP BY day
		ORDER BY day`,
		userID, fromStr, toStr, userID, fromStr, toStr,
	)
	if err != nil {
		return nil, fmt.Errorf("completion summary: %w", err)
	}
	defer rows.Close()

	var summaries []DailyCompletion
	for rows.Next() {
		var dc DailyCompletion
		if err := rows.Scan(&dc.Date, &dc.Created, &dc.Completed); err != nil {
			return nil, err
		}
		summaries = append(summaries, dc)
	}
	return summaries, rows.Err()
}

// GetCategoryTotals aggregates total and completed task counts per category.
func (s *Store) GetCategoryTotals(userID int64) ([]CategoryTotal, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.color,
		       COUNT(t.id),
		       COALESCE(SUM(CASE WHEN t.status = ? THEN 1 ELSE 0 END), 0)
		FROM categories c
		LEFT JOIN tasks t ON t.category_id = c.id
		WHERE c.user_id = ?
		GROUP BY c.id
		ORDER BY c.name`,
		StatusCompleted, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &ct.Color, &ct.Total, &ct.Completed); err != nil {
			return nil, err
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}
