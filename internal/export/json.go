package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dkocak/taskdeck/internal/store"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Count      int        `json:"count"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	CategoryID  int64  `json:"category_id"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
	LeadMinutes int    `json:"lead_minutes,omitempty"`
	Notify      bool   `json:"notify,omitempty"`
}

func ToJSON(tasks []store.Task, categories map[int64]*store.Category, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(tasks),
	}

	for _, t := range tasks {
		categoryName := "Unknown"
		if c, ok := categories[t.CategoryID]; ok {
			categoryName = c.Name
		}
		dueStr := ""
		if t.DueDate != nil {
			dueStr = t.DueDate.Local().Format(time.RFC3339)
		}
		completedStr := ""
		if t.CompletedAt != nil {
			completedStr = t.CompletedAt.Local().Format(time.RFC3339)
		}

		export.Tasks = append(export.Tasks, jsonTask{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Category:    categoryName,
			CategoryID:  t.CategoryID,
			Status:      t.Status,
			DueDate:     dueStr,
			CompletedAt: completedStr,
			LeadMinutes: t.LeadMinutes,
			Notify:      t.Notify,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
