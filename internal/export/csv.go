package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/dkocak/taskdeck/internal/store"
)

func ToCSV(tasks []store.Task, categories map[int64]*store.Category, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Title", "Category", "Status", "Due", "Completed", "Description"}); err != nil {
		return err
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

		row := []string{
			fmt.Sprintf("%d", t.ID),
			t.Title,
			categoryName,
			t.Status,
			dueStr,
			completedStr,
			t.Description,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
