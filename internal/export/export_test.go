package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dkocak/taskdeck/internal/store"
)

func sampleData() ([]store.Task, map[int64]*store.Category) {
	now := time.Now().UTC()
	due := now.Add(24 * time.Hour)
	completed := now.Add(-time.Hour)

	tasks := []store.Task{
		{
			ID:          1,
			UserID:      1,
			CategoryID:  1,
			Title:       "Write report",
			Description: "quarterly numbers",
			Status:      store.StatusUpcoming,
			DueDate:     &due,
			Notify:      true,
			LeadMinutes: 30,
			CreatedAt:   now,
		},
		{
			ID:          2,
			UserID:      1,
			CategoryID:  2,
			Title:       "Pay rent",
			Status:      store.StatusCompleted,
			CompletedAt: &completed,
			CreatedAt:   now,
		},
		{
			ID:         3,
			UserID:     1,
			CategoryID: 99, // no matching category
			Title:      "Mystery",
			Status:     store.StatusCanceled,
			CreatedAt:  now,
		},
	}

	categories := map[int64]*store.Category{
		1: {ID: 1, Name: "Work", Color: "#FF0000"},
		2: {ID: 2, Name: "Home", Color: "#00FF00"},
	}

	return tasks, categories
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	tasks, categories := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(tasks, categories, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	header := records[0]
	expectedHeader := []string{"ID", "Title", "Category", "Status", "Due", "Completed", "Description"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	row := records[1]
	if row[0] != "1" {
		t.Fatalf("ID = %q, want 1", row[0])
	}
	if row[1] != "Write report" {
		t.Fatalf("Title = %q, want Write report", row[1])
	}
	if row[2] != "Work" {
		t.Fatalf("Category = %q, want Work", row[2])
	}
	if row[3] != store.StatusUpcoming {
		t.Fatalf("Status = %q, want %s", row[3], store.StatusUpcoming)
	}
	if row[4] == "" {
		t.Fatal("Due should be set for the first task")
	}
	if row[5] != "" {
		t.Fatal("Completed should be empty for an open task")
	}
	if row[6] != "quarterly numbers" {
		t.Fatalf("Description = %q", row[6])
	}

	// Completed task carries its timestamp, no due date.
	done := records[2]
	if done[4] != "" {
		t.Fatalf("task without due date should have empty Due, got %q", done[4])
	}
	if done[5] == "" {
		t.Fatal("completed task should have a Completed timestamp")
	}

	// Unknown category falls back to a placeholder.
	if records[3][2] != "Unknown" {
		t.Fatalf("missing category should export as Unknown, got %q", records[3][2])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected header only, got %d rows", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	tasks, categories := sampleData()
	err := ToCSV(tasks, categories, filepath.Join(t.TempDir(), "missing", "test.csv"))
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	tasks, categories := sampleData()
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(tasks, categories, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var out jsonExport
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if out.Count != 3 || len(out.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got count=%d len=%d", out.Count, len(out.Tasks))
	}
	if out.ExportedAt == "" {
		t.Fatal("exported_at should be set")
	}

	first := out.Tasks[0]
	if first.Title != "Write report" || first.Category != "Work" {
		t.Fatalf("unexpected first task: %+v", first)
	}
	if first.DueDate == "" {
		t.Fatal("due_date should be set")
	}
	if !first.Notify || first.LeadMinutes != 30 {
		t.Fatalf("reminder fields lost: %+v", first)
	}

	second := out.Tasks[1]
	if second.Status != store.StatusCompleted || second.CompletedAt == "" {
		t.Fatalf("unexpected second task: %+v", second)
	}

	if out.Tasks[2].Category != "Unknown" {
		t.Fatalf("missing category should export as Unknown, got %q", out.Tasks[2].Category)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var out jsonExport
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 0 {
		t.Fatalf("expected count 0, got %d", out.Count)
	}
}

func TestToJSONBadPath(t *testing.T) {
	tasks, categories := sampleData()
	err := ToJSON(tasks, categories, filepath.Join(t.TempDir(), "missing", "test.json"))
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}
