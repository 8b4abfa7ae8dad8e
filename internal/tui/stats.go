package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkocak/taskdeck/internal/store"
)

const statsDays = 14

type statsModel struct {
	store  *store.Store
	userID int64
	width  int
	height int

	summaries []store.DailyCompletion
	totals    []store.CategoryTotal
	counts    map[string]int

	chart barchart.Model
}

func newStatsModel(s *store.Store, userID int64) statsModel {
	return statsModel{
		store:  s,
		userID: userID,
		chart:  barchart.New(60, 12),
	}
}

func (m *statsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *statsModel) setUser(userID int64) {
	m.userID = userID
}

func (m statsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		now := time.Now().UTC()
		to := startOfDay(now).Add(24 * time.Hour)
		from := to.AddDate(0, 0, -statsDays)

		summaries, _ := m.store.GetCompletionSummary(m.userID, from, to)
		totals, _ := m.store.GetCategoryTotals(m.userID)
		counts, _ := m.store.CountByStatus(m.userID)

		return statsDataMsg{summaries: summaries, totals: totals, counts: counts}
	}
}

func (m statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		m.summaries = msg.summaries
		m.totals = msg.totals
		m.counts = msg.counts
		m.buildChart()
		return m, nil
	}
	return m, nil
}

func (m *statsModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if m.height > 30 {
		chartHeight = 14
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	byDate := make(map[string]store.DailyCompletion, len(m.summaries))
	for _, s := range m.summaries {
		byDate[s.Date] = s
	}

	now := time.Now().UTC()
	end := startOfDay(now).Add(24 * time.Hour)
	start := end.AddDate(0, 0, -statsDays)

	var bars []barchart.BarData
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		label := d.Format("02")

		completed := 0.0
		if s, ok := byDate[dateStr]; ok {
			completed = float64(s.Completed)
		}

		values := []barchart.BarValue{{
			Name:  "completed",
			Value: completed,
			Style: lipgloss.NewStyle().Foreground(colorSuccess),
		}}
		if completed == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: values,
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m statsModel) completionRate() (int, int) {
	total := 0
	for _, n := range m.counts {
		total += n
	}
	return m.counts[store.StatusCompleted], total
}

func (m statsModel) view() string {
	w := m.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ",
		mutedStyle.Render(fmt.Sprintf("completed per day, last %d days", statsDays)),
	)

	chartView := m.chart.View()

	// Status counts line
	completed, total := m.completionRate()
	rate := 0
	if total > 0 {
		rate = completed * 100 / total
	}
	counts := fmt.Sprintf("  %s  %s  %s  %s   %s",
		mutedStyle.Render(fmt.Sprintf("○ %d upcoming", m.counts[store.StatusUpcoming])),
		errorStyle.Render(fmt.Sprintf("! %d overdue", m.counts[store.StatusOverdue])),
		successStyle.Render(fmt.Sprintf("✓ %d completed", m.counts[store.StatusCompleted])),
		mutedStyle.Render(fmt.Sprintf("✗ %d canceled", m.counts[store.StatusCanceled])),
		highlightStyle.Render(fmt.Sprintf("%d%% completion", rate)),
	)

	tableView := m.renderCategoryTable(w)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", counts, "", tableView,
		),
	)
}

func (m statsModel) renderCategoryTable(w int) string {
	if len(m.totals) == 0 {
		return mutedStyle.Render("  No categories yet")
	}

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-20s %8s %10s %8s", "Category", "Tasks", "Completed", "Rate"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 50))))

	for _, ct := range m.totals {
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(ct.Color)).Render("●")
		rate := "—"
		if ct.Total > 0 {
			rate = fmt.Sprintf("%d%%", ct.Completed*100/ct.Total)
		}
		rows = append(rows, fmt.Sprintf("  %s %-18s %8d %10d %8s",
			colorDot, truncate(ct.Name, 18), ct.Total, ct.Completed, rate,
		))
	}

	return strings.Join(rows, "\n")
}
