// Package components holds the reusable widgets of the dashboard.
package components

import (
	"github.com/avero-hq/avero/internal/model"
	"github.com/avero-hq/avero/internal/narrator"
	"github.com/avero-hq/avero/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// KPI is a labelled headline number.
type KPI struct {
	Label string
	Value string
}

// SummaryKPIs formats the headline numbers of a summary.
func SummaryKPIs(s model.SummaryMetrics) []KPI {
	return []KPI{
		{Label: "Total Revenue", Value: "$" + narrator.FormatAmount(s.TotalRevenue, 0)},
		{Label: "Total Bookings", Value: humanize.Comma(s.TotalBookings)},
		{Label: "Total Expenses", Value: "$" + narrator.FormatAmount(s.TotalExpenses, 0)},
		{Label: "Total Clients", Value: humanize.Comma(s.TotalClients)},
		{Label: "Net Income", Value: "$" + narrator.FormatAmount(s.NetIncome(), 0)},
	}
}

// RenderKPIs lays the cards out in rows that fit width.
func RenderKPIs(theme themes.Theme, kpis []KPI, width int) string {
	cards := make([]string, len(kpis))
	for i, k := range kpis {
		cards[i] = theme.KPIBox.Render(lipgloss.JoinVertical(lipgloss.Left,
			theme.KPILabel.Render(k.Label),
			theme.KPIValue.Render(k.Value)))
	}
	if len(cards) == 0 {
		return ""
	}

	perRow := len(cards)
	if cardWidth := lipgloss.Width(cards[0]); width > 0 && cardWidth > 0 {
		perRow = max(1, min(len(cards), width/cardWidth))
	}

	var rows []string
	for start := 0; start < len(cards); start += perRow {
		end := min(start+perRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
