package components

import (
	"fmt"
	"strings"

	"github.com/avero-hq/avero/internal/model"
	"github.com/avero-hq/avero/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var dataColumns = []struct {
	title string
	width int
}{
	{"Date", 12},
	{"Revenue", 14},
	{"Bookings", 10},
	{"Expenses", 14},
	{"Clients", 9},
}

// DataTable renders the first limit rows of ds as a table. Remaining rows are
// counted in a footer. A non-positive limit shows every row.
func DataTable(theme themes.Theme, ds *model.Dataset, limit int) string {
	if ds.Len() == 0 {
		return theme.Subtitle.Render("No data")
	}

	header := make([]string, len(dataColumns))
	for i, c := range dataColumns {
		header[i] = cell(theme.Bold, c.width, i > 0, c.title)
	}
	lines := []string{strings.Join(header, "")}

	points := ds.Points()
	shown := len(points)
	if limit > 0 {
		shown = min(shown, limit)
	}
	for _, p := range points[:shown] {
		values := []string{
			p.Date.Format(model.DateLayout),
			p.Revenue.StringFixed(2),
			humanize.Comma(p.Bookings),
			p.Expenses.StringFixed(2),
			humanize.Comma(p.Clients),
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = cell(theme.Normal, dataColumns[i].width, i > 0, v)
		}
		lines = append(lines, strings.Join(row, ""))
	}

	if rest := len(points) - shown; rest > 0 {
		lines = append(lines, theme.Subtitle.Render(fmt.Sprintf("… %d more rows", rest)))
	}
	return strings.Join(lines, "\n")
}

func cell(style lipgloss.Style, width int, right bool, s string) string {
	align := lipgloss.Left
	if right {
		align = lipgloss.Right
	}
	return style.Width(width).Align(align).Render(s)
}
