package components

import (
	"fmt"
	"strings"

	"github.com/avero-hq/avero/internal/aggregate"
	"github.com/avero-hq/avero/internal/model"
	"github.com/avero-hq/avero/internal/narrator"
	"github.com/avero-hq/avero/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// BarChart renders one horizontal bar per point, scaled to the largest
// magnitude. Negative values are drawn in the error style.
func BarChart(theme themes.Theme, points []aggregate.Point, width int) string {
	if len(points) == 0 {
		return lipgloss.NewStyle().Foreground(theme.Muted).Render("No data")
	}

	labels := make([]string, len(points))
	peak := 0.0
	labelWidth := 0
	for i, p := range points {
		labels[i] = narrator.FormatAmount(p.Value, 0)
		labelWidth = max(labelWidth, len(labels[i]))
		peak = max(peak, abs(p.Value.InexactFloat64()))
	}

	// date, spaces and the value label
	barSpace := max(1, width-len(model.DateLayout)-labelWidth-3)

	lines := make([]string, len(points))
	for i, p := range points {
		n := 0
		if peak > 0 {
			n = int(abs(p.Value.InexactFloat64()) / peak * float64(barSpace))
		}
		style := theme.Bar
		if p.Value.IsNegative() {
			style = theme.StatusError
		}
		bar := style.Render(strings.Repeat("█", n)) + strings.Repeat(" ", barSpace-n)
		lines[i] = fmt.Sprintf("%s %s %*s", p.Date.Format(model.DateLayout), bar, labelWidth, labels[i])
	}
	return strings.Join(lines, "\n")
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
