package cli

import (
	"fmt"
	"strings"

	"github.com/avero-hq/avero/internal/model"
	"github.com/avero-hq/avero/internal/narrator"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// RenderSummary renders the headline numbers of ds in a box.
func RenderSummary(ds *model.Dataset, s model.SummaryMetrics) string {
	rows := []struct {
		label string
		value string
	}{
		{"Total Revenue", money(s.TotalRevenue)},
		{"Total Bookings", humanize.Comma(s.TotalBookings)},
		{"Total Expenses", money(s.TotalExpenses)},
		{"Total Clients", humanize.Comma(s.TotalClients)},
		{"Net Income", money(s.NetIncome())},
	}

	lines := make([]string, 0, len(rows)+2)
	for _, r := range rows {
		lines = append(lines, KPILabelStyle.Render(r.label)+KPIValueStyle.Render(r.value))
	}
	if ds.Len() > 0 {
		first, last := ds.At(0).Date, ds.At(ds.Len()-1).Date
		lines = append(lines, "", SubtleStyle.Render(fmt.Sprintf("%s rows, %s to %s",
			humanize.Comma(int64(ds.Len())), first.Format(model.DateLayout), last.Format(model.DateLayout))))
	}

	return RenderBox(ChartIcon+" "+ds.Name(), strings.Join(lines, "\n"))
}

// SummaryJSON is the machine-readable form of a summary.
type SummaryJSON struct {
	Dataset       string          `json:"dataset"`
	Rows          int             `json:"rows"`
	Fingerprint   string          `json:"fingerprint"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetIncome     decimal.Decimal `json:"net_income"`
	TotalBookings int64           `json:"total_bookings"`
	TotalClients  int64           `json:"total_clients"`
}

// NewSummaryJSON converts a summary for JSON output.
func NewSummaryJSON(ds *model.Dataset, s model.SummaryMetrics) SummaryJSON {
	return SummaryJSON{
		Dataset:       ds.Name(),
		Rows:          ds.Len(),
		Fingerprint:   ds.Fingerprint(),
		TotalRevenue:  s.TotalRevenue,
		TotalExpenses: s.TotalExpenses,
		NetIncome:     s.NetIncome(),
		TotalBookings: s.TotalBookings,
		TotalClients:  s.TotalClients,
	}
}

func money(d decimal.Decimal) string {
	return "$" + narrator.FormatAmount(d, 0)
}
