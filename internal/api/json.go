package api

import (
	"time"

	"github.com/avero-hq/avero/internal/aggregate"
	"github.com/avero-hq/avero/internal/model"
	"github.com/shopspring/decimal"
)

type sessionJSON struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type summaryJSON struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetIncome     decimal.Decimal `json:"net_income"`
	TotalBookings int64           `json:"total_bookings"`
	TotalClients  int64           `json:"total_clients"`
}

type pointJSON struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

type rowJSON struct {
	Date     string          `json:"date"`
	Revenue  decimal.Decimal `json:"revenue"`
	Bookings int64           `json:"bookings"`
	Expenses decimal.Decimal `json:"expenses"`
	Clients  int64           `json:"clients"`
}

type datasetJSON struct {
	Name        string                           `json:"name"`
	Rows        int                              `json:"rows"`
	Fingerprint string                           `json:"fingerprint"`
	Summary     summaryJSON                      `json:"summary"`
	Series      map[aggregate.Metric][]pointJSON `json:"series"`
	Data        []rowJSON                        `json:"data"`
}

type appointmentJSON struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	Assignee    string `json:"assignee,omitempty"`
}

// taskInputJSON mirrors model.TaskInput field for field.
type taskInputJSON struct {
	Name            string `json:"name"`
	Assignee        string `json:"assignee"`
	EstimatedStart  string `json:"estimated_start"`
	EstimatedFinish string `json:"estimated_finish"`
	ActualStart     string `json:"actual_start"`
	ActualFinish    string `json:"actual_finish"`
}

type taskJSON struct {
	Index int `json:"index"`
	taskInputJSON
	Complete bool `json:"complete"`
}

type outcomeJSON struct {
	EventID  string `json:"event_id"`
	Kind     string `json:"kind"`
	Index    int    `json:"index"`
	Replayed bool   `json:"replayed"`
}

func toSummaryJSON(s model.SummaryMetrics) summaryJSON {
	return summaryJSON{
		TotalRevenue:  s.TotalRevenue,
		TotalExpenses: s.TotalExpenses,
		NetIncome:     s.NetIncome(),
		TotalBookings: s.TotalBookings,
		TotalClients:  s.TotalClients,
	}
}

func toRowsJSON(points []model.DataPoint) []rowJSON {
	out := make([]rowJSON, len(points))
	for i, p := range points {
		out[i] = rowJSON{
			Date:     p.Date.Format(model.DateLayout),
			Revenue:  p.Revenue,
			Bookings: p.Bookings,
			Expenses: p.Expenses,
			Clients:  p.Clients,
		}
	}
	return out
}

func toPointsJSON(points []aggregate.Point) []pointJSON {
	out := make([]pointJSON, len(points))
	for i, p := range points {
		out[i] = pointJSON{Date: p.Date.Format(model.DateLayout), Value: p.Value}
	}
	return out
}

func toAppointmentsJSON(appts []model.Appointment) []appointmentJSON {
	out := make([]appointmentJSON, len(appts))
	for i, a := range appts {
		out[i] = appointmentJSON{
			Date:        a.Date.Format(model.DateLayout),
			Time:        a.Time.String(),
			Description: a.Description,
			Assignee:    a.Assignee,
		}
	}
	return out
}

func toTasksJSON(tasks []model.Task) []taskJSON {
	out := make([]taskJSON, len(tasks))
	for i, t := range tasks {
		out[i] = taskJSON{
			Index: i,
			taskInputJSON: taskInputJSON{
				Name:            t.Name,
				Assignee:        t.Assignee,
				EstimatedStart:  t.EstimatedStart.Format(model.DateLayout),
				EstimatedFinish: t.EstimatedFinish.Format(model.DateLayout),
				ActualStart:     t.ActualStart.Format(model.DateLayout),
				ActualFinish:    t.ActualFinish.Format(model.DateLayout),
			},
			Complete: t.Complete,
		}
	}
	return out
}
