package aggregate

import (
	"fmt"
	"time"

	"github.com/avero-hq/avero/internal/model"
	"github.com/shopspring/decimal"
)

// Metric names a per-period measure that can be charted.
type Metric string

// Chartable metrics.
const (
	MetricRevenue  Metric = "revenue"
	MetricBookings Metric = "bookings"
	MetricExpenses Metric = "expenses"
	MetricClients  Metric = "clients"
)

// Metrics lists the chartable metrics in display order.
var Metrics = []Metric{MetricRevenue, MetricBookings, MetricExpenses, MetricClients}

// Point is one value of a time series.
type Point struct {
	Date  time.Time
	Value decimal.Decimal
}

// Series returns metric over time in dataset order.
func Series(ds *model.Dataset, metric Metric) ([]Point, error) {
	pick, err := selector(metric)
	if err != nil {
		return nil, err
	}

	out := make([]Point, ds.Len())
	for i := range out {
		p := ds.At(i)
		out[i] = Point{Date: p.Date, Value: pick(p)}
	}
	return out, nil
}

func selector(metric Metric) (func(model.DataPoint) decimal.Decimal, error) {
	switch metric {
	case MetricRevenue:
		return func(p model.DataPoint) decimal.Decimal { return p.Revenue }, nil
	case MetricExpenses:
		return func(p model.DataPoint) decimal.Decimal { return p.Expenses }, nil
	case MetricBookings:
		return func(p model.DataPoint) decimal.Decimal { return decimal.NewFromInt(p.Bookings) }, nil
	case MetricClients:
		return func(p model.DataPoint) decimal.Decimal { return decimal.NewFromInt(p.Clients) }, nil
	default:
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
}
