package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar date format used across the application.
const DateLayout = "2006-01-02"

// DataPoint is a single business observation for one period.
type DataPoint struct {
	Date     time.Time
	Revenue  decimal.Decimal
	Expenses decimal.Decimal
	Bookings int64
	Clients  int64
}

// canonical renders the point in a stable textual form used for fingerprinting.
func (p DataPoint) canonical() string {
	return fmt.Sprintf("%s|%s|%d|%s|%d",
		p.Date.Format(DateLayout),
		p.Revenue.String(),
		p.Bookings,
		p.Expenses.String(),
		p.Clients)
}

// Dataset is an ordered, immutable sequence of data points for one vertical.
type Dataset struct {
	name        string
	fingerprint string
	points      []DataPoint
}

// NewDataset builds a dataset from points in the given order.
// The points are copied; the caller may reuse its slice.
func NewDataset(name string, points []DataPoint) *Dataset {
	owned := make([]DataPoint, len(points))
	copy(owned, points)

	return &Dataset{
		name:        name,
		points:      owned,
		fingerprint: fingerprint(owned),
	}
}

// fingerprint hashes every field of every row in order.
func fingerprint(points []DataPoint) string {
	h := sha256.New()
	for _, p := range points {
		_, _ = h.Write([]byte(p.canonical()))
		_, _ = h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Name returns the name the dataset was loaded under.
func (d *Dataset) Name() string {
	if d == nil {
		return ""
	}
	return d.name
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.points)
}

// At returns the row at index i.
func (d *Dataset) At(i int) DataPoint {
	return d.points[i]
}

// Points returns a copy of all rows in order.
func (d *Dataset) Points() []DataPoint {
	if d == nil {
		return nil
	}
	out := make([]DataPoint, len(d.points))
	copy(out, d.points)
	return out
}

// Fingerprint identifies the dataset by content. Datasets with identical rows
// share a fingerprint regardless of their name.
func (d *Dataset) Fingerprint() string {
	if d == nil {
		return ""
	}
	return d.fingerprint
}

// SummaryMetrics holds the aggregate totals of a dataset.
type SummaryMetrics struct {
	TotalRevenue  decimal.Decimal
	TotalExpenses decimal.Decimal
	TotalBookings int64
	TotalClients  int64
}

// NetIncome returns revenue minus expenses.
func (s SummaryMetrics) NetIncome() decimal.Decimal {
	return s.TotalRevenue.Sub(s.TotalExpenses)
}

// Equal reports whether two summaries hold the same values.
func (s SummaryMetrics) Equal(other SummaryMetrics) bool {
	return s.TotalRevenue.Equal(other.TotalRevenue) &&
		s.TotalExpenses.Equal(other.TotalExpenses) &&
		s.TotalBookings == other.TotalBookings &&
		s.TotalClients == other.TotalClients
}
