package dataset

import (
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/avero-hq/avero/internal/model"
	"github.com/shopspring/decimal"
)

// Required column names.
const (
	ColumnDate     = "date"
	ColumnRevenue  = "revenue"
	ColumnBookings = "bookings"
	ColumnExpenses = "expenses"
	ColumnClients  = "clients"
)

// Columns lists every column a dataset must provide.
var Columns = []string{ColumnDate, ColumnRevenue, ColumnBookings, ColumnExpenses, ColumnClients}

var dateLayouts = []string{
	model.DateLayout,
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseDate accepts the date layouts produced by common spreadsheet exports
// and keeps only the calendar date.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseTable reads a header plus rows into data points. The first invalid
// row aborts the whole table.
func parseTable(name string, r RowReader) ([]model.DataPoint, error) {
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &LoadError{Kind: ErrEmptyDataset, Dataset: name}
	}
	if err != nil {
		return nil, &LoadError{Kind: ErrMissingColumn, Dataset: name, Err: err}
	}

	index, err := columnIndex(name, header)
	if err != nil {
		return nil, err
	}

	var points []model.DataPoint
	for row := 1; ; row++ {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Malformed rows (bad quoting, wrong field count) cannot be mapped to columns.
			return nil, &LoadError{Kind: ErrMissingColumn, Dataset: name, Row: row, Err: err}
		}

		p, err := parseRow(name, row, fields, index)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	if len(points) == 0 {
		return nil, &LoadError{Kind: ErrEmptyDataset, Dataset: name}
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points, nil
}

func columnIndex(name string, header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			return nil, &LoadError{Kind: ErrMissingColumn, Dataset: name, Column: col}
		}
	}
	return index, nil
}

func parseRow(name string, row int, fields []string, index map[string]int) (model.DataPoint, error) {
	get := func(col string) (string, error) {
		i := index[col]
		if i >= len(fields) {
			return "", &LoadError{Kind: ErrMissingColumn, Dataset: name, Row: row, Column: col}
		}
		return strings.TrimSpace(fields[i]), nil
	}

	var p model.DataPoint

	raw, err := get(ColumnDate)
	if err != nil {
		return p, err
	}
	date, ok := parseDate(raw)
	if !ok {
		return p, &LoadError{Kind: ErrUnparsableDate, Dataset: name, Row: row, Column: ColumnDate, Value: raw}
	}
	p.Date = date

	decimals := []struct {
		col string
		dst *decimal.Decimal
	}{
		{ColumnRevenue, &p.Revenue},
		{ColumnExpenses, &p.Expenses},
	}
	for _, d := range decimals {
		raw, err := get(d.col)
		if err != nil {
			return p, err
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return p, &LoadError{Kind: ErrUnparsableNumber, Dataset: name, Row: row, Column: d.col, Value: raw, Err: err}
		}
		*d.dst = v
	}

	integers := []struct {
		col string
		dst *int64
	}{
		{ColumnBookings, &p.Bookings},
		{ColumnClients, &p.Clients},
	}
	for _, n := range integers {
		raw, err := get(n.col)
		if err != nil {
			return p, err
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return p, &LoadError{Kind: ErrUnparsableNumber, Dataset: name, Row: row, Column: n.col, Value: raw, Err: err}
		}
		*n.dst = v
	}

	return p, nil
}
