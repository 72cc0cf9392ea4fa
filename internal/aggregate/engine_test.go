package aggregate

import (
	"testing"

	"github.com/avero-hq/avero/internal/common"
	"github.com/avero-hq/avero/internal/model"
	"github.com/avero-hq/avero/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	hits, misses int
}

func (c *countingObserver) ObserveCache(hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

func newTestEngine(size int) *Engine {
	return NewEngine(size, WithLogger(common.DiscardLogger()))
}

func TestSummaryScenario(t *testing.T) {
	engine := newTestEngine(8)
	ds := testutil.ScenarioDataset(t, "spa")

	got := engine.Summary(ds)

	assert.True(t, got.TotalRevenue.Equal(decimal.NewFromInt(600)), got.TotalRevenue.String())
	assert.True(t, got.TotalExpenses.Equal(decimal.NewFromInt(60)), got.TotalExpenses.String())
	assert.Equal(t, int64(9), got.TotalBookings)
	assert.Equal(t, int64(4), got.TotalClients)
}

func TestSummaryMatchesManualSum(t *testing.T) {
	ds := testutil.NewDatasetBuilder(t, "therapist").WithRows(
		testutil.Row{Date: "2024-01-01", Revenue: "0.10", Bookings: 1, Expenses: "0.20", Clients: 1},
		testutil.Row{Date: "2024-01-02", Revenue: "0.20", Bookings: 5, Expenses: "0.10", Clients: 3},
		testutil.Row{Date: "2024-01-03", Revenue: "1234567.89", Bookings: 0, Expenses: "-5.5", Clients: 0},
	).Build()

	wantRevenue, wantExpenses := decimal.Zero, decimal.Zero
	var wantBookings, wantClients int64
	for _, p := range ds.Points() {
		wantRevenue = wantRevenue.Add(p.Revenue)
		wantExpenses = wantExpenses.Add(p.Expenses)
		wantBookings += p.Bookings
		wantClients += p.Clients
	}

	got := newTestEngine(8).Summary(ds)
	assert.Equal(t, "1234568.19", got.TotalRevenue.String())
	assert.True(t, got.TotalRevenue.Equal(wantRevenue))
	assert.True(t, got.TotalExpenses.Equal(wantExpenses))
	assert.Equal(t, wantBookings, got.TotalBookings)
	assert.Equal(t, wantClients, got.TotalClients)
}

func TestSummaryCache(t *testing.T) {
	t.Run("repeat call is a hit with identical result", func(t *testing.T) {
		obs := &countingObserver{}
		engine := NewEngine(8, WithLogger(common.DiscardLogger()), WithObserver(obs))
		ds := testutil.ScenarioDataset(t, "spa")

		first := engine.Summary(ds)
		second := engine.Summary(ds)

		assert.Equal(t, first, second)
		assert.Equal(t, Stats{Hits: 1, Misses: 1}, engine.Stats())
		assert.Equal(t, 1, obs.hits)
		assert.Equal(t, 1, obs.misses)
	})

	t.Run("identical content under another handle and name is a hit", func(t *testing.T) {
		engine := newTestEngine(8)
		engine.Summary(testutil.ScenarioDataset(t, "spa"))
		engine.Summary(testutil.ScenarioDataset(t, "copy-of-spa"))

		assert.Equal(t, Stats{Hits: 1, Misses: 1}, engine.Stats())
		assert.Equal(t, 1, engine.Len())
	})

	t.Run("changed content under the same name is recomputed", func(t *testing.T) {
		engine := newTestEngine(8)
		before := engine.Summary(testutil.ScenarioDataset(t, "spa"))

		rows := testutil.ScenarioRows()
		rows[0].Revenue = "150"
		edited := testutil.NewDatasetBuilder(t, "spa").WithRows(rows...).Build()
		after := engine.Summary(edited)

		assert.Equal(t, Stats{Misses: 2}, engine.Stats())
		assert.Equal(t, "600", before.TotalRevenue.String())
		assert.Equal(t, "650", after.TotalRevenue.String())
	})

	t.Run("eviction only costs a recompute", func(t *testing.T) {
		engine := newTestEngine(1)
		a := testutil.ScenarioDataset(t, "a")
		b := testutil.NewDatasetBuilder(t, "b").WithRow(testutil.Row{Date: "2024-01-01", Revenue: "1", Expenses: "1", Bookings: 1, Clients: 1}).Build()

		first := engine.Summary(a)
		engine.Summary(b)
		again := engine.Summary(a)

		assert.Equal(t, first, again)
		assert.Equal(t, Stats{Misses: 3}, engine.Stats())
	})

	t.Run("purge", func(t *testing.T) {
		engine := newTestEngine(8)
		engine.Summary(testutil.ScenarioDataset(t, "spa"))
		engine.Purge()
		assert.Equal(t, 0, engine.Len())
	})
}

func TestSummaryEmpty(t *testing.T) {
	engine := newTestEngine(8)

	got := engine.Summary(model.NewDataset("empty", nil))
	assert.True(t, got.TotalRevenue.IsZero())
	assert.Equal(t, int64(0), got.TotalBookings)

	got = engine.Summary(nil)
	assert.True(t, got.TotalExpenses.IsZero())

	assert.Equal(t, 0, engine.Len())
	assert.Equal(t, Stats{}, engine.Stats())
}

func TestSeries(t *testing.T) {
	ds := testutil.ScenarioDataset(t, "spa")

	revenue, err := Series(ds, MetricRevenue)
	require.NoError(t, err)
	require.Len(t, revenue, 3)
	assert.Equal(t, "2024-01-01", revenue[0].Date.Format(model.DateLayout))
	assert.Equal(t, "300", revenue[2].Value.String())

	bookings, err := Series(ds, MetricBookings)
	require.NoError(t, err)
	assert.Equal(t, "3", bookings[1].Value.String())

	_, err = Series(ds, Metric("profit"))
	assert.Error(t, err)
}
