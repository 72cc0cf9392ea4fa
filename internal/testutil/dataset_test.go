package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScenarioDataset(t *testing.T) {
	ds := ScenarioDataset(t, "spa")
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, "spa", ds.Name())
	assert.Equal(t, int64(4), ds.At(2).Bookings)
}

func TestCSV(t *testing.T) {
	body := CSV(Row{Date: "2024-01-01", Revenue: "1.5", Bookings: 2, Expenses: "0.5", Clients: 1})
	assert.Equal(t, "date,revenue,bookings,expenses,clients\n2024-01-01,1.5,2,0.5,1\n", body)
}
