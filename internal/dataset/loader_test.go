package dataset

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/avero-hq/avero/internal/common"
	"github.com/avero-hq/avero/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loaderFor(files map[string]string) *Loader {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name+".csv"] = &fstest.MapFile{Data: []byte(body)}
	}
	return NewLoader(NewFSSource(fsys), WithLogger(common.DiscardLogger()))
}

type recordingObserver struct {
	names []string
	errs  []error
}

func (r *recordingObserver) ObserveLoad(name string, err error) {
	r.names = append(r.names, name)
	r.errs = append(r.errs, err)
}

func TestLoad(t *testing.T) {
	loader := loaderFor(map[string]string{
		"spa": "date,revenue,bookings,expenses,clients\n" +
			"2024-01-01,100,2,10,1\n" +
			"2024-01-02,200.50,3,20.25,1\n" +
			"2024-01-03,300,4,30,2\n",
	})

	ds, err := loader.Load(context.Background(), "spa")
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, "spa", ds.Name())

	first := ds.At(0)
	assert.Equal(t, "2024-01-01", first.Date.Format(model.DateLayout))
	assert.True(t, first.Revenue.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int64(2), first.Bookings)

	second := ds.At(1)
	assert.Equal(t, "200.5", second.Revenue.String())
	assert.Equal(t, "20.25", second.Expenses.String())
}

func TestLoadDeterministic(t *testing.T) {
	body := "date,revenue,bookings,expenses,clients\n2024-01-02,1.10,1,1,1\n2024-01-01,2,2,2,2\n"
	loader := loaderFor(map[string]string{"a": body})

	first, err := loader.Load(context.Background(), "a")
	require.NoError(t, err)
	second, err := loader.Load(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
	assert.Equal(t, first.Points(), second.Points())
}

func TestLoadOrdersByDate(t *testing.T) {
	loader := loaderFor(map[string]string{
		"roofing": "date,revenue,bookings,expenses,clients\n" +
			"2024-03-01,3,3,3,3\n" +
			"2024-01-01,1,1,1,1\n" +
			"2024-02-01,2,2,2,2\n",
	})

	ds, err := loader.Load(context.Background(), "roofing")
	require.NoError(t, err)
	for i := 1; i < ds.Len(); i++ {
		assert.True(t, ds.At(i-1).Date.Before(ds.At(i).Date))
	}
	assert.Equal(t, int64(1), ds.At(0).Bookings)
}

func TestLoadFlexibleHeaderAndDates(t *testing.T) {
	loader := loaderFor(map[string]string{
		"therapist": "\ufeff Date ,Revenue,Bookings,Expenses,Clients,notes\n" +
			"2024/01/05,10,1,1,1,walk-in\n" +
			"01/06/2024,10,1,1,1,\n" +
			"2024-01-07 13:45:00,10,1,1,1,\n" +
			"2024-01-08T09:00:00Z,10,1,1,1,\n",
	})

	ds, err := loader.Load(context.Background(), "therapist")
	require.NoError(t, err)
	require.Equal(t, 4, ds.Len())
	assert.Equal(t, "2024-01-05", ds.At(0).Date.Format(model.DateLayout))
	assert.Equal(t, "2024-01-06", ds.At(1).Date.Format(model.DateLayout))
	assert.Equal(t, "2024-01-07", ds.At(2).Date.Format(model.DateLayout))
	assert.Equal(t, 0, ds.At(2).Date.Hour())
	assert.Equal(t, "2024-01-08", ds.At(3).Date.Format(model.DateLayout))
}

func TestLoadErrors(t *testing.T) {
	header := "date,revenue,bookings,expenses,clients\n"

	tests := []struct {
		name     string
		body     string
		wantKind error
		wantRow  int
		wantCol  string
	}{
		{
			name:     "missing column in header",
			body:     "date,revenue,bookings,expenses\n2024-01-01,1,1,1\n",
			wantKind: ErrMissingColumn,
			wantCol:  ColumnClients,
		},
		{
			name:     "short row",
			body:     header + "2024-01-01,1,1,1,1\n2024-01-02,1,1\n",
			wantKind: ErrMissingColumn,
			wantRow:  2,
			wantCol:  ColumnExpenses,
		},
		{
			name:     "bad date",
			body:     header + "2024-01-01,1,1,1,1\nyesterday,1,1,1,1\n",
			wantKind: ErrUnparsableDate,
			wantRow:  2,
			wantCol:  ColumnDate,
		},
		{
			name:     "empty date",
			body:     header + ",1,1,1,1\n",
			wantKind: ErrUnparsableDate,
			wantRow:  1,
			wantCol:  ColumnDate,
		},
		{
			name:     "bad revenue",
			body:     header + "2024-01-01,$100,1,1,1\n",
			wantKind: ErrUnparsableNumber,
			wantRow:  1,
			wantCol:  ColumnRevenue,
		},
		{
			name:     "fractional bookings",
			body:     header + "2024-01-01,100,1.5,1,1\n",
			wantKind: ErrUnparsableNumber,
			wantRow:  1,
			wantCol:  ColumnBookings,
		},
		{
			name:     "empty clients",
			body:     header + "2024-01-01,100,1,1,\n",
			wantKind: ErrUnparsableNumber,
			wantRow:  1,
			wantCol:  ColumnClients,
		},
		{
			name:     "header only",
			body:     header,
			wantKind: ErrEmptyDataset,
		},
		{
			name:     "empty file",
			body:     "",
			wantKind: ErrEmptyDataset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := loaderFor(map[string]string{"broken": tt.body})

			ds, err := loader.Load(context.Background(), "broken")
			require.Error(t, err)
			assert.Nil(t, ds)
			assert.ErrorIs(t, err, tt.wantKind)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, "broken", loadErr.Dataset)
			assert.Equal(t, tt.wantRow, loadErr.Row)
			assert.Equal(t, tt.wantCol, loadErr.Column)
		})
	}
}

func TestLoadNotFound(t *testing.T) {
	loader := loaderFor(map[string]string{"spa": "date,revenue,bookings,expenses,clients\n2024-01-01,1,1,1,1\n"})

	for _, name := range []string{"dental", "", "../spa", "a/b"} {
		t.Run(name, func(t *testing.T) {
			_, err := loader.Load(context.Background(), name)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NotErrorIs(t, err, ErrMissingColumn)
		})
	}
}

func TestLoadObserver(t *testing.T) {
	obs := &recordingObserver{}
	fsys := fstest.MapFS{"spa.csv": &fstest.MapFile{Data: []byte("date,revenue,bookings,expenses,clients\n2024-01-01,1,1,1,1\n")}}
	loader := NewLoader(NewFSSource(fsys), WithLogger(common.DiscardLogger()), WithObserver(obs))

	_, _ = loader.Load(context.Background(), "spa")
	_, _ = loader.Load(context.Background(), "nope")

	assert.Equal(t, []string{"spa", UnknownDataset}, obs.names)
	assert.NoError(t, obs.errs[0])
	assert.ErrorIs(t, obs.errs[1], ErrNotFound)
}

func TestLoadErrorMessage(t *testing.T) {
	err := &LoadError{Kind: ErrUnparsableNumber, Dataset: "spa", Row: 4, Column: "revenue", Value: "abc"}
	assert.Equal(t, `load dataset "spa": unparsable number at row 4 column "revenue" value "abc"`, err.Error())
}

func TestEmbeddedSamples(t *testing.T) {
	loader := NewLoader(NewEmbeddedSource(), WithLogger(common.DiscardLogger()))

	names, err := loader.Names(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"roofing", "spa", "therapist"}, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			ds, err := loader.Load(context.Background(), name)
			require.NoError(t, err)
			assert.Equal(t, 12, ds.Len())
		})
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFile(dir, "spa.csv", "date,revenue,bookings,expenses,clients\n2024-01-01,1,1,1,1\n"))

	loader := NewLoader(NewDirSource(dir), WithLogger(common.DiscardLogger()))
	ds, err := loader.Load(context.Background(), "spa")
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	_, err = loader.Load(context.Background(), "therapist")
	assert.ErrorIs(t, err, ErrNotFound)
}
