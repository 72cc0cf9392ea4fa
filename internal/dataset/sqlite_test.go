package dataset

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/avero-hq/avero/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSQLite(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, CreateSchema(ctx, db))

	rows := [][]any{
		{"spa", "2024-01-02", "200", 3, "20", 1},
		{"spa", "2024-01-01", 100.5, 2, 10, 1},
		{"roofing", "2024-01-01", "5000", 1, "4000", 1},
		{"broken", "2024-01-01", "abc", 1, "1", 1},
	}
	for _, r := range rows {
		_, err := db.ExecContext(ctx,
			`INSERT INTO datapoints (dataset, date, revenue, bookings, expenses, clients) VALUES (?, ?, ?, ?, ?, ?)`,
			r...)
		require.NoError(t, err)
	}
}

func TestSQLiteSource(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	seedSQLite(t, db)

	src := NewSQLiteSource(db)
	loader := NewLoader(src, WithLogger(common.DiscardLogger()))
	ctx := context.Background()

	t.Run("loads and orders rows", func(t *testing.T) {
		ds, err := loader.Load(ctx, "spa")
		require.NoError(t, err)
		require.Equal(t, 2, ds.Len())
		assert.Equal(t, "100.5", ds.At(0).Revenue.String())
		assert.Equal(t, int64(3), ds.At(1).Bookings)
	})

	t.Run("unknown dataset", func(t *testing.T) {
		_, err := loader.Load(ctx, "dental")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid row", func(t *testing.T) {
		_, err := loader.Load(ctx, "broken")
		assert.ErrorIs(t, err, ErrUnparsableNumber)
	})

	t.Run("names", func(t *testing.T) {
		names, err := loader.Names(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"broken", "roofing", "spa"}, names)
	})
}

func TestOpenSQLiteSourceReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datasets.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	seedSQLite(t, db)
	require.NoError(t, db.Close())

	src, err := OpenSQLiteSource(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	ds, err := NewLoader(src, WithLogger(common.DiscardLogger())).Load(context.Background(), "roofing")
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	_, err = src.db.Exec(`DELETE FROM datapoints`)
	assert.Error(t, err, "source must not be writable")
}
