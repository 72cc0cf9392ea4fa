package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const datapointsSchema = `CREATE TABLE IF NOT EXISTS datapoints (
	dataset TEXT NOT NULL,
	date TEXT,
	revenue TEXT,
	bookings TEXT,
	expenses TEXT,
	clients TEXT
)`

// SQLiteSource reads datasets from the datapoints table of a SQLite database.
// Rows keep their insertion order.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLiteSource opens the database at path read-only.
func OpenSQLiteSource(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// NewSQLiteSource wraps an already open database.
func NewSQLiteSource(db *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: db}
}

// CreateSchema creates the datapoints table if it does not exist.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, datapointsSchema); err != nil {
		return fmt.Errorf("failed to create datapoints table: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Open implements Source.
func (s *SQLiteSource) Open(ctx context.Context, name string) (RowReader, io.Closer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, revenue, bookings, expenses, clients
		 FROM datapoints WHERE dataset = ? ORDER BY rowid`, name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query dataset %q: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	table := [][]string{Columns}
	for rows.Next() {
		var cells [5]sql.NullString
		if err := rows.Scan(&cells[0], &cells[1], &cells[2], &cells[3], &cells[4]); err != nil {
			return nil, nil, fmt.Errorf("failed to scan dataset %q: %w", name, err)
		}
		row := make([]string, len(cells))
		for i, c := range cells {
			row[i] = c.String
		}
		table = append(table, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read dataset %q: %w", name, err)
	}

	if len(table) == 1 {
		return nil, nil, fmt.Errorf("%w: no rows for %q", ErrNotFound, name)
	}
	return newSliceReader(table), nopCloser{}, nil
}

// Names implements Lister.
func (s *SQLiteSource) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT dataset FROM datapoints ORDER BY dataset`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan dataset name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
