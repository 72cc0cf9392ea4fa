package dataset

import (
	"context"
	"io"
)

// RowReader yields table rows one at a time, the header first.
// It returns io.EOF after the last row.
type RowReader interface {
	Read() ([]string, error)
}

// Source resolves a dataset name to its backing table.
// Implementations return an error wrapping ErrNotFound for unknown names.
type Source interface {
	Open(ctx context.Context, name string) (RowReader, io.Closer, error)
}

// Lister is implemented by sources that can enumerate their datasets.
type Lister interface {
	Names(ctx context.Context) ([]string, error)
}

// sliceReader serves rows that were fetched in one piece.
type sliceReader struct {
	rows [][]string
	pos  int
}

func newSliceReader(rows [][]string) *sliceReader {
	return &sliceReader{rows: rows}
}

func (r *sliceReader) Read() ([]string, error) {
	if r.pos >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
