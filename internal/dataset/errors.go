package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Load failure kinds. A *LoadError always matches exactly one of them with errors.Is.
var (
	ErrNotFound         = errors.New("dataset not found")
	ErrMissingColumn    = errors.New("missing column")
	ErrUnparsableDate   = errors.New("unparsable date")
	ErrUnparsableNumber = errors.New("unparsable number")
	ErrEmptyDataset     = errors.New("dataset has no rows")
)

// LoadError describes why a dataset could not be loaded.
type LoadError struct {
	Kind    error
	Err     error
	Dataset string
	Column  string
	Value   string
	Row     int // 1-based data row; 0 when the failure is not tied to a row
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "load dataset %q: %v", e.Dataset, e.Kind)
	if e.Row > 0 {
		fmt.Fprintf(&b, " at row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " value %q", e.Value)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
