package dataset

import (
	"context"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed samples/*.csv
var samples embed.FS

// FSSource reads <name>.csv files from a filesystem.
type FSSource struct {
	fsys fs.FS
}

// NewEmbeddedSource serves the sample datasets compiled into the binary.
func NewEmbeddedSource() *FSSource {
	sub, err := fs.Sub(samples, "samples")
	if err != nil {
		panic(fmt.Sprintf("embedded samples missing: %v", err))
	}
	return &FSSource{fsys: sub}
}

// NewDirSource serves CSV files from a directory on disk.
func NewDirSource(dir string) *FSSource {
	return &FSSource{fsys: os.DirFS(dir)}
}

// NewFSSource serves CSV files from an arbitrary filesystem.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// Open implements Source.
func (s *FSSource) Open(_ context.Context, name string) (RowReader, io.Closer, error) {
	file := name + ".csv"
	if name == "" || strings.ContainsAny(name, `/\`) || !fs.ValidPath(file) {
		return nil, nil, fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}

	f, err := s.fsys.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, file)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", file, err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r, f, nil
}

// Names implements Lister.
func (s *FSSource) Names(_ context.Context) ([]string, error) {
	matches, err := fs.Glob(s.fsys, "*.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".csv"))
	}
	sort.Strings(names)
	return names, nil
}
