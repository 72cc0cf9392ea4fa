package dataset

import (
	"context"
	"fmt"
	"io"

	"github.com/avero-hq/avero/internal/config"
)

// NewSource builds the source selected by cfg. The closer releases any
// underlying handles and is never nil.
func NewSource(ctx context.Context, cfg config.DataConfig) (Source, io.Closer, error) {
	switch cfg.Source {
	case config.SourceEmbedded, "":
		return NewEmbeddedSource(), nopCloser{}, nil
	case config.SourceDir:
		return NewDirSource(cfg.Dir), nopCloser{}, nil
	case config.SourceSQLite:
		src, err := OpenSQLiteSource(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return src, src, nil
	case config.SourceSheets:
		src, err := NewSheetsSource(ctx, cfg.Sheets)
		if err != nil {
			return nil, nil, err
		}
		return src, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported dataset source: %s", cfg.Source)
	}
}
