package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/avero-hq/avero/internal/model"
	"github.com/schollz/progressbar/v3"
)

// DatasetLoader loads a dataset by name.
type DatasetLoader interface {
	Load(ctx context.Context, name string) (*model.Dataset, error)
}

// CheckResult is the outcome of validating one dataset.
type CheckResult struct {
	Err  error
	Name string
	Rows int
}

// CheckDatasets loads every named dataset, showing progress on w. It stops
// early only when ctx is cancelled; load failures are collected.
func CheckDatasets(ctx context.Context, loader DatasetLoader, names []string, w io.Writer) ([]CheckResult, error) {
	bar := progressbar.NewOptions(len(names),
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan][bold]Checking datasets...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)

	results := make([]CheckResult, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		ds, err := loader.Load(ctx, name)
		results = append(results, CheckResult{Name: name, Rows: ds.Len(), Err: err})
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
	return results, nil
}

// RenderCheckResults formats one line per result.
func RenderCheckResults(results []CheckResult) string {
	var out string
	for _, r := range results {
		if r.Err != nil {
			out += FormatError(r.Err.Error()) + "\n"
			continue
		}
		out += FormatSuccess(fmt.Sprintf("%s: %d rows", r.Name, r.Rows)) + "\n"
	}
	return out
}
