package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/avero-hq/avero/internal/aggregate"
	"github.com/avero-hq/avero/internal/cli"
	"github.com/spf13/cobra"
)

func summaryCmd(opts *rootOptions) *cobra.Command {
	var (
		name   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the key totals for a dataset",
		Long: `Load a dataset and print its total revenue, bookings, expenses, clients
and net income.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := opts.initBackend(ctx, slog.Default())
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			ds, err := b.loader.Load(ctx, name)
			if err != nil {
				return err
			}
			summary := aggregate.Compute(ds)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cli.NewSummaryJSON(ds, summary))
			}
			_, err = fmt.Fprintln(out, cli.RenderSummary(ds, summary))
			return err
		},
	}

	cmd.Flags().StringVarP(&name, "dataset", "d", "therapist", "Dataset to summarize")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")

	return cmd
}
