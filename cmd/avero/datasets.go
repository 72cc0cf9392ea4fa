package main

import (
	"fmt"
	"log/slog"

	"github.com/avero-hq/avero/internal/cli"
	"github.com/spf13/cobra"
)

func datasetsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "Inspect the available datasets",
	}

	cmd.AddCommand(datasetsListCmd(opts))
	cmd.AddCommand(datasetsCheckCmd(opts))

	return cmd
}

func datasetsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List dataset names",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := opts.initBackend(ctx, slog.Default())
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			names, err := opts.datasetNames(ctx, b)
			if err != nil {
				return err
			}
			for _, name := range names {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func datasetsCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [names...]",
		Short: "Validate datasets",
		Long: `Load every dataset (or only the named ones) and report parse and
validation failures. Exits non-zero when any dataset is invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.initBackend(cmd.Context(), slog.Default())
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Stopping dataset check...")
			ctx, stop := handler.HandleInterrupts(cmd.Context())
			defer stop()

			names := args
			if len(names) == 0 {
				if names, err = opts.datasetNames(ctx, b); err != nil {
					return err
				}
			}

			results, err := cli.CheckDatasets(ctx, b.loader, names, cmd.ErrOrStderr())
			if _, werr := fmt.Fprint(cmd.OutOrStdout(), cli.RenderCheckResults(results)); werr != nil {
				return werr
			}
			if err != nil {
				if handler.WasInterrupted() {
					return fmt.Errorf("dataset check interrupted")
				}
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d datasets failed validation", failed, len(results))
			}
			return nil
		},
	}
}
