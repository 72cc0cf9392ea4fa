package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/avero-hq/avero/internal/common"
	"github.com/avero-hq/avero/internal/session"
	"github.com/avero-hq/avero/internal/tui"
	"github.com/avero-hq/avero/internal/tui/themes"
	"github.com/spf13/cobra"
)

func dashboardCmd(opts *rootOptions) *cobra.Command {
	var (
		theme     string
		speakPath string
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard",
		Long: `Open a terminal dashboard with four tabs: KPIs and charts for a dataset,
appointment scheduling, a task board and the assistant.

Logs go to logging.file when it is set and are discarded otherwise.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			logger, closer, err := dashboardLogger(opts)
			if err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			defer func() { _ = closer.Close() }()

			b, err := opts.initBackend(ctx, logger)
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			names, err := opts.datasetNames(ctx, b)
			if err != nil {
				return err
			}

			s := session.New(opts.sessionDeps(b, logger))
			defer s.Close()

			return tui.Run(ctx,
				tui.WithController(s),
				tui.WithDatasets(names),
				tui.WithTheme(themes.GetTheme(theme)),
				tui.WithLogger(logger),
				tui.WithSpeechPath(speakPath),
			)
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "default", "Color theme (default, catppuccin-mocha)")
	cmd.Flags().StringVar(&speakPath, "speak", "", "Write synthesized answers to this MP3 file")

	return cmd
}

// dashboardLogger keeps log output off the terminal the dashboard draws on.
func dashboardLogger(opts *rootOptions) (*slog.Logger, io.Closer, error) {
	return common.NewLogger(io.Discard, common.LogOptions{
		Level:  opts.cfg.Logging.Level,
		Format: opts.cfg.Logging.Format,
		File:   opts.cfg.Logging.File,
	})
}
