package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/avero-hq/avero/internal/cli"
	"github.com/avero-hq/avero/internal/session"
	"github.com/spf13/cobra"
)

func askCmd(opts *rootOptions) *cobra.Command {
	var (
		name      string
		speakPath string
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the assistant about a dataset",
		Long: `Ask a question about a dataset and get a short digest of its numbers.

With --speak the answer is also synthesized to an MP3 file. Speech problems
are reported as warnings and never fail the command.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return fmt.Errorf("a question is required")
			}

			b, err := opts.initBackend(ctx, slog.Default())
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			s := session.New(opts.sessionDeps(b, slog.Default()))
			defer s.Close()

			view, err := s.Render(ctx, session.Request{Dataset: name, Question: question})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, view.Answer); err != nil {
				return err
			}

			if speakPath == "" {
				return nil
			}
			result := <-s.Speak(ctx, view.Answer)
			if result.Warning != nil {
				_, err := fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(result.Warning.Error()))
				return err
			}
			if err := os.WriteFile(speakPath, result.Audio, 0600); err != nil {
				_, err := fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(fmt.Sprintf("could not save audio: %v", err)))
				return err
			}
			_, err = fmt.Fprintln(out, cli.FormatSuccess("Saved audio to "+speakPath))
			return err
		},
	}

	cmd.Flags().StringVarP(&name, "dataset", "d", "therapist", "Dataset to ask about")
	cmd.Flags().StringVar(&speakPath, "speak", "", "Also synthesize the answer to this MP3 file")

	return cmd
}
