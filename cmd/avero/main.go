package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/avero-hq/avero/internal/common"
	"github.com/avero-hq/avero/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// rootOptions carries state shared by every subcommand once the
// configuration has been read.
type rootOptions struct {
	v         *viper.Viper
	cfg       *config.Config
	logCloser io.Closer
	cfgFile   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "avero",
		Short: "Small-business analytics assistant",
		Long: `avero loads business datasets, summarizes them and answers questions
about them in plain language. It also keeps a light schedule of appointments
and tasks for the current session.`,
		PersistentPreRunE:  opts.initConfig,
		PersistentPostRunE: opts.cleanup,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: $HOME/.config/avero/config.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = opts.v.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = opts.v.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))

	cmd.AddCommand(summaryCmd(opts))
	cmd.AddCommand(askCmd(opts))
	cmd.AddCommand(datasetsCmd(opts))
	cmd.AddCommand(dashboardCmd(opts))
	cmd.AddCommand(serveCmd(opts))
	cmd.AddCommand(versionCmd())

	return cmd
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *rootOptions) initConfig(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
	} else {
		dir, err := config.DefaultDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		o.v.AddConfigPath(dir)
		o.v.AddConfigPath(".")
		o.v.SetConfigName("config")
		o.v.SetConfigType("yaml")
	}

	o.v.SetEnvPrefix("AVERO")
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	o.v.AutomaticEnv()

	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load(o.v)
	if err != nil {
		return common.NewUserError("invalid configuration", err)
	}
	o.cfg = cfg

	// The dashboard owns the terminal, so its logger is built separately.
	if cmd.Name() == "dashboard" {
		return nil
	}

	closer, err := common.SetupLogger(common.LogOptions{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	o.logCloser = closer
	return nil
}

func (o *rootOptions) cleanup(_ *cobra.Command, _ []string) error {
	if o.logCloser == nil {
		return nil
	}
	err := o.logCloser.Close()
	o.logCloser = nil
	return err
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "avero %s\n", version)
		},
	}
}
