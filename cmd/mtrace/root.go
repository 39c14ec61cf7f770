package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mtracecli/internal/config"
	apperrors "mtracecli/internal/errors"
	"mtracecli/internal/infrastructure"
	"mtracecli/pkg/contracts"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
}

// env is what PersistentPreRunE prepares for the subcommands.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	var (
		flags globalFlags
		e     env
	)

	root := &cobra.Command{
		Use:   "mtrace",
		Short: "mtrace - message trace telemetry analyzer",
		Long: `mtrace reads message trace exports (CSV or xlsx), resolves their columns
to canonical fields, decodes the policy, classification and sensitivity label
annotations each row carries, and aggregates traffic and compliance statistics.

Results are written as JSON, CSV or xlsx, or served over HTTP.`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configFile)
			if err != nil {
				return apperrors.NewConfigError("load configuration", err)
			}
			if flags.logLevel != "" {
				cfg.Logging.Level = flags.logLevel
			}
			if flags.logFormat != "" {
				cfg.Logging.Format = flags.logFormat
			}

			// Logs go to stderr so stdout carries only command output.
			logger, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return apperrors.NewConfigError("initialize logger", err)
			}
			slog.SetDefault(logger)

			e.cfg = cfg
			e.logger = logger
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return infrastructure.CloseLogFile()
		},
	}

	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (default: mtrace.yaml if present)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "override log format (json, text)")

	root.AddCommand(
		newAnalyzeCmd(&e),
		newDecodeCmd(&e),
		newServeCmd(&e),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitCode(err)
	}
	return 0
}

// exitCode maps an error to the process exit code. Input that cannot be
// read at all is exit 1 like any other failure; configuration problems are
// exit 2.
func exitCode(err error) int {
	if apperrors.IsType(err, apperrors.ErrTypeConfig) {
		return 2
	}
	return 1
}
