// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for srodbpatch.
// It implements subcommands that back up, patch and restore tables of a
// Silkroad Online game database using the Cobra CLI framework, with pterm
// rendering for prompts, live progress and result boxes.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"srodbpatch/cli/internal/config"
	"srodbpatch/cli/internal/logging"
	"srodbpatch/cli/internal/xdg"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
	verbose     bool
	cfgFile     string
	envFile     string
	logLevel    string

	// logger is set up before every command runs.
	logger    = slog.New(slog.NewTextHandler(io.Discard, nil))
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "srodbpatch",
	Short: "Back up, patch and restore a Silkroad Online game database",
	Long: `srodbpatch applies predefined SQL patches to a Silkroad Online (SRO_VT) game
database. Every patch names the tables it touches; those tables are backed up
to <table>_Backup before the patch runs and can be restored at any time.

Run 'srodbpatch connect' once to store the connection settings, then
'srodbpatch patches' to see what can be applied.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		opts := logging.Options{Level: logLevel, Verbose: verbose}
		if dir, err := xdg.StateDir(); err == nil {
			opts.Dir = dir
		}
		logger, logCloser = logging.New(opts)
		slog.SetDefault(logger)
		logger.Debug("starting", "command", cmd.CommandPath(), "version", Version)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion(cmd.OutOrStdout())
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application. Interrupts cancel the command context so
// an operation in flight is rolled back by the driver.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, logging.PresentError("Error", err))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to the settings file (default: $XDG_CONFIG_HOME/srodbpatch/"+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file with SRODBPATCH_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every step to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level for the log file (debug, info, warn, error)")
}
