// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"os"
	"time"

	"srodbpatch/cli/internal/config"
	"srodbpatch/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var connectTimeout time.Duration

// testConnectionCmd opens a connection with the current settings and reports
// the server version.
var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Check that the database is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := effectiveSettings()
		if err != nil {
			return err
		}
		version, err := probe(cmd.Context(), s)
		if err != nil {
			pterm.Println(logging.FormatConnectionError(err.Error()))
			return errReported
		}
		showResultBox(true, "Connection Success", "", "Successfully connected to database!\n\nServer version:\n"+version)
		return nil
	},
}

// probe connects with s under connectTimeout and returns the server version.
func probe(ctx context.Context, s config.Settings) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	stop := startInlineSpinner(os.Stdout, "verifying connection", 100*time.Millisecond)
	defer stop()

	exec, db, err := openExecutor(ctx, s)
	if err != nil {
		return "", err
	}
	defer db.Close()
	return exec.Probe(ctx)
}

func init() {
	rootCmd.AddCommand(testConnectionCmd)
	rootCmd.PersistentFlags().DurationVar(&connectTimeout, "timeout", 15*time.Second, "Connection check timeout")
}
