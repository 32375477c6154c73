// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"strconv"

	"srodbpatch/cli/internal/config"
	"srodbpatch/cli/internal/dsn"
	"srodbpatch/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// dbinfoCmd shows the effective connection settings with the password masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show the current database connection",
	Long: `The dbinfo command displays the effective connection settings and connection
string, after SRODBPATCH_* overrides, with the password masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := effectiveSettings()
		if err != nil {
			pterm.Warning.Println(logging.PresentError("Settings are incomplete", err))
			pterm.Println()
		}
		path, _ := settingsPath()

		rows := [][]string{
			{"Setting", "Value", "Source"},
			{"driver", s.Driver, source(config.EnvDriver, path)},
		}
		if s.Driver == config.DriverSQLite {
			rows = append(rows, []string{"database", s.Database, source(config.EnvDatabase, path)})
		} else {
			rows = append(rows,
				[]string{"server", s.Server, source(config.EnvServer, path)},
				[]string{"port", strconv.Itoa(s.Port), source(config.EnvPort, path)},
				[]string{"database", s.Database, source(config.EnvDatabase, path)},
				[]string{"user", s.User, source(config.EnvUser, path)},
				[]string{"password", maskedPassword(s), passwordSource(s, path)},
			)
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return err
		}
		pterm.Println()

		if _, conn, err := dsn.FromSettings(s); err == nil {
			pterm.DefaultBox.
				WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
				WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).
				Println(logging.Mask(conn))
			pterm.Println()
		}
		pterm.Println("To update this connection, run: srodbpatch connect")
		return nil
	},
}

func source(env, path string) string {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		return env
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return "default"
}

func passwordSource(s config.Settings, path string) string {
	if s.PasswordInKeychain {
		return "OS keychain"
	}
	return source(config.EnvPassword, path)
}

func maskedPassword(s config.Settings) string {
	if s.Password == "" {
		return "(empty)"
	}
	return "***"
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}
