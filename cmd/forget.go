// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"srodbpatch/cli/internal/config"
	"srodbpatch/cli/internal/keychain"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var forgetYes bool

// forgetCmd removes the stored settings and the keychain password.
var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Remove saved connection settings and password",
	Long: `The forget command deletes the settings file and the password stored in the OS
keychain. Backup tables in the database are not touched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := settingsPath()
		if err != nil {
			return err
		}
		if !forgetYes {
			ok, err := confirm("This will delete "+path+" and the stored database password.", true)
			if err != nil {
				return err
			}
			if !ok {
				pterm.Info.Println("Cancelled.")
				return nil
			}
		}

		if km, err := keychain.GetManager(); err == nil {
			if err := km.ClearDB(); err != nil {
				logger.Warn("clear keychain password", "error", err)
			}
		}
		if err := config.Remove(path); err != nil {
			return fmt.Errorf("remove settings: %w", err)
		}
		logger.Info("settings removed", "path", path)

		pterm.Success.Println("Saved connection settings have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(forgetCmd)
	forgetCmd.Flags().BoolVarP(&forgetYes, "yes", "y", false, "Skip the confirmation prompt")
}
