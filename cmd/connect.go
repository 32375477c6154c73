// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"srodbpatch/cli/internal/config"
	"srodbpatch/cli/internal/keychain"
	"srodbpatch/cli/internal/logging"
	"srodbpatch/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	connectNoVerify bool
	connectKeychain bool
)

// connectCmd edits the stored connection settings interactively, verifies
// them against the server and saves them.
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Configure and verify the database connection",
	Long: `The connect command walks through the connection settings (server, port,
database, user, password), checks that the database answers, and saves them to
the settings file. Press Enter to keep the value shown in brackets.

With --keychain the password is stored in the OS keychain instead of the file.
Once stored there it stays there on later runs; 'srodbpatch forget' removes it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !terminal.IsInteractive() {
			path, _ := settingsPath()
			return fmt.Errorf("connect needs an interactive terminal; edit %s or set SRODBPATCH_* variables instead", path)
		}

		current, path, err := storedSettings()
		if err != nil {
			return err
		}
		if current.PasswordInKeychain {
			if km, err := keychain.GetManager(); err == nil {
				if pw, err := km.LoadPassword(); err == nil {
					current.Password = pw
				}
			}
		}

		s, err := editSettings(current)
		if err != nil {
			return err
		}
		if err := s.Validate(); err != nil {
			return err
		}

		if !connectNoVerify {
			version, err := probe(cmd.Context(), s)
			if err != nil {
				pterm.Println(logging.FormatConnectionError(err.Error()))
				save, cerr := pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show("Save these settings anyway?")
				if cerr != nil || !save {
					return errReported
				}
			} else {
				pterm.Success.Println("Connected: " + version)
			}
		}

		useKeychain := connectKeychain || current.PasswordInKeychain
		if useKeychain && s.Driver != config.DriverSQLite {
			km, err := keychain.GetManager()
			if err != nil {
				pterm.Warning.Println("Secure storage is not available on this system; the password stays in the settings file.")
				logger.Warn("keychain unavailable", "error", err)
			} else if err := km.SavePassword(s.Password); err != nil {
				return fmt.Errorf("save password to keychain: %w", err)
			} else {
				s.PasswordInKeychain = true
			}
		} else {
			s.PasswordInKeychain = false
		}

		if err := config.Save(path, s); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		logger.Info("settings saved", "path", path, "driver", s.Driver, "keychain", s.PasswordInKeychain)

		pterm.Success.Println("Settings saved to " + path)
		pterm.Println("You're ready to run 'srodbpatch patches'")
		return nil
	},
}

// editSettings prompts for every field, offering the current values.
func editSettings(cur config.Settings) (config.Settings, error) {
	s := cur

	driver, err := pterm.DefaultInteractiveSelect.
		WithOptions([]string{config.DriverSQLServer, config.DriverPostgres, config.DriverSQLite}).
		WithDefaultOption(cur.Driver).
		Show("Driver")
	if err != nil {
		return s, err
	}
	s.Driver = driver

	if s.Driver == config.DriverSQLite {
		s.Database, err = promptText("Database file", cur.Database)
		return s, err
	}

	if s.Server, err = promptText("Server", cur.Server); err != nil {
		return s, err
	}
	for {
		raw, err := promptText("Port", strconv.Itoa(cur.Port))
		if err != nil {
			return s, err
		}
		port, convErr := strconv.Atoi(raw)
		if convErr == nil && port > 0 && port <= 65535 {
			s.Port = port
			break
		}
		pterm.Warning.Printf("%q is not a valid port\n", raw)
	}
	if s.Database, err = promptText("Database", cur.Database); err != nil {
		return s, err
	}
	if s.User, err = promptText("User", cur.User); err != nil {
		return s, err
	}

	prompt := "Password (Enter keeps the current one): "
	pw, err := terminal.ReadPassword(os.Stdout, prompt)
	if err != nil {
		return s, err
	}
	terminal.ClearPreviousLines(os.Stdout, len(prompt))
	if pw != "" {
		s.Password = pw
	}
	return s, nil
}

func promptText(label, def string) (string, error) {
	v, err := pterm.DefaultInteractiveTextInput.WithDefaultValue(def).Show(label)
	if err != nil {
		return "", err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		if def == "" {
			return "", errors.New(strings.ToLower(label) + " is required")
		}
		return def, nil
	}
	return v, nil
}

func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().BoolVar(&connectNoVerify, "no-verify", false, "Save without checking the connection")
	connectCmd.Flags().BoolVar(&connectKeychain, "keychain", false, "Store the password in the OS keychain")
}
