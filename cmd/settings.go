// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"database/sql"
	"os"

	"srodbpatch/cli/internal/config"
	"srodbpatch/cli/internal/dsn"
	"srodbpatch/cli/internal/keychain"
	"srodbpatch/cli/internal/logging"
	"srodbpatch/cli/internal/sqlexec"
)

// settingsPath returns the --config path or the XDG default.
func settingsPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultPath()
}

// storedSettings returns the file settings without environment overrides.
func storedSettings() (config.Settings, string, error) {
	path, err := settingsPath()
	if err != nil {
		return config.Settings{}, "", err
	}
	return config.Load(path), path, nil
}

// effectiveSettings layers defaults, the settings file, SRODBPATCH_*
// variables and the keychain password, then validates the result.
func effectiveSettings() (config.Settings, error) {
	s, path, err := storedSettings()
	if err != nil {
		return s, err
	}
	s, err = config.ApplyEnv(s, os.LookupEnv)
	if err != nil {
		return s, err
	}

	var src config.PasswordSource
	if s.PasswordInKeychain {
		if km, err := keychain.GetManager(); err == nil {
			src = km
		} else {
			logger.Warn("keychain unavailable", "error", err)
		}
	}
	s, err = config.ResolvePassword(s, src)
	if err != nil {
		return s, err
	}

	logger.Debug("settings resolved", "path", path, "driver", s.Driver, "server", s.Server, "database", s.Database)
	return s, s.Validate()
}

// openExecutor connects with s and returns an executor over the new handle.
// The caller closes the handle.
func openExecutor(ctx context.Context, s config.Settings) (*sqlexec.Executor, *sql.DB, error) {
	driver, conn, err := dsn.FromSettings(s)
	if err != nil {
		return nil, nil, err
	}
	dialect, err := sqlexec.DialectFor(driver)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("connecting", "driver", driver, "dsn", logging.Mask(conn))
	db, err := sqlexec.Open(ctx, driver, conn)
	if err != nil {
		return nil, nil, err
	}
	return sqlexec.New(db, dialect, sqlexec.WithLogger(logger)), db, nil
}
