// Package xdg resolves the XDG base directories used by srodbpatch.
// Settings live under the config dir; the rotating log file lives under the
// state dir. Both are created private (0700) on first use.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "srodbpatch"

// ConfigDir returns $XDG_CONFIG_HOME/srodbpatch, falling back to
// ~/.config/srodbpatch.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns $XDG_STATE_HOME/srodbpatch, falling back to
// ~/.local/state/srodbpatch.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func resolve(env, homeRel string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeRel)
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
