// Package config loads and stores the database connection settings.
//
// Settings are kept as JSON in the XDG config dir (db_config.json). A missing
// or malformed file is not an error: the documented defaults are used instead,
// and keys absent from a well-formed file keep their default values.
// Environment variables (optionally seeded from a .env file) override the file,
// and the password may live in the OS keychain instead of the file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	apperrors "srodbpatch/cli/internal/errors"
	"srodbpatch/cli/internal/xdg"
)

// FileName is the settings file name inside the config dir.
const FileName = "db_config.json"

// Supported drivers.
const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite3"
)

// Environment variables that override file settings.
const (
	EnvServer   = "SRODBPATCH_SERVER"
	EnvPort     = "SRODBPATCH_PORT"
	EnvDatabase = "SRODBPATCH_DATABASE"
	EnvUser     = "SRODBPATCH_USER"
	EnvPassword = "SRODBPATCH_PASSWORD"
	EnvDriver   = "SRODBPATCH_DRIVER"
)

// Settings holds the connection parameters. For the sqlite3 driver Database
// is the file path and the other fields are ignored.
type Settings struct {
	Server   string `json:"server"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password"`
	Driver   string `json:"driver,omitempty"`
	// PasswordInKeychain means Password is kept in the OS keychain and the
	// file copy stays empty.
	PasswordInKeychain bool `json:"password_in_keychain,omitempty"`
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Settings {
	return Settings{
		Server:   "localhost",
		Port:     1433,
		Database: "SRO_VT_SHARD",
		User:     "sa",
		Password: "",
		Driver:   DriverSQLServer,
	}
}

// DefaultPath returns the settings file path in the XDG config dir.
func DefaultPath() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads settings from path. Any read or decode failure yields Defaults.
func Load(path string) Settings {
	s := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults()
	}
	if s.Driver == "" {
		s.Driver = DriverSQLServer
	}
	return s
}

// Save writes settings with 0600 permissions. When the password lives in the
// keychain it is blanked in the file copy.
func Save(path string, s Settings) error {
	if s.PasswordInKeychain {
		s.Password = ""
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// Remove deletes the settings file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// LoadDotEnv loads variables from a .env file into the process environment
// without overriding ones already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnv overrides fields from the environment using lookup (os.LookupEnv
// in production). Only non-empty values override.
func ApplyEnv(s Settings, lookup func(string) (string, bool)) (Settings, error) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	if v, ok := get(EnvServer); ok {
		s.Server = v
	}
	if v, ok := get(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return s, apperrors.Wrap(apperrors.Configuration, fmt.Sprintf("invalid %s %q", EnvPort, v), err)
		}
		s.Port = port
	}
	if v, ok := get(EnvDatabase); ok {
		s.Database = v
	}
	if v, ok := get(EnvUser); ok {
		s.User = v
	}
	// Passwords may legitimately start or end with spaces.
	if v, ok := lookup(EnvPassword); ok && v != "" {
		s.Password = v
		s.PasswordInKeychain = false
	}
	if v, ok := get(EnvDriver); ok {
		s.Driver = strings.ToLower(v)
	}
	return s, nil
}

// PasswordSource is anything that can hand back a stored password.
type PasswordSource interface {
	LoadPassword() (string, error)
}

// ResolvePassword fills Password from src when the settings say it lives in
// the keychain.
func ResolvePassword(s Settings, src PasswordSource) (Settings, error) {
	if !s.PasswordInKeychain {
		return s, nil
	}
	if src == nil {
		return s, apperrors.New(apperrors.Configuration, "password is stored in the keychain but no keychain is available")
	}
	pw, err := src.LoadPassword()
	if err != nil {
		return s, apperrors.Wrap(apperrors.Configuration, "load password from keychain", err)
	}
	s.Password = pw
	return s, nil
}

// Validate checks the fields the selected driver needs.
func (s Settings) Validate() error {
	switch s.Driver {
	case DriverSQLServer, DriverPostgres:
		if strings.TrimSpace(s.Server) == "" {
			return apperrors.New(apperrors.Configuration, "server is required")
		}
		if s.Port <= 0 || s.Port > 65535 {
			return apperrors.Newf(apperrors.Configuration, "port %d is out of range", s.Port)
		}
		if strings.TrimSpace(s.Database) == "" {
			return apperrors.New(apperrors.Configuration, "database is required")
		}
		if strings.TrimSpace(s.User) == "" {
			return apperrors.New(apperrors.Configuration, "user is required")
		}
	case DriverSQLite:
		if strings.TrimSpace(s.Database) == "" {
			return apperrors.New(apperrors.Configuration, "database file path is required")
		}
	default:
		return apperrors.Newf(apperrors.Configuration, "unsupported driver %q", s.Driver)
	}
	return nil
}
