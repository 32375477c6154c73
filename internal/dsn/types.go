// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn turns connection settings into a driver connection string.
// Every builder produces an encrypted connection that trusts the server
// certificate, which is how game shard databases are usually exposed.
package dsn

import "fmt"

// DBType names a database/sql driver registered by sqlexec.
type DBType string

const (
	DBTypeSQLServer DBType = "sqlserver"
	DBTypePostgres  DBType = "pgx"
	DBTypeSQLite    DBType = "sqlite3"
)

// Info is the driver-neutral view of a connection.
type Info struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Params   map[string]string
}

// Builder renders Info for one driver.
type Builder interface {
	// Driver is the database/sql driver name to open the string with.
	Driver() DBType
	// Build returns the connection string.
	Build(info Info) (string, error)
}

// BuildError reports settings a builder cannot render.
type BuildError struct {
	Driver DBType
	Reason string
	Hint   string
}

func (e *BuildError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid %s connection settings: %s\nHint: %s", e.Driver, e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid %s connection settings: %s", e.Driver, e.Reason)
}

// NewBuildError creates a new BuildError
func NewBuildError(driver DBType, reason, hint string) *BuildError {
	return &BuildError{Driver: driver, Reason: reason, Hint: hint}
}
