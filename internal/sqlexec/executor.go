// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlexec runs the backup, restore and patch-apply workflows against
// the game database.
//
// Each operation takes one dedicated connection from the pool, runs all of
// its steps inside a single transaction on it, and commits once at the end.
// A failure at any step rolls the whole operation back, so a half-made
// backup or a half-applied patch never persists. Every failure is returned
// as a Result with Success false; nothing panics out of an operation.
//
// Table names are interpolated into SQL text, so they are checked against an
// allow-list (the tables named by the patch catalog by default) and an
// identifier pattern, then quoted by the Dialect.
package sqlexec

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"srodbpatch/cli/internal/catalog"
	"srodbpatch/cli/internal/dsn"
	apperrors "srodbpatch/cli/internal/errors"
)

// BackupSuffix is appended to a table name to name its backup.
const BackupSuffix = "_Backup"

// BackupName returns the backup table name for table.
func BackupName(table string) string { return table + BackupSuffix }

// Progress receives informational messages while an operation runs.
type Progress func(msg string)

func (p Progress) emit(msg string) {
	if p != nil {
		p(msg)
	}
}

// TableCount is the row count recorded for one table.
type TableCount struct {
	Table string
	Rows  int64
}

// Result is the outcome of one operation.
type Result struct {
	Success bool
	Message string
	// Statements is the number of patch statements attempted.
	Statements int
	// RowsAffected sums driver-reported affected rows across statements.
	RowsAffected int64
	// Tables holds per-table row counts for backup and restore.
	Tables []TableCount
	// Err is the cause of a failed result.
	Err error
}

// Executor runs operations over a database handle.
type Executor struct {
	db      *sql.DB
	dialect Dialect
	allowed map[string]struct{}
	logger  *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithAllowedTables replaces the catalog-derived table allow-list.
func WithAllowedTables(tables ...string) Option {
	return func(e *Executor) {
		e.allowed = make(map[string]struct{}, len(tables))
		for _, t := range tables {
			e.allowed[t] = struct{}{}
		}
	}
}

// WithLogger sets the logger used for step-level debug records.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Executor. Tables are limited to catalog.Tables unless
// WithAllowedTables is given.
func New(db *sql.DB, dialect Dialect, opts ...Option) *Executor {
	e := &Executor{
		db:      db,
		dialect: dialect,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	WithAllowedTables(catalog.Tables()...)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dialect returns the dialect the executor renders SQL with.
func (e *Executor) Dialect() Dialect { return e.dialect }

// Open opens and pings a database handle for driver.
func Open(ctx context.Context, driver dsn.DBType, conn string) (*sql.DB, error) {
	db, err := sql.Open(string(driver), conn)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Connection, "open database", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.Connection, "connect to database", err)
	}
	return db, nil
}

// inTx runs fn inside one transaction on a dedicated connection.
func (e *Executor) inTx(ctx context.Context, fn func(q querier) error) error {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.Connection, "acquire connection", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.Connection, "begin transaction", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			e.logger.Warn("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.StatementExecution, "commit", err)
	}
	return nil
}

func (e *Executor) exec(ctx context.Context, q querier, stmt string) (sql.Result, error) {
	e.logger.Debug("exec", "dialect", e.dialect.Name(), "sql", stmt)
	return q.ExecContext(ctx, stmt)
}
