// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"fmt"
	"strings"

	"srodbpatch/cli/internal/catalog"
	apperrors "srodbpatch/cli/internal/errors"
)

// statementPreview bounds how much of a failing statement a report quotes.
const statementPreview = 200

// Apply runs a patch. When any of its backup tables lacks a backup, all of
// them are backed up first so the patch can always be undone with Restore.
func (e *Executor) Apply(ctx context.Context, patch catalog.Patch, progress Progress) Result {
	total := len(patch.Statements)
	attempted := 0
	var failedStmt string
	var rows int64

	err := e.validateTables(patch.BackupTables)
	if err == nil {
		err = e.inTx(ctx, func(q querier) error {
			if err := e.ensureBackup(ctx, q, patch.BackupTables, progress); err != nil {
				return err
			}

			for i, stmt := range patch.Statements {
				attempted = i + 1
				progress.emit(fmt.Sprintf("Executing statement %d/%d...", i+1, total))
				res, err := e.exec(ctx, q, stmt)
				if err != nil {
					failedStmt = stmt
					return apperrors.Wrap(apperrors.StatementExecution, fmt.Sprintf("statement %d/%d failed", i+1, total), err)
				}
				// Drivers report -1 when a count is unavailable.
				if n, err := res.RowsAffected(); err == nil && n > 0 {
					rows += n
				}
			}

			progress.emit("Committing changes...")
			return nil
		})
	}
	if err != nil {
		return Result{
			Message:      "Error: " + err.Error() + "\n\nDetails:\n" + diagnostic(patch.Name, attempted, total, failedStmt, err),
			Statements:   attempted,
			RowsAffected: rows,
			Err:          err,
		}
	}

	e.logger.Info("patch applied", "patch", patch.Name, "statements", total, "rows", rows)
	return Result{
		Success: true,
		Message: fmt.Sprintf("Successfully applied patch '%s'!\n\nStatements executed: %d\nTotal rows affected: %d",
			patch.Name, total, rows),
		Statements:   total,
		RowsAffected: rows,
	}
}

func (e *Executor) ensureBackup(ctx context.Context, q querier, tables []string, progress Progress) error {
	progress.emit("Checking for backup...")
	missing := false
	for _, table := range tables {
		ok, err := e.dialect.TableExists(ctx, q, BackupName(table))
		if err != nil {
			return apperrors.Wrap(apperrors.StatementExecution, "check backup of "+table, err)
		}
		if !ok {
			missing = true
			break
		}
	}
	if !missing {
		return nil
	}

	progress.emit("Creating automatic backup...")
	if _, err := e.backupTables(ctx, q, tables, nil); err != nil {
		return err
	}
	progress.emit("Backup created successfully")
	return nil
}

func diagnostic(patch string, attempted, total int, stmt string, err error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patch: %s\n", patch)
	fmt.Fprintf(&b, "Statements attempted: %d/%d\n", attempted, total)
	if stmt != "" {
		if len(stmt) > statementPreview {
			stmt = stmt[:statementPreview] + "..."
		}
		fmt.Fprintf(&b, "Failed statement: %s\n", stmt)
	}
	b.WriteString(apperrors.Details(err))
	return b.String()
}
