// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"fmt"
	"strings"

	apperrors "srodbpatch/cli/internal/errors"
)

// Restore replaces the rows of every table with the rows of its backup.
// All backups are checked before any table is modified.
func (e *Executor) Restore(ctx context.Context, tables []string, progress Progress) Result {
	if err := e.validateTables(tables); err != nil {
		return failed("Restore failed: ", err)
	}

	var counts []TableCount
	err := e.inTx(ctx, func(q querier) error {
		progress.emit("Checking for backups...")
		for _, table := range tables {
			ok, err := e.dialect.TableExists(ctx, q, BackupName(table))
			if err != nil {
				return apperrors.Wrap(apperrors.StatementExecution, "check backup of "+table, err)
			}
			if !ok {
				return apperrors.Newf(apperrors.BackupMissing, "No backup found for %s!", table)
			}
		}

		for _, table := range tables {
			backup := BackupName(table)
			progress.emit(fmt.Sprintf("Restoring %s from backup...", table))

			if _, err := e.exec(ctx, q, "DELETE FROM "+e.dialect.Quote(table)); err != nil {
				return apperrors.Wrap(apperrors.StatementExecution, "clear "+table, err)
			}
			stmts, err := e.dialect.RestoreFrom(ctx, q, table, backup)
			if err != nil {
				return apperrors.Wrap(apperrors.StatementExecution, "prepare restore of "+table, err)
			}
			for _, stmt := range stmts {
				if _, err := e.exec(ctx, q, stmt); err != nil {
					return apperrors.Wrap(apperrors.StatementExecution, "restore "+table, err)
				}
			}
			n, err := countRows(ctx, q, "SELECT COUNT(*) FROM "+e.dialect.Quote(table))
			if err != nil {
				return apperrors.Wrap(apperrors.StatementExecution, "count "+table, err)
			}
			counts = append(counts, TableCount{Table: table, Rows: n})
		}
		return nil
	})
	if err != nil {
		return failed("Restore failed: ", err)
	}

	lines := make([]string, len(counts))
	for i, c := range counts {
		lines[i] = fmt.Sprintf("%s: %d rows restored", c.Table, c.Rows)
	}
	e.logger.Info("restore finished", "tables", len(counts))
	return Result{
		Success: true,
		Message: "Restore completed successfully!\n\n" + strings.Join(lines, "\n"),
		Tables:  counts,
	}
}
