// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"fmt"
	"strings"

	apperrors "srodbpatch/cli/internal/errors"
)

// Backup recreates <table>_Backup for every table as a full copy of its
// current rows. An older backup is dropped first; there is only ever one.
func (e *Executor) Backup(ctx context.Context, tables []string, progress Progress) Result {
	if err := e.validateTables(tables); err != nil {
		return failed("Backup failed: ", err)
	}

	var counts []TableCount
	err := e.inTx(ctx, func(q querier) error {
		var err error
		counts, err = e.backupTables(ctx, q, tables, progress)
		return err
	})
	if err != nil {
		return failed("Backup failed: ", err)
	}

	lines := make([]string, len(counts))
	for i, c := range counts {
		lines[i] = fmt.Sprintf("%s: %d rows backed up", c.Table, c.Rows)
	}
	e.logger.Info("backup finished", "tables", len(counts))
	return Result{
		Success: true,
		Message: "Backup created successfully!\n\n" + strings.Join(lines, "\n"),
		Tables:  counts,
	}
}

// backupTables performs the drop-and-copy per table. A nil progress keeps
// it silent, which is how Apply runs it.
func (e *Executor) backupTables(ctx context.Context, q querier, tables []string, progress Progress) ([]TableCount, error) {
	counts := make([]TableCount, 0, len(tables))
	for _, table := range tables {
		backup := BackupName(table)
		progress.emit(fmt.Sprintf("Creating backup of %s...", table))

		if _, err := e.exec(ctx, q, e.dialect.DropIfExists(backup)); err != nil {
			return nil, apperrors.Wrap(apperrors.StatementExecution, "drop "+backup, err)
		}
		if _, err := e.exec(ctx, q, e.dialect.CopyInto(table, backup)); err != nil {
			return nil, apperrors.Wrap(apperrors.StatementExecution, "copy "+table+" into "+backup, err)
		}
		n, err := countRows(ctx, q, "SELECT COUNT(*) FROM "+e.dialect.Quote(backup))
		if err != nil {
			return nil, apperrors.Wrap(apperrors.StatementExecution, "count "+backup, err)
		}
		e.logger.Debug("table backed up", "table", table, "rows", n)
		counts = append(counts, TableCount{Table: table, Rows: n})
	}
	return counts, nil
}

func failed(prefix string, err error) Result {
	return Result{Message: prefix + err.Error(), Err: err}
}
