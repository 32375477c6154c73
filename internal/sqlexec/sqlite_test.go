// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srodbpatch/cli/internal/catalog"
	apperrors "srodbpatch/cli/internal/errors"
)

type charRow struct {
	ID   int64
	Name string
	Gold int64
}

func newSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), "sqlite3", filepath.Join(t.TempDir(), "shard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE _Char (CharID INTEGER PRIMARY KEY, CharName16 TEXT NOT NULL, RemainGold INTEGER NOT NULL)`,
		`INSERT INTO _Char (CharID, CharName16, RemainGold) VALUES (1, 'Ayla', 100), (2, 'Borin', 200), (3, 'Cyra', 300)`,
		`CREATE TABLE _Inventory (CharID INTEGER, Slot INTEGER, ItemID INTEGER)`,
		`INSERT INTO _Inventory VALUES (1, 13, 5001)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func readChars(t *testing.T, db *sql.DB, table string) []charRow {
	t.Helper()
	rows, err := db.Query(`SELECT CharID, CharName16, RemainGold FROM "` + table + `" ORDER BY CharID`)
	require.NoError(t, err)
	defer rows.Close()

	var out []charRow
	for rows.Next() {
		var r charRow
		require.NoError(t, rows.Scan(&r.ID, &r.Name, &r.Gold))
		out = append(out, r)
	}
	require.NoError(t, rows.Err())
	return out
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n))
	return n > 0
}

type recorder struct{ events []string }

func (r *recorder) progress(msg string) { r.events = append(r.events, msg) }

var seededChars = []charRow{{1, "Ayla", 100}, {2, "Borin", 200}, {3, "Cyra", 300}}

func TestBackupCreatesBackupTable(t *testing.T) {
	db := newSQLiteDB(t)
	exec := New(db, SQLite{})
	var rec recorder

	require.False(t, tableExists(t, db, "_Char_Backup"))
	res := exec.Backup(context.Background(), []string{"_Char"}, rec.progress)

	require.True(t, res.Success, res.Message)
	assert.Equal(t, []TableCount{{Table: "_Char", Rows: 3}}, res.Tables)
	assert.Equal(t, "Backup created successfully!\n\n_Char: 3 rows backed up", res.Message)
	assert.Equal(t, []string{"Creating backup of _Char..."}, rec.events)
	assert.True(t, tableExists(t, db, "_Char_Backup"))
	assert.Equal(t, seededChars, readChars(t, db, "_Char_Backup"))
}

func TestBackupTwiceIsIdempotent(t *testing.T) {
	db := newSQLiteDB(t)
	exec := New(db, SQLite{})
	ctx := context.Background()

	require.True(t, exec.Backup(ctx, []string{"_Char"}, nil).Success)
	first := readChars(t, db, "_Char_Backup")
	res := exec.Backup(ctx, []string{"_Char"}, nil)
	require.True(t, res.Success, res.Message)

	assert.Equal(t, first, readChars(t, db, "_Char_Backup"))
	assert.Equal(t, int64(3), res.Tables[0].Rows)
}

func TestBackupReplacesOlderBackup(t *testing.T) {
	db := newSQLiteDB(t)
	exec := New(db, SQLite{})
	ctx := context.Background()

	require.True(t, exec.Backup(ctx, []string{"_Char"}, nil).Success)
	_, err := db.Exec(`DELETE FROM _Char WHERE CharID = 3`)
	require.NoError(t, err)
	require.True(t, exec.Backup(ctx, []string{"_Char"}, nil).Success)

	assert.Equal(t, seededChars[:2], readChars(t, db, "_Char_Backup"))
}

func TestBackupThenRestoreRoundTrip(t *testing.T) {
	db := newSQLiteDB(t)
	exec := New(db, SQLite{})
	ctx := context.Background()

	require.True(t, exec.Backup(ctx, []string{"_Char"}, nil).Success)
	_, err := db.Exec(`DELETE FROM _Char WHERE CharID > 1`)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE _Char SET RemainGold = 0`)
	require.NoError(t, err)

	var rec recorder
	res := exec.Restore(ctx, []string{"_Char"}, rec.progress)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Restore completed successfully!\n\n_Char: 3 rows restored", res.Message)
	assert.Equal(t, []string{"Checking for backups...", "Restoring _Char from backup..."}, rec.events)
	assert.Equal(t, seededChars, readChars(t, db, "_Char"))
}

func TestRestoreWithoutBackupMutatesNothing(t *testing.T) {
	db := newSQLiteDB(t)
	exec := New(db, SQLite{}, WithAllowedTables("_Char", "_Inventory"))
	ctx := context.Background()

	require.True(t, exec.Backup(ctx, []string{"_Char"}, nil).Success)
	_, err := db.Exec(`UPDATE _Char SET RemainGold = 1`)
	require.NoError(t, err)

	var rec recorder
	res := exec.Restore(ctx, []string{"_Char", "_Inventory"}, rec.progress)
	require.False(t, res.Success)
	assert.Equal(t, "Restore failed: No backup found for _Inventory!", res.Message)
	assert.True(t, apperrors.Is(res.Err, apperrors.BackupMissing))
	assert.Equal(t, []string{"Checking for backups..."}, rec.events)

	for _, r := range readChars(t, db, "_Char") {
		assert.Equal(t, int64(1), r.Gold)
	}
}

func goldPatch() catalog.Patch {
	return catalog.Patch{
		Name:         "Add gold to all characters",
		BackupTables: []string{"_Char"},
		Statements:   []string{"UPDATE _Char SET RemainGold = RemainGold + 99000000 WHERE CharID > 0"},
	}
}

func TestApplyAddsGold(t *testing.T) {
	db := newSQLiteDB(t)
	exec := New(db, SQLite{})
	var rec recorder

	res := exec.Apply(context.Background(), goldPatch(), rec.progress)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 1, res.Statements)
	assert.Equal(t, int64(3), res.RowsAffected)
	assert.Equal(t, "Successfully applied patch 'Add gold to all characters'!\n\nStatements executed: 1\nTotal rows affected: 3", res.Message)

	got := readChars(t, db, "_Char")
	assert.Equal(t, []int64{99000100, 99000200, 99000300}, []int64{got[0].Gold, got[1].Gold, got[2].Gold})

	assert.Equal(t, []string{
		"Checking for backup...",
		"Creating automatic backup...",
		"Backup created successfully",
		"Executing statement 1/1...",
		"Committing changes...",
	}, rec.events)
	assert.Equal(t, seededChars, readChars(t, db, "_Char_Backup"))
}

func TestApplySkipsBackupWhenPresent(t *testing.T) {
	db := newSQLiteDB(t)
	exec := New(db, SQLite{})
	ctx := context.Background()

	require.True(t, exec.Backup(ctx, []string{"_Char"}, nil).Success)
	_, err := db.Exec(`UPDATE _Char SET RemainGold = 7`)
	require.NoError(t, err)

	var rec recorder
	res := exec.Apply(ctx, goldPatch(), rec.progress)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, []string{"Checking for backup...", "Executing statement 1/1...", "Committing changes..."}, rec.events)
	assert.Equal(t, seededChars, readChars(t, db, "_Char_Backup"), "existing backup must not be refreshed")
}

func TestApplyRunsStatementsInOrder(t *testing.T) {
	db := newSQLiteDB(t)
	exec := New(db, SQLite{})

	patch := catalog.Patch{
		Name:         "ordered",
		BackupTables: []string{"_Char"},
		Statements: []string{
			"UPDATE _Char SET RemainGold = 0",
			"UPDATE _Char SET RemainGold = RemainGold + 5 WHERE CharID <= 2",
			"UPDATE _Char SET RemainGold = RemainGold * 2",
		},
	}
	res := exec.Apply(context.Background(), patch, nil)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, len(patch.Statements), res.Statements)
	assert.Equal(t, int64(3+2+3), res.RowsAffected)

	got := readChars(t, db, "_Char")
	assert.Equal(t, []int64{10, 10, 0}, []int64{got[0].Gold, got[1].Gold, got[2].Gold})
}

func TestApplyFailureMidPatchRollsBack(t *testing.T) {
	db := newSQLiteDB(t)
	exec := New(db, SQLite{})
	var rec recorder

	patch := catalog.Patch{
		Name:         "broken",
		BackupTables: []string{"_Char"},
		Statements: []string{
			"UPDATE _Char SET RemainGold = RemainGold + 1",
			"INSERT INTO _Char (CharID, CharName16, RemainGold) VALUES (1, 'Dup', 0)",
			"UPDATE _Char SET RemainGold = 0",
		},
	}
	res := exec.Apply(context.Background(), patch, rec.progress)
	require.False(t, res.Success)
	assert.Equal(t, 2, res.Statements)
	assert.True(t, apperrors.Is(res.Err, apperrors.StatementExecution))
	assert.True(t, strings.HasPrefix(res.Message, "Error: statement 2/3 failed"), res.Message)
	assert.Contains(t, res.Message, "Statements attempted: 2/3")
	assert.Contains(t, res.Message, "Failed statement: INSERT INTO _Char")
	assert.NotContains(t, rec.events, "Executing statement 3/3...")
	assert.NotContains(t, rec.events, "Committing changes...")

	assert.Equal(t, seededChars, readChars(t, db, "_Char"))
	assert.False(t, tableExists(t, db, "_Char_Backup"))
}

func TestRejectsUnsafeTableNames(t *testing.T) {
	db := newSQLiteDB(t)
	exec := New(db, SQLite{})
	ctx := context.Background()

	res := exec.Backup(ctx, []string{"_Char; DROP TABLE _Char"}, nil)
	require.False(t, res.Success)
	assert.True(t, apperrors.Is(res.Err, apperrors.InvalidIdentifier))

	res = exec.Restore(ctx, []string{"_Inventory"}, nil)
	require.False(t, res.Success)
	assert.True(t, apperrors.Is(res.Err, apperrors.InvalidIdentifier))

	res = exec.Backup(ctx, nil, nil)
	assert.False(t, res.Success)
	assert.True(t, tableExists(t, db, "_Char"))
}

func TestProbeSQLite(t *testing.T) {
	db := newSQLiteDB(t)
	version, err := New(db, SQLite{}).Probe(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(version, "SQLite 3."), version)
}
