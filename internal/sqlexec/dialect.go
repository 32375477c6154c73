// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"srodbpatch/cli/internal/dsn"
)

// querier is the subset of *sql.Tx the operations run against.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect renders the handful of statements that differ between servers.
// Table names reaching a Dialect have already passed validateTable.
type Dialect interface {
	Name() string
	Quote(ident string) string
	// TableExists reports whether a base table with this exact name exists.
	TableExists(ctx context.Context, q querier, table string) (bool, error)
	// DropIfExists removes table when present.
	DropIfExists(table string) string
	// CopyInto creates dst as a full, unindexed copy of src.
	CopyInto(src, dst string) string
	// RestoreFrom returns the statements that insert every row of src into dst.
	RestoreFrom(ctx context.Context, q querier, dst, src string) ([]string, error)
	// VersionQuery returns a single-row, single-column server version query.
	VersionQuery() string
	// Native reports whether catalog statements, which are T-SQL against the
	// shard's dbo schema and sibling databases, run unchanged here.
	Native() bool
}

// DialectFor returns the dialect for a driver.
func DialectFor(driver dsn.DBType) (Dialect, error) {
	switch driver {
	case dsn.DBTypeSQLServer:
		return SQLServer{}, nil
	case dsn.DBTypePostgres:
		return Postgres{}, nil
	case dsn.DBTypeSQLite:
		return SQLite{}, nil
	}
	return nil, fmt.Errorf("no SQL dialect for driver %q", driver)
}

func countRows(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	var n int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// SQLServer is the T-SQL dialect used against the game shard.
type SQLServer struct{}

func (SQLServer) Name() string { return "sqlserver" }

func (SQLServer) Quote(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

func (SQLServer) TableExists(ctx context.Context, q querier, table string) (bool, error) {
	n, err := countRows(ctx, q, "SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_NAME = @p1", table)
	return n > 0, err
}

func (d SQLServer) DropIfExists(table string) string {
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s", table, d.Quote(table))
}

func (d SQLServer) CopyInto(src, dst string) string {
	return fmt.Sprintf("SELECT * INTO %s FROM %s", d.Quote(dst), d.Quote(src))
}

// RestoreFrom switches IDENTITY_INSERT on for tables with an identity column;
// SQL Server refuses explicit identity values otherwise, and only with a
// column list.
func (d SQLServer) RestoreFrom(ctx context.Context, q querier, dst, src string) ([]string, error) {
	var hasIdentity sql.NullInt64
	if err := q.QueryRowContext(ctx, "SELECT OBJECTPROPERTY(OBJECT_ID(@p1), 'TableHasIdentity')", dst).Scan(&hasIdentity); err != nil {
		return nil, err
	}
	if !hasIdentity.Valid || hasIdentity.Int64 == 0 {
		return []string{fmt.Sprintf("INSERT INTO %s SELECT * FROM %s", d.Quote(dst), d.Quote(src))}, nil
	}

	rows, err := q.QueryContext(ctx, `SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_NAME = @p1 AND COLUMNPROPERTY(OBJECT_ID(TABLE_NAME), COLUMN_NAME, 'IsComputed') = 0
ORDER BY ORDINAL_POSITION`, dst)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cols = append(cols, d.Quote(c))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("no insertable columns found for %s", dst)
	}

	list := strings.Join(cols, ", ")
	return []string{
		fmt.Sprintf("SET IDENTITY_INSERT %s ON", d.Quote(dst)),
		fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", d.Quote(dst), list, list, d.Quote(src)),
		fmt.Sprintf("SET IDENTITY_INSERT %s OFF", d.Quote(dst)),
	}, nil
}

func (SQLServer) VersionQuery() string { return "SELECT @@VERSION" }

func (SQLServer) Native() bool { return true }

// Postgres is for rehearsing backup and restore on a PostgreSQL copy of the
// shard. Catalog statements name tables as dbo._Char or
// SRO_VT_ACCOUNT.dbo.SK_Silk, which PostgreSQL folds to different objects
// than the quoted "_Char" the backups copy, so catalog patches do not apply
// here as written.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Quote(ident string) string { return quoteDouble(ident) }

func (Postgres) TableExists(ctx context.Context, q querier, table string) (bool, error) {
	n, err := countRows(ctx, q, "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = $1", table)
	return n > 0, err
}

func (d Postgres) DropIfExists(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}

func (d Postgres) CopyInto(src, dst string) string {
	return fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s", d.Quote(dst), d.Quote(src))
}

// RestoreFrom uses OVERRIDING SYSTEM VALUE so GENERATED ALWAYS identity
// columns accept the backed-up ids.
func (d Postgres) RestoreFrom(_ context.Context, _ querier, dst, src string) ([]string, error) {
	return []string{fmt.Sprintf("INSERT INTO %s OVERRIDING SYSTEM VALUE SELECT * FROM %s", d.Quote(dst), d.Quote(src))}, nil
}

func (Postgres) VersionQuery() string { return "SELECT version()" }

func (Postgres) Native() bool { return false }

// SQLite backs local rehearsal databases. Like Postgres it runs backup and
// restore faithfully but not the T-SQL catalog statements.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite3" }

func (SQLite) Quote(ident string) string { return quoteDouble(ident) }

func (SQLite) TableExists(ctx context.Context, q querier, table string) (bool, error) {
	n, err := countRows(ctx, q, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
	return n > 0, err
}

func (d SQLite) DropIfExists(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}

func (d SQLite) CopyInto(src, dst string) string {
	return fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s", d.Quote(dst), d.Quote(src))
}

func (d SQLite) RestoreFrom(_ context.Context, _ querier, dst, src string) ([]string, error) {
	return []string{fmt.Sprintf("INSERT INTO %s SELECT * FROM %s", d.Quote(dst), d.Quote(src))}, nil
}

func (SQLite) VersionQuery() string { return "SELECT 'SQLite ' || sqlite_version()" }

func (SQLite) Native() bool { return false }

func quoteDouble(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
