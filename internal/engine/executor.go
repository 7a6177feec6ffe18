// Package engine executes reconciliation plans and row operations
// against a database. It is the only package that talks to *sql.DB;
// everything above it deals in statements and definitions.
package engine

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/veldtdb/veldt/internal/dialect"
	"github.com/veldtdb/veldt/internal/sqlgen"
	"github.com/veldtdb/veldt/internal/verr"
)

// Statement is one executable SQL statement with its bind arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Statements wraps plain DDL strings as executable statements.
func Statements(sqls []string) []Statement {
	stmts := make([]Statement, len(sqls))
	for i, s := range sqls {
		stmts[i] = Statement{SQL: s}
	}
	return stmts
}

// Executor runs statements against a database.
type Executor struct {
	db      *sql.DB
	dialect dialect.Dialect
	log     *slog.Logger
}

// NewExecutor creates an Executor. Returns nil if db or dialect is nil.
// A nil logger falls back to slog.Default.
func NewExecutor(db *sql.DB, d dialect.Dialect, log *slog.Logger) *Executor {
	if db == nil || d == nil {
		return nil
	}
	if log == nil {
		log = slog.Default()
	}
	return &Executor{db: db, dialect: d, log: log}
}

// DB returns the underlying database handle.
func (e *Executor) DB() *sql.DB {
	return e.db
}

// Dialect returns the executor's dialect.
func (e *Executor) Dialect() dialect.Dialect {
	return e.dialect
}

// Apply executes statements in order and returns the result of the
// last one. Execution stops at the first failure; statements already
// executed are not rolled back.
func (e *Executor) Apply(ctx context.Context, stmts []Statement) (sql.Result, error) {
	var last sql.Result
	for _, stmt := range stmts {
		e.log.Debug("executing statement", "sql", stmt.SQL)
		res, err := e.db.ExecContext(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return last, verr.Wrap(verr.ErrSQLExecution, err, "failed to execute statement").
				WithSQL(stmt.SQL)
		}
		last = res
	}
	return last, nil
}

// Create inserts one row and returns the driver result.
func (e *Executor) Create(ctx context.Context, table string, values map[string]any) (sql.Result, error) {
	if len(values) == 0 {
		return nil, verr.New(verr.ErrSQLExecution, "no values to insert").WithTable(table)
	}

	query, args := sqlgen.InsertSQL(dialect.GenDialect(e.dialect), table, values)
	res, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, verr.Wrap(verr.ErrSQLExecution, err, "insert failed").
			WithTable(table).
			WithSQL(query)
	}
	return res, nil
}

// Update modifies matching rows and returns the driver result.
// Matching zero rows is not an error.
func (e *Executor) Update(ctx context.Context, table string, values, where map[string]any) (sql.Result, error) {
	if len(values) == 0 {
		return nil, verr.New(verr.ErrSQLExecution, "no values to update").WithTable(table)
	}

	query, args := sqlgen.UpdateSQL(dialect.GenDialect(e.dialect), table, values, where)
	res, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, verr.Wrap(verr.ErrSQLExecution, err, "update failed").
			WithTable(table).
			WithSQL(query)
	}
	return res, nil
}

// QueryResult holds the outcome of ExecQuery. Row-returning statements
// populate Rows; everything else populates RowsAffected.
type QueryResult struct {
	Rows         []map[string]any
	RowsAffected int64
}

// ExecQuery runs arbitrary SQL. SELECT-like statements return their
// rows; other statements return the affected row count.
func (e *Executor) ExecQuery(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	if returnsRows(query) {
		rows, err := queryMaps(ctx, e.db, query, args...)
		if err != nil {
			return nil, verr.Wrap(verr.ErrSQLExecution, err, "query failed").WithSQL(query)
		}
		return &QueryResult{Rows: rows}, nil
	}

	res, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, verr.Wrap(verr.ErrSQLExecution, err, "exec failed").WithSQL(query)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	return &QueryResult{RowsAffected: affected}, nil
}

// returnsRows reports whether a statement produces a result set.
func returnsRows(query string) bool {
	q := strings.TrimSpace(query)
	for _, prefix := range []string{"SELECT", "WITH", "PRAGMA", "EXPLAIN"} {
		if len(q) >= len(prefix) && strings.EqualFold(q[:len(prefix)], prefix) {
			return true
		}
	}
	return false
}

// Truncate removes all rows from a table inside a transaction. On
// engines without TRUNCATE the equivalent DELETE is issued instead, so
// the table is empty either way.
func (e *Executor) Truncate(ctx context.Context, table string, cascade bool) (sql.Result, error) {
	query := e.dialect.TruncateSQL(table, cascade)

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, verr.Wrap(verr.ErrSQLTransaction, err, "failed to begin transaction").WithTable(table)
	}

	res, err := tx.ExecContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return nil, verr.Wrap(verr.ErrSQLExecution, err, "truncate failed").
			WithTable(table).
			WithSQL(query)
	}

	if err := tx.Commit(); err != nil {
		return nil, verr.Wrap(verr.ErrSQLTransaction, err, "failed to commit transaction").WithTable(table)
	}
	return res, nil
}

// DropTable removes a table and reports success. Failures (including a
// missing table) are logged and swallowed; callers that need the cause
// should drop via Apply instead.
func (e *Executor) DropTable(ctx context.Context, table string) bool {
	query, err := e.dialect.DropTableSQL(table, false)
	if err != nil {
		e.log.Warn("drop table failed", "table", table, "error", err)
		return false
	}
	if _, err := e.db.ExecContext(ctx, query); err != nil {
		e.log.Warn("drop table failed", "table", table, "error", err)
		return false
	}
	return true
}
