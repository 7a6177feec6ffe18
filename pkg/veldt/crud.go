package veldt

import (
	"context"
	"database/sql"
)

// Create inserts one row into a table. Constraint violations surface
// as SQL execution errors.
func (r *Resolver) Create(ctx context.Context, table string, values map[string]any) (sql.Result, error) {
	return r.exec.Create(ctx, table, values)
}

// Update modifies rows matching an equality filter. Matching zero rows
// is not an error.
func (r *Resolver) Update(ctx context.Context, table string, values, where map[string]any) (sql.Result, error) {
	return r.exec.Update(ctx, table, values, where)
}

// ExecQuery runs a pre-built statement. Row-returning statements yield
// rows; everything else yields the affected row count.
func (r *Resolver) ExecQuery(ctx context.Context, stmt Statement) (*QueryResult, error) {
	return r.exec.ExecQuery(ctx, stmt.SQL, stmt.Args...)
}

// Read executes a row-returning statement and hands the rows, plus the
// eager-load specification, to the configured hydrator factory. The
// returned Collection hydrates lazily and can be iterated repeatedly;
// the underlying cursor is already closed when Read returns.
func (r *Resolver) Read(ctx context.Context, stmt Statement, eager []string) (*Collection, error) {
	var h Hydrator
	if r.config.Hydrators != nil {
		h = r.config.Hydrators(eager)
	}
	return r.exec.Read(ctx, stmt.SQL, stmt.Args, h)
}

// Truncate removes all rows from a table inside a transaction. On
// backends without TRUNCATE a delete-all statement is issued instead;
// cascade is honored only where the backend supports it.
func (r *Resolver) Truncate(ctx context.Context, table string, cascade bool) (sql.Result, error) {
	return r.exec.Truncate(ctx, table, cascade)
}

// DropTable removes a table, best-effort. Any failure, including a
// missing table, is logged and reported as false rather than returned.
func (r *Resolver) DropTable(ctx context.Context, table string) bool {
	return r.exec.DropTable(ctx, table)
}
