// Package introspect discovers live database schema by querying system
// catalogs. It converts tables, columns, indexes, and foreign keys into
// schema definitions suitable for diffing against a target schema.
package introspect

import (
	"context"
	"database/sql"
	"strings"

	"github.com/veldtdb/veldt/internal/dialect"
	"github.com/veldtdb/veldt/internal/schema"
)

// Introspector queries database catalogs to discover schema information.
type Introspector interface {
	// ListTables returns the names of all user tables, sorted.
	ListTables(ctx context.Context) ([]string, error)

	// IntrospectTable returns a single table definition, or nil if the
	// table does not exist (zero columns reported by the catalog).
	IntrospectTable(ctx context.Context, tableName string) (*schema.TableDef, error)

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)
}

// New creates an Introspector for the given dialect.
// Returns nil if the dialect is not supported.
func New(db *sql.DB, d dialect.Dialect) Introspector {
	switch d.Name() {
	case "postgres":
		return &postgresIntrospector{db: db, dialect: d}
	case "sqlite":
		return &sqliteIntrospector{db: db, dialect: d}
	default:
		return nil
	}
}

// RawColumn represents column metadata from a database catalog.
type RawColumn struct {
	Name         string
	DataType     string // Raw SQL type (VARCHAR, INTEGER, etc.)
	IsNullable   bool
	Default      sql.NullString // Raw default expression
	IsPrimaryKey bool
	MaxLength    sql.NullInt64 // For VARCHAR(n)
	Precision    sql.NullInt64 // For DECIMAL(p,s)
	Scale        sql.NullInt64
}

// normalizeAction converts a catalog referential action to its canonical
// form. NO ACTION is the database default and is recorded as empty so
// that undeclared actions compare equal to introspected ones.
func normalizeAction(action string) string {
	switch strings.ToUpper(action) {
	case "CASCADE":
		return "CASCADE"
	case "SET NULL":
		return "SET NULL"
	case "SET DEFAULT":
		return "SET DEFAULT"
	case "RESTRICT":
		return "RESTRICT"
	default:
		return ""
	}
}
