// Package dialect provides database-specific SQL generation.
// Each dialect implements type mappings from the entity-metadata vocabulary to
// SQL, identifier quoting, and DDL statement generation. The differencer
// decides WHAT structural delta exists; dialects decide HOW to render it.
package dialect

import (
	"github.com/veldtdb/veldt/internal/schema"
	"github.com/veldtdb/veldt/internal/sqlgen"
)

// Dialect defines the interface for database-specific SQL generation.
// Implementations exist for PostgreSQL and SQLite.
type Dialect interface {
	// Name returns the dialect name (postgres, sqlite).
	Name() string

	// QuoteIdent quotes an identifier (table/column name) for the dialect.
	QuoteIdent(name string) string

	// ColumnTypeSQL maps a column's storage type tag to the dialect's SQL type.
	ColumnTypeSQL(col *schema.ColumnDef) string

	// SupportsTruncate returns true if the dialect has a TRUNCATE statement.
	// SQLite does not; table emptying falls back to DELETE FROM.
	SupportsTruncate() bool

	// SupportsTruncateCascade returns true if TRUNCATE accepts a CASCADE modifier.
	SupportsTruncateCascade() bool

	// CreateTableSQL generates the CREATE TABLE statement, with the primary key
	// and all foreign key constraints inline.
	CreateTableSQL(t *schema.TableDef) (string, error)

	// DropTableSQL generates the DROP TABLE statement.
	DropTableSQL(table string, ifExists bool) (string, error)

	// AddColumnSQL generates ALTER TABLE ADD COLUMN.
	AddColumnSQL(table string, col *schema.ColumnDef) (string, error)

	// DropColumnSQL generates ALTER TABLE DROP COLUMN.
	DropColumnSQL(table, column string) (string, error)

	// AlterColumnSQL generates the statements that change an existing column's
	// type, nullability, and default to match the target definition.
	AlterColumnSQL(table string, col *schema.ColumnDef) ([]string, error)

	// CreateIndexSQL generates CREATE [UNIQUE] INDEX.
	CreateIndexSQL(table string, idx *schema.IndexDef) (string, error)

	// DropIndexSQL generates DROP INDEX.
	DropIndexSQL(name string) (string, error)

	// AddForeignKeySQL generates ALTER TABLE ADD CONSTRAINT FOREIGN KEY.
	AddForeignKeySQL(table string, fk *schema.ForeignKeyDef) (string, error)

	// DropForeignKeySQL generates ALTER TABLE DROP CONSTRAINT.
	DropForeignKeySQL(table, name string) (string, error)

	// TruncateSQL generates the table-emptying statement: DELETE FROM on
	// backends without TRUNCATE, TRUNCATE [CASCADE] otherwise.
	TruncateSQL(table string, cascade bool) string
}

// Get returns the dialect implementation for the given name.
// Valid names: "postgres", "postgresql", "sqlite", "sqlite3".
// Returns nil if the dialect is not supported.
func Get(name string) Dialect {
	switch name {
	case "postgres", "postgresql":
		return Postgres()
	case "sqlite", "sqlite3":
		return SQLite()
	default:
		return nil
	}
}

// Names returns the list of supported dialect names.
func Names() []string {
	return []string{"postgres", "sqlite"}
}

// GenDialect maps a Dialect to the sqlgen dialect used by statement helpers.
func GenDialect(d Dialect) sqlgen.Dialect {
	if d.Name() == "sqlite" {
		return sqlgen.SQLite
	}
	return sqlgen.Postgres
}
