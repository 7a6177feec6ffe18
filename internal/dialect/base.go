// Package dialect provides database-specific SQL generation.
// This file contains shared helper functions used by all dialect implementations.
package dialect

import (
	"fmt"
	"strings"

	"github.com/veldtdb/veldt/internal/schema"
	"github.com/veldtdb/veldt/internal/strutil"
)

// QuoteIdentFunc is a function that quotes an identifier.
type QuoteIdentFunc func(name string) string

// writeQuotedList writes comma-separated quoted identifiers to the builder.
func writeQuotedList(b *strings.Builder, items []string, quote QuoteIdentFunc) {
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(item))
	}
}

// TypeMapper provides type-specific SQL generation.
// Each dialect implements these methods.
type TypeMapper interface {
	StringType(length int) string
	TextType() string
	IntegerType() string
	BigIntType() string
	FloatType() string
	DecimalType() string
	BooleanType() string
	DateType() string
	TimeType() string
	DateTimeType() string
	UUIDType() string
	JSONType() string
	BlobType() string
}

// buildColumnTypeSQL generates the SQL type for a column using the type mapper.
func buildColumnTypeSQL(col *schema.ColumnDef, mapper TypeMapper) string {
	switch col.Type {
	case "string":
		length := col.Length
		if length == 0 {
			length = 255
		}
		return mapper.StringType(length)
	case "text":
		return mapper.TextType()
	case "integer":
		return mapper.IntegerType()
	case "bigint":
		return mapper.BigIntType()
	case "float":
		return mapper.FloatType()
	case "decimal":
		return mapper.DecimalType()
	case "boolean":
		return mapper.BooleanType()
	case "date":
		return mapper.DateType()
	case "time":
		return mapper.TimeType()
	case "date_time":
		return mapper.DateTimeType()
	case "uuid":
		return mapper.UUIDType()
	case "json":
		return mapper.JSONType()
	case "blob":
		return mapper.BlobType()
	default:
		// Fallback for custom types: pass the tag through uppercased.
		return strings.ToUpper(col.Type)
	}
}

// BooleanLiterals holds the true/false literals for a dialect.
type BooleanLiterals struct {
	True  string
	False string
}

// PostgresBooleans uses TRUE/FALSE.
var PostgresBooleans = BooleanLiterals{True: "TRUE", False: "FALSE"}

// SQLiteBooleans uses 1/0.
var SQLiteBooleans = BooleanLiterals{True: "1", False: "0"}

// buildDefaultValueSQL generates the SQL representation of a default value.
// Only boolean handling differs between dialects.
func buildDefaultValueSQL(value any, bools BooleanLiterals) string {
	switch v := value.(type) {
	case string:
		escaped := strings.ReplaceAll(v, "'", "''")
		return fmt.Sprintf("'%s'", escaped)
	case bool:
		if v {
			return bools.True
		}
		return bools.False
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	case nil:
		return "NULL"
	default:
		return fmt.Sprintf("'%v'", v)
	}
}

// columnDefaultSQL picks the SQL text for a column default: introspected
// server defaults are already SQL, declared Go values need formatting.
func columnDefaultSQL(col *schema.ColumnDef, bools BooleanLiterals) string {
	if col.ServerDefault != "" {
		return col.ServerDefault
	}
	if col.DefaultSet && col.Default != nil {
		return buildDefaultValueSQL(col.Default, bools)
	}
	return ""
}

// buildForeignKeyConstraintSQL generates a foreign key constraint clause.
// ON DELETE / ON UPDATE clauses are emitted only for explicitly declared
// actions; absence means the database default applies.
func buildForeignKeyConstraintSQL(fk *schema.ForeignKeyDef, quote QuoteIdentFunc) string {
	var b strings.Builder

	if fk.Name != "" {
		b.WriteString("CONSTRAINT ")
		b.WriteString(quote(fk.Name))
		b.WriteString(" ")
	}

	b.WriteString("FOREIGN KEY (")
	writeQuotedList(&b, fk.Columns, quote)
	b.WriteString(") REFERENCES ")
	b.WriteString(quote(fk.RefTable))
	b.WriteString(" (")
	writeQuotedList(&b, fk.RefColumns, quote)
	b.WriteString(")")

	if fk.OnDelete != "" {
		b.WriteString(" ON DELETE ")
		b.WriteString(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		b.WriteString(" ON UPDATE ")
		b.WriteString(fk.OnUpdate)
	}

	return b.String()
}

// ColumnDefFunc generates SQL for a column definition.
type ColumnDefFunc func(col *schema.ColumnDef, inlinePK bool) string

// buildCreateTableSQL generates CREATE TABLE SQL using provided helper functions.
// A single-column primary key is rendered inline on the column; a composite
// primary key becomes a table-level PRIMARY KEY clause.
func buildCreateTableSQL(t *schema.TableDef, quote QuoteIdentFunc, columnDef ColumnDefFunc) (string, error) {
	var b strings.Builder

	b.WriteString("CREATE TABLE ")
	b.WriteString(quote(t.Name))
	b.WriteString(" (\n")

	inlinePK := ""
	if len(t.PrimaryKey) == 1 {
		inlinePK = t.PrimaryKey[0]
	}

	for i, col := range t.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("  ")
		b.WriteString(columnDef(col, col.Name == inlinePK))
	}

	if len(t.PrimaryKey) > 1 {
		b.WriteString(",\n  PRIMARY KEY (")
		writeQuotedList(&b, t.PrimaryKey, quote)
		b.WriteString(")")
	}

	for _, fk := range t.ForeignKeys {
		b.WriteString(",\n  ")
		b.WriteString(buildForeignKeyConstraintSQL(fk, quote))
	}

	b.WriteString("\n)")
	return b.String(), nil
}

// buildTruncateSQL picks the table-emptying statement from the dialect's
// declared capabilities: DELETE FROM without TRUNCATE support, and the
// CASCADE modifier only where the dialect accepts it.
func buildTruncateSQL(d Dialect, table string, cascade bool) string {
	if !d.SupportsTruncate() {
		return "DELETE FROM " + d.QuoteIdent(table)
	}
	sql := "TRUNCATE TABLE " + d.QuoteIdent(table)
	if cascade && d.SupportsTruncateCascade() {
		sql += " CASCADE"
	}
	return sql
}

// buildDropTableSQL generates DROP TABLE SQL.
func buildDropTableSQL(table string, ifExists bool, quote QuoteIdentFunc) (string, error) {
	var b strings.Builder
	b.WriteString("DROP TABLE ")
	if ifExists {
		b.WriteString("IF EXISTS ")
	}
	b.WriteString(quote(table))
	return b.String(), nil
}

// buildAddColumnSQL generates ALTER TABLE ADD COLUMN SQL.
func buildAddColumnSQL(table string, col *schema.ColumnDef, quote QuoteIdentFunc, columnDef ColumnDefFunc) (string, error) {
	var b strings.Builder
	b.WriteString("ALTER TABLE ")
	b.WriteString(quote(table))
	b.WriteString(" ADD COLUMN ")
	b.WriteString(columnDef(col, false))
	return b.String(), nil
}

// buildDropColumnSQL generates ALTER TABLE DROP COLUMN SQL.
func buildDropColumnSQL(table, column string, quote QuoteIdentFunc) (string, error) {
	var b strings.Builder
	b.WriteString("ALTER TABLE ")
	b.WriteString(quote(table))
	b.WriteString(" DROP COLUMN ")
	b.WriteString(quote(column))
	return b.String(), nil
}

// buildCreateIndexSQL generates CREATE INDEX SQL.
func buildCreateIndexSQL(table string, idx *schema.IndexDef, quote QuoteIdentFunc) (string, error) {
	var b strings.Builder

	b.WriteString("CREATE ")
	if idx.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX ")

	name := idx.Name
	if name == "" {
		if idx.Unique {
			name = strutil.UniqueName(table, idx.Columns...)
		} else {
			name = strutil.IndexName(table, idx.Columns...)
		}
	}

	b.WriteString(quote(name))
	b.WriteString(" ON ")
	b.WriteString(quote(table))
	b.WriteString(" (")
	writeQuotedList(&b, idx.Columns, quote)
	b.WriteString(")")

	return b.String(), nil
}

// buildDropIndexSQL generates DROP INDEX SQL.
func buildDropIndexSQL(name string, quote QuoteIdentFunc) (string, error) {
	return "DROP INDEX " + quote(name), nil
}

// buildAddForeignKeySQL generates ALTER TABLE ADD FOREIGN KEY SQL.
func buildAddForeignKeySQL(table string, fk *schema.ForeignKeyDef, quote QuoteIdentFunc) (string, error) {
	var b strings.Builder
	b.WriteString("ALTER TABLE ")
	b.WriteString(quote(table))
	b.WriteString(" ADD ")
	b.WriteString(buildForeignKeyConstraintSQL(fk, quote))
	return b.String(), nil
}

// ColumnDefConfig holds the callbacks for buildColumnDefSQL.
type ColumnDefConfig struct {
	QuoteIdent QuoteIdentFunc
	TypeSQL    func(col *schema.ColumnDef) string
	Booleans   BooleanLiterals
}

// buildColumnDefSQL generates the SQL for a column definition.
// Clause order: PK, NULL, UNIQUE, DEFAULT - shared by PostgreSQL and SQLite.
func buildColumnDefSQL(col *schema.ColumnDef, inlinePK bool, cfg ColumnDefConfig) string {
	var b strings.Builder

	b.WriteString(cfg.QuoteIdent(col.Name))
	b.WriteString(" ")
	b.WriteString(cfg.TypeSQL(col))

	if inlinePK {
		b.WriteString(" PRIMARY KEY")
	}
	if !col.Nullable && !inlinePK {
		b.WriteString(" NOT NULL")
	}
	if col.Unique && !inlinePK {
		b.WriteString(" UNIQUE")
	}
	if d := columnDefaultSQL(col, cfg.Booleans); d != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(d)
	}

	return b.String()
}

// quoteIdentDoubleQuote quotes an identifier with double quotes, escaping
// embedded quotes by doubling them. Shared by PostgreSQL and SQLite.
func quoteIdentDoubleQuote(name string) string {
	escaped := strings.ReplaceAll(name, `"`, `""`)
	return `"` + escaped + `"`
}
