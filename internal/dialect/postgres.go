package dialect

import (
	"fmt"

	"github.com/veldtdb/veldt/internal/schema"
)

// postgres implements the Dialect interface for PostgreSQL.
type postgres struct{}

// Postgres returns the PostgreSQL dialect implementation.
func Postgres() Dialect {
	return &postgres{}
}

func (d *postgres) Name() string {
	return "postgres"
}

// -----------------------------------------------------------------------------
// Type mappings
// -----------------------------------------------------------------------------

func (d *postgres) StringType(length int) string {
	return fmt.Sprintf("VARCHAR(%d)", length)
}

func (d *postgres) TextType() string {
	return "TEXT"
}

func (d *postgres) IntegerType() string {
	return "INTEGER"
}

func (d *postgres) BigIntType() string {
	return "BIGINT"
}

func (d *postgres) FloatType() string {
	return "REAL"
}

func (d *postgres) DecimalType() string {
	return "DECIMAL(10, 2)"
}

func (d *postgres) BooleanType() string {
	return "BOOLEAN"
}

func (d *postgres) DateType() string {
	return "DATE"
}

func (d *postgres) TimeType() string {
	return "TIME"
}

func (d *postgres) DateTimeType() string {
	return "TIMESTAMPTZ"
}

func (d *postgres) UUIDType() string {
	return "UUID"
}

func (d *postgres) JSONType() string {
	return "JSONB"
}

func (d *postgres) BlobType() string {
	return "BYTEA"
}

func (d *postgres) ColumnTypeSQL(col *schema.ColumnDef) string {
	return buildColumnTypeSQL(col, d)
}

// -----------------------------------------------------------------------------
// Identifiers
// -----------------------------------------------------------------------------

func (d *postgres) QuoteIdent(name string) string {
	return quoteIdentDoubleQuote(name)
}

// -----------------------------------------------------------------------------
// Feature support
// -----------------------------------------------------------------------------

func (d *postgres) SupportsTruncate() bool {
	return true
}

func (d *postgres) SupportsTruncateCascade() bool {
	return true
}

// -----------------------------------------------------------------------------
// SQL generation
// -----------------------------------------------------------------------------

func (d *postgres) CreateTableSQL(t *schema.TableDef) (string, error) {
	return buildCreateTableSQL(t, d.QuoteIdent, d.columnDefSQL)
}

func (d *postgres) DropTableSQL(table string, ifExists bool) (string, error) {
	return buildDropTableSQL(table, ifExists, d.QuoteIdent)
}

func (d *postgres) AddColumnSQL(table string, col *schema.ColumnDef) (string, error) {
	return buildAddColumnSQL(table, col, d.QuoteIdent, d.columnDefSQL)
}

func (d *postgres) DropColumnSQL(table, column string) (string, error) {
	return buildDropColumnSQL(table, column, d.QuoteIdent)
}

// AlterColumnSQL emits one ALTER TABLE statement per changed facet so failures
// point at a single clause.
func (d *postgres) AlterColumnSQL(table string, col *schema.ColumnDef) ([]string, error) {
	var statements []string
	tableName := d.QuoteIdent(table)
	colName := d.QuoteIdent(col.Name)

	statements = append(statements,
		fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", tableName, colName, d.ColumnTypeSQL(col)))

	if col.Nullable {
		statements = append(statements,
			fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", tableName, colName))
	} else {
		statements = append(statements,
			fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", tableName, colName))
	}

	if def := columnDefaultSQL(col, PostgresBooleans); def != "" {
		statements = append(statements,
			fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", tableName, colName, def))
	} else {
		statements = append(statements,
			fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", tableName, colName))
	}

	return statements, nil
}

func (d *postgres) CreateIndexSQL(table string, idx *schema.IndexDef) (string, error) {
	return buildCreateIndexSQL(table, idx, d.QuoteIdent)
}

func (d *postgres) DropIndexSQL(name string) (string, error) {
	return buildDropIndexSQL(name, d.QuoteIdent)
}

func (d *postgres) AddForeignKeySQL(table string, fk *schema.ForeignKeyDef) (string, error) {
	return buildAddForeignKeySQL(table, fk, d.QuoteIdent)
}

func (d *postgres) DropForeignKeySQL(table, name string) (string, error) {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s",
		d.QuoteIdent(table), d.QuoteIdent(name)), nil
}

func (d *postgres) TruncateSQL(table string, cascade bool) string {
	return buildTruncateSQL(d, table, cascade)
}

// columnDefSQL generates the SQL for a column definition.
func (d *postgres) columnDefSQL(col *schema.ColumnDef, inlinePK bool) string {
	return buildColumnDefSQL(col, inlinePK, ColumnDefConfig{
		QuoteIdent: d.QuoteIdent,
		TypeSQL:    d.ColumnTypeSQL,
		Booleans:   PostgresBooleans,
	})
}
