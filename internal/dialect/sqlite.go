package dialect

import (
	"github.com/veldtdb/veldt/internal/schema"
	"github.com/veldtdb/veldt/internal/verr"
)

// sqlite implements the Dialect interface for SQLite.
type sqlite struct{}

// SQLite returns the SQLite dialect implementation.
func SQLite() Dialect {
	return &sqlite{}
}

func (d *sqlite) Name() string {
	return "sqlite"
}

// -----------------------------------------------------------------------------
// Type mappings
// SQLite has dynamic typing with type affinities: TEXT, INTEGER, REAL, BLOB.
// Most types map to TEXT for simplicity and compatibility.
// -----------------------------------------------------------------------------

func (d *sqlite) StringType(length int) string {
	// SQLite ignores length constraints; use TEXT.
	return "TEXT"
}

func (d *sqlite) TextType() string {
	return "TEXT"
}

func (d *sqlite) IntegerType() string {
	return "INTEGER"
}

func (d *sqlite) BigIntType() string {
	return "INTEGER"
}

func (d *sqlite) FloatType() string {
	return "REAL"
}

func (d *sqlite) DecimalType() string {
	// SQLite has no native DECIMAL; use TEXT for precision preservation.
	return "TEXT"
}

func (d *sqlite) BooleanType() string {
	// SQLite has no native BOOLEAN; use INTEGER (0 = false, 1 = true).
	return "INTEGER"
}

func (d *sqlite) DateType() string {
	// Stored as TEXT, but the DATE affinity survives introspection.
	return "DATE"
}

func (d *sqlite) TimeType() string {
	return "TIME"
}

func (d *sqlite) DateTimeType() string {
	return "DATETIME"
}

func (d *sqlite) UUIDType() string {
	return "TEXT"
}

func (d *sqlite) JSONType() string {
	return "TEXT"
}

func (d *sqlite) BlobType() string {
	return "BLOB"
}

func (d *sqlite) ColumnTypeSQL(col *schema.ColumnDef) string {
	return buildColumnTypeSQL(col, d)
}

// -----------------------------------------------------------------------------
// Identifiers
// -----------------------------------------------------------------------------

func (d *sqlite) QuoteIdent(name string) string {
	return quoteIdentDoubleQuote(name)
}

// -----------------------------------------------------------------------------
// Feature support
// -----------------------------------------------------------------------------

func (d *sqlite) SupportsTruncate() bool {
	return false
}

func (d *sqlite) SupportsTruncateCascade() bool {
	return false
}

// -----------------------------------------------------------------------------
// SQL generation
// -----------------------------------------------------------------------------

func (d *sqlite) CreateTableSQL(t *schema.TableDef) (string, error) {
	return buildCreateTableSQL(t, d.QuoteIdent, d.columnDefSQL)
}

func (d *sqlite) DropTableSQL(table string, ifExists bool) (string, error) {
	return buildDropTableSQL(table, ifExists, d.QuoteIdent)
}

func (d *sqlite) AddColumnSQL(table string, col *schema.ColumnDef) (string, error) {
	return buildAddColumnSQL(table, col, d.QuoteIdent, d.columnDefSQL)
}

func (d *sqlite) DropColumnSQL(table, column string) (string, error) {
	// SQLite 3.35.0+ supports DROP COLUMN
	return buildDropColumnSQL(table, column, d.QuoteIdent)
}

func (d *sqlite) AlterColumnSQL(table string, col *schema.ColumnDef) ([]string, error) {
	// SQLite has very limited ALTER TABLE support. Changing a column's type,
	// nullability, or default requires table recreation, which must be decided
	// at a higher level.
	return nil, verr.New(verr.ErrSQLUnsupported, "SQLite does not support ALTER COLUMN; use table recreation pattern").
		WithTable(table).
		WithColumn(col.Name)
}

func (d *sqlite) CreateIndexSQL(table string, idx *schema.IndexDef) (string, error) {
	return buildCreateIndexSQL(table, idx, d.QuoteIdent)
}

func (d *sqlite) DropIndexSQL(name string) (string, error) {
	return buildDropIndexSQL(name, d.QuoteIdent)
}

func (d *sqlite) AddForeignKeySQL(table string, fk *schema.ForeignKeyDef) (string, error) {
	return "", verr.New(verr.ErrSQLUnsupported, "SQLite does not support ALTER TABLE ADD FOREIGN KEY; use table recreation pattern").
		WithTable(table).
		With("fk_name", fk.Name)
}

func (d *sqlite) DropForeignKeySQL(table, name string) (string, error) {
	return "", verr.New(verr.ErrSQLUnsupported, "SQLite does not support ALTER TABLE DROP FOREIGN KEY; use table recreation pattern").
		WithTable(table).
		With("fk_name", name)
}

func (d *sqlite) TruncateSQL(table string, cascade bool) string {
	// No TRUNCATE in SQLite; DELETE FROM empties the table. The cascade flag
	// is ignored because sqlite applies FK actions to the deletes themselves.
	return buildTruncateSQL(d, table, cascade)
}

// columnDefSQL generates the SQL for a column definition.
func (d *sqlite) columnDefSQL(col *schema.ColumnDef, inlinePK bool) string {
	return buildColumnDefSQL(col, inlinePK, ColumnDefConfig{
		QuoteIdent: d.QuoteIdent,
		TypeSQL:    d.ColumnTypeSQL,
		Booleans:   SQLiteBooleans,
	})
}
