// Package schema defines the abstract table structures that the rest of veldt
// operates on: the target schema derived from entity metadata, and the live
// schema produced by introspection. Both sides of a reconciliation are
// expressed as *TableDef so they can be compared structurally.
package schema

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/veldtdb/veldt/internal/verr"
)

// Validation messages shared across TableDef, ColumnDef, IndexDef and ForeignKeyDef.
const (
	msgTableNameRequired  = "table name is required"
	msgColumnNameRequired = "column name is required"
	msgTableNeedsColumn   = "table must have at least one column"
	msgIndexNeedsColumn   = "index must have at least one column"
	msgFKNeedsColumn      = "foreign key must have at least one column"
	msgFKNeedsRefTable    = "foreign key must reference a table"
	msgFKNeedsRefColumn   = "foreign key must reference at least one column"
	msgFKColumnCountMatch = "foreign key column count must match referenced column count"
)

// validIdentifierPattern matches safe SQL identifiers (lowercase snake_case).
var validIdentifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidateIdentifier checks that a name is a safe SQL identifier (lowercase snake_case).
func ValidateIdentifier(name string) error {
	if !validIdentifierPattern.MatchString(name) {
		return verr.New(verr.ErrInvalidIdentifier,
			fmt.Sprintf("invalid identifier %q; must match [a-z_][a-z0-9_]*", name))
	}
	return nil
}

// validFKActions is the closed set of valid ON DELETE / ON UPDATE actions.
// The empty string means "no action declared": the database default applies
// and no clause is emitted.
var validFKActions = map[string]bool{
	"":            true,
	"CASCADE":     true,
	"SET NULL":    true,
	"SET DEFAULT": true,
	"RESTRICT":    true,
	"NO ACTION":   true,
}

// NormalizeFKAction normalizes and validates an FK referential action.
// Returns the uppercased action, or an error if the value falls outside the
// closed vocabulary. Anything unknown fails loudly rather than degrading to a
// default.
func NormalizeFKAction(action string) (string, error) {
	if action == "" {
		return "", nil
	}
	upper := strings.ToUpper(strings.TrimSpace(action))
	if !validFKActions[upper] {
		return "", verr.New(verr.ErrInvalidAction,
			fmt.Sprintf("invalid foreign key action %q; must be one of: CASCADE, SET NULL, SET DEFAULT, RESTRICT, NO ACTION", action))
	}
	return upper, nil
}

// -----------------------------------------------------------------------------
// TableDef - complete table definition
// -----------------------------------------------------------------------------

// TableDef represents a complete table definition with columns, indexes, and
// constraints. It is built fresh from entity metadata on every reconciliation
// and never persisted.
type TableDef struct {
	Name        string           // Table name (snake_case)
	Columns     []*ColumnDef     // Column definitions in order
	PrimaryKey  []string         // Primary key column names in order; may be empty
	Indexes     []*IndexDef      // Unique and secondary indexes
	ForeignKeys []*ForeignKeyDef // Foreign key constraints
}

// GetColumn returns the column with the given name, or nil if not found.
func (t *TableDef) GetColumn(name string) *ColumnDef {
	for _, col := range t.Columns {
		if col.Name == name {
			return col
		}
	}
	return nil
}

// HasColumn returns true if the table has a column with the given name.
func (t *TableDef) HasColumn(name string) bool {
	return t.GetColumn(name) != nil
}

// GetIndex returns the index with the given name, or nil if not found.
func (t *TableDef) GetIndex(name string) *IndexDef {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx
		}
	}
	return nil
}

// GetForeignKey returns the foreign key with the given name, or nil if not found.
func (t *TableDef) GetForeignKey(name string) *ForeignKeyDef {
	for _, fk := range t.ForeignKeys {
		if fk.Name == name {
			return fk
		}
	}
	return nil
}

// ColumnNames returns the names of all columns in definition order.
func (t *TableDef) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// checkDuplicateColumns returns an error if any column name appears more than once.
func (t *TableDef) checkDuplicateColumns() error {
	seen := make(map[string]bool)
	for _, col := range t.Columns {
		if seen[col.Name] {
			return verr.New(verr.ErrMetadataInvalid, "duplicate column name").
				WithTable(t.Name).
				WithColumn(col.Name)
		}
		seen[col.Name] = true
	}
	return nil
}

// checkDuplicateIndexes returns an error if any index name appears more than once.
func (t *TableDef) checkDuplicateIndexes() error {
	seen := make(map[string]bool)
	for _, idx := range t.Indexes {
		if seen[idx.Name] {
			return verr.New(verr.ErrDuplicateIndex, "duplicate index name").
				WithTable(t.Name).
				With("index", idx.Name)
		}
		seen[idx.Name] = true
	}
	return nil
}

// Validate checks that the table definition is well-formed: identifiers are
// safe, no duplicate column or index names, every column referenced by the
// primary key, an index, or a foreign key exists, and FK actions are inside
// the closed vocabulary. Unknown references carry a did-you-mean suggestion.
func (t *TableDef) Validate() error {
	if t.Name == "" {
		return verr.New(verr.ErrMetadataInvalid, msgTableNameRequired)
	}
	if err := ValidateIdentifier(t.Name); err != nil {
		return err
	}
	if len(t.Columns) == 0 {
		return verr.New(verr.ErrMetadataInvalid, msgTableNeedsColumn).
			WithTable(t.Name)
	}
	if err := t.checkDuplicateColumns(); err != nil {
		return err
	}
	for _, col := range t.Columns {
		if err := col.Validate(); err != nil {
			return verr.Wrap(verr.ErrMetadataInvalid, err, "invalid column").
				WithTable(t.Name).
				WithColumn(col.Name)
		}
	}
	for _, name := range t.PrimaryKey {
		if err := t.requireColumn(name, "primary key"); err != nil {
			return err
		}
	}
	if err := t.checkDuplicateIndexes(); err != nil {
		return err
	}
	for _, idx := range t.Indexes {
		if err := idx.Validate(); err != nil {
			return verr.Wrap(verr.ErrMetadataInvalid, err, "invalid index").
				WithTable(t.Name)
		}
		for _, col := range idx.Columns {
			if err := t.requireColumn(col, "index "+idx.Name); err != nil {
				return err
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		if err := fk.Validate(); err != nil {
			return verr.Wrap(verr.ErrMetadataInvalid, err, "invalid foreign key").
				WithTable(t.Name)
		}
		for _, col := range fk.Columns {
			if err := t.requireColumn(col, "foreign key "+fk.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// requireColumn fails with an ErrUnknownField when name is not a column of the
// table, attaching a fuzzy suggestion when one exists.
func (t *TableDef) requireColumn(name, where string) error {
	if t.HasColumn(name) {
		return nil
	}
	e := verr.Newf(verr.ErrUnknownField, "%s references unknown field", where).
		WithTable(t.Name).
		WithColumn(name)
	if hint := verr.SuggestSimilar(name, t.ColumnNames()); hint != "" {
		e.WithHelp(hint)
	}
	return e
}

// SortedIndexes returns the indexes sorted by name for deterministic output.
func (t *TableDef) SortedIndexes() []*IndexDef {
	sorted := slices.Clone(t.Indexes)
	slices.SortFunc(sorted, func(a, b *IndexDef) int {
		return strings.Compare(a.Name, b.Name)
	})
	return sorted
}

// SortedForeignKeys returns the foreign keys sorted by name for deterministic output.
func (t *TableDef) SortedForeignKeys() []*ForeignKeyDef {
	sorted := slices.Clone(t.ForeignKeys)
	slices.SortFunc(sorted, func(a, b *ForeignKeyDef) int {
		return strings.Compare(a.Name, b.Name)
	})
	return sorted
}

// -----------------------------------------------------------------------------
// ColumnDef - complete column definition
// -----------------------------------------------------------------------------

// ColumnDef represents a column with its storage type tag and options.
// Type tags are the entity-metadata vocabulary (integer, string, text, float,
// decimal, boolean, date, date_time, uuid, json); dialects map them to SQL.
type ColumnDef struct {
	Name   string // Column name (snake_case)
	Type   string // Storage type tag
	Length int    // Length for bounded string types (0 = dialect default)

	Nullable bool // True if column allows NULL (default is NOT NULL)
	Unique   bool // Column-level UNIQUE constraint

	// Default values. Default holds a declared Go value; ServerDefault holds a
	// raw SQL expression as reported by introspection. Absence of both means
	// the column has no default.
	Default       any
	DefaultSet    bool
	ServerDefault string
}

// Validate checks that the column definition is well-formed.
func (c *ColumnDef) Validate() error {
	if c.Name == "" {
		return verr.New(verr.ErrMetadataInvalid, msgColumnNameRequired)
	}
	if err := ValidateIdentifier(c.Name); err != nil {
		return err
	}
	if c.Type == "" {
		return verr.New(verr.ErrMetadataInvalid, "column type is required").
			WithColumn(c.Name)
	}
	return nil
}

// HasDefault returns true if any default value is set.
func (c *ColumnDef) HasDefault() bool {
	return c.ServerDefault != "" || (c.DefaultSet && c.Default != nil)
}

// -----------------------------------------------------------------------------
// IndexDef - index definition
// -----------------------------------------------------------------------------

// IndexDef represents a unique or secondary index.
type IndexDef struct {
	Name    string   // Index name
	Columns []string // Columns to index (in order)
	Unique  bool     // UNIQUE index
}

// Validate checks that the index definition is well-formed.
func (i *IndexDef) Validate() error {
	if i.Name == "" {
		return verr.New(verr.ErrMetadataInvalid, "index name is required")
	}
	if err := ValidateIdentifier(i.Name); err != nil {
		return err
	}
	if len(i.Columns) == 0 {
		return verr.New(verr.ErrMetadataInvalid, msgIndexNeedsColumn)
	}
	for _, col := range i.Columns {
		if err := ValidateIdentifier(col); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// ForeignKeyDef - foreign key constraint definition
// -----------------------------------------------------------------------------

// ForeignKeyDef represents a foreign key constraint. OnDelete and OnUpdate are
// normalized uppercase actions; the empty string means no action was declared
// and the database default applies.
type ForeignKeyDef struct {
	Name       string   // Constraint name (auto-generated if empty)
	Columns    []string // Local columns
	RefTable   string   // Referenced table
	RefColumns []string // Referenced columns (usually just "id")
	OnDelete   string   // CASCADE, SET NULL, SET DEFAULT, RESTRICT, NO ACTION or ""
	OnUpdate   string   // Same vocabulary as OnDelete
}

// Validate checks that the foreign key definition is well-formed.
func (fk *ForeignKeyDef) Validate() error {
	if len(fk.Columns) == 0 {
		return verr.New(verr.ErrMetadataInvalid, msgFKNeedsColumn)
	}
	for _, col := range fk.Columns {
		if err := ValidateIdentifier(col); err != nil {
			return err
		}
	}
	if fk.RefTable == "" {
		return verr.New(verr.ErrMetadataInvalid, msgFKNeedsRefTable)
	}
	if err := ValidateIdentifier(fk.RefTable); err != nil {
		return err
	}
	if len(fk.RefColumns) == 0 {
		return verr.New(verr.ErrMetadataInvalid, msgFKNeedsRefColumn)
	}
	for _, col := range fk.RefColumns {
		if err := ValidateIdentifier(col); err != nil {
			return err
		}
	}
	if len(fk.Columns) != len(fk.RefColumns) {
		return verr.New(verr.ErrMetadataInvalid, msgFKColumnCountMatch).
			With("columns", len(fk.Columns)).
			With("ref_columns", len(fk.RefColumns))
	}
	if _, err := NormalizeFKAction(fk.OnDelete); err != nil {
		return err
	}
	if _, err := NormalizeFKAction(fk.OnUpdate); err != nil {
		return err
	}
	return nil
}
