// Package sqlgen provides dialect-agnostic SQL building helpers to reduce string concatenation.
package sqlgen

import (
	"sort"
	"strconv"
	"strings"
)

// Dialect represents a supported SQL database dialect.
type Dialect int

const (
	// Postgres represents PostgreSQL dialect.
	Postgres Dialect = iota
	// SQLite represents SQLite dialect.
	SQLite
)

// String returns the string representation of the dialect.
func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// Builder provides fluent SQL construction with dialect awareness.
type Builder struct {
	dialect Dialect
	buf     strings.Builder
}

// New creates a new Builder for the specified dialect.
func New(dialect Dialect) *Builder {
	return &Builder{
		dialect: dialect,
	}
}

// Dialect returns the dialect of this builder.
func (b *Builder) Dialect() Dialect {
	return b.dialect
}

// InsertInto appends "INSERT INTO <table> (<cols>)" to the buffer.
func (b *Builder) InsertInto(table string, cols ...string) *Builder {
	b.buf.WriteString("INSERT INTO ")
	b.buf.WriteString(QuoteIdent(b.dialect, table))
	b.buf.WriteString(" (")
	for i, col := range cols {
		if i > 0 {
			b.buf.WriteString(", ")
		}
		b.buf.WriteString(QuoteIdent(b.dialect, col))
	}
	b.buf.WriteString(")")
	return b
}

// Values appends " VALUES (<placeholders>)" for n values.
func (b *Builder) Values(n int) *Builder {
	b.buf.WriteString(" VALUES (")
	b.buf.WriteString(Placeholders(b.dialect, n))
	b.buf.WriteString(")")
	return b
}

// Update appends "UPDATE <table>" to the buffer.
func (b *Builder) Update(table string) *Builder {
	b.buf.WriteString("UPDATE ")
	b.buf.WriteString(QuoteIdent(b.dialect, table))
	return b
}

// Set appends " SET col = <ph>, ..." using placeholders starting at start (1-based).
func (b *Builder) Set(start int, cols ...string) *Builder {
	b.buf.WriteString(" SET ")
	for i, col := range cols {
		if i > 0 {
			b.buf.WriteString(", ")
		}
		b.buf.WriteString(QuoteIdent(b.dialect, col))
		b.buf.WriteString(" = ")
		b.buf.WriteString(placeholder(b.dialect, start+i))
	}
	return b
}

// Where appends " WHERE col = <ph> AND ..." using placeholders starting at start (1-based).
func (b *Builder) Where(start int, cols ...string) *Builder {
	b.buf.WriteString(" WHERE ")
	for i, col := range cols {
		if i > 0 {
			b.buf.WriteString(" AND ")
		}
		b.buf.WriteString(QuoteIdent(b.dialect, col))
		b.buf.WriteString(" = ")
		b.buf.WriteString(placeholder(b.dialect, start+i))
	}
	return b
}

// Raw appends raw SQL to the buffer without any modification.
func (b *Builder) Raw(sql string) *Builder {
	b.buf.WriteString(sql)
	return b
}

// String returns the accumulated SQL string.
func (b *Builder) String() string {
	return b.buf.String()
}

// Reset clears the buffer so the builder can be reused.
func (b *Builder) Reset() *Builder {
	b.buf.Reset()
	return b
}

// ----------------------------------------------------------------------------
// Statement helpers
// ----------------------------------------------------------------------------

// SortedKeys returns the keys of a value map in sorted order so generated
// statements are deterministic regardless of map iteration order.
func SortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InsertSQL builds a single-row INSERT statement with its ordered arguments.
func InsertSQL(dialect Dialect, table string, values map[string]any) (string, []any) {
	cols := SortedKeys(values)
	args := make([]any, len(cols))
	for i, col := range cols {
		args[i] = values[col]
	}
	sql := New(dialect).InsertInto(table, cols...).Values(len(cols)).String()
	return sql, args
}

// UpdateSQL builds an UPDATE statement with an equality WHERE filter and its
// ordered arguments. An empty where map updates every row.
func UpdateSQL(dialect Dialect, table string, values, where map[string]any) (string, []any) {
	setCols := SortedKeys(values)
	whereCols := SortedKeys(where)

	args := make([]any, 0, len(setCols)+len(whereCols))
	for _, col := range setCols {
		args = append(args, values[col])
	}
	for _, col := range whereCols {
		args = append(args, where[col])
	}

	b := New(dialect).Update(table).Set(1, setCols...)
	if len(whereCols) > 0 {
		b.Where(1+len(setCols), whereCols...)
	}
	return b.String(), args
}

// ----------------------------------------------------------------------------
// Standalone Helpers
// ----------------------------------------------------------------------------

// QuoteIdent returns the identifier quoted according to the dialect.
// PostgreSQL and SQLite use double quotes: "name"
func QuoteIdent(dialect Dialect, s string) string {
	escaped := strings.ReplaceAll(s, `"`, `""`)
	return `"` + escaped + `"`
}

// Placeholders returns a comma-separated list of placeholders for the given count.
// PostgreSQL uses numbered placeholders: $1, $2, $3
// SQLite uses question marks: ?, ?, ?
func Placeholders(dialect Dialect, n int) string {
	if n <= 0 {
		return ""
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = placeholder(dialect, i+1)
	}
	return strings.Join(parts, ", ")
}

func placeholder(dialect Dialect, index int) string {
	if dialect == SQLite {
		return "?"
	}
	return "$" + strconv.Itoa(index)
}
