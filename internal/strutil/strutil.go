// Package strutil provides the conventional names for generated SQL
// constraints and indexes.
package strutil

import "strings"

// IndexName builds the conventional name for a non-unique index: idx_table_col1_col2.
func IndexName(table string, cols ...string) string {
	return joinName("idx", table, cols)
}

// UniqueName builds the conventional name for a unique index: uniq_table_col1_col2.
func UniqueName(table string, cols ...string) string {
	return joinName("uniq", table, cols)
}

// ForeignKeyName builds the conventional name for a foreign key constraint:
// fk_table_col1_col2.
func ForeignKeyName(table string, cols ...string) string {
	return joinName("fk", table, cols)
}

func joinName(prefix, table string, cols []string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte('_')
	b.WriteString(table)
	for _, col := range cols {
		b.WriteByte('_')
		b.WriteString(col)
	}
	return b.String()
}
