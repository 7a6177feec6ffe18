// Package diff compares a live table definition against a target
// definition and produces the DDL statements that reconcile them.
// Comparing identical definitions yields an empty diff, so applying a
// plan twice is a no-op.
package diff

import (
	"sort"
	"strings"

	"github.com/veldtdb/veldt/internal/dialect"
	"github.com/veldtdb/veldt/internal/schema"
)

// TableDiff describes the changes needed to turn a live table into the
// target table. Slices are sorted by name for deterministic output.
type TableDiff struct {
	Table string

	AddedColumns   []*schema.ColumnDef
	DroppedColumns []string
	AlteredColumns []*schema.ColumnDef

	AddedIndexes   []*schema.IndexDef
	DroppedIndexes []string

	AddedForeignKeys   []*schema.ForeignKeyDef
	DroppedForeignKeys []string

	LiveFingerprint   string
	TargetFingerprint string
}

// Empty reports whether the live table already matches the target.
func (d *TableDiff) Empty() bool {
	return len(d.AddedColumns) == 0 &&
		len(d.DroppedColumns) == 0 &&
		len(d.AlteredColumns) == 0 &&
		len(d.AddedIndexes) == 0 &&
		len(d.DroppedIndexes) == 0 &&
		len(d.AddedForeignKeys) == 0 &&
		len(d.DroppedForeignKeys) == 0
}

// Compute diffs a live table against a target table. The dialect is
// needed to compare column types: the portable type vocabulary is wider
// than what some databases store (SQLite folds string into TEXT), so
// two columns are equal when they render to the same SQL type.
func Compute(d dialect.Dialect, live, target *schema.TableDef) *TableDiff {
	diff := &TableDiff{
		Table:             target.Name,
		LiveFingerprint:   TableFingerprint(d, live),
		TargetFingerprint: TableFingerprint(d, target),
	}
	if diff.LiveFingerprint == diff.TargetFingerprint {
		return diff
	}

	liveCols := make(map[string]*schema.ColumnDef, len(live.Columns))
	for _, col := range live.Columns {
		liveCols[col.Name] = col
	}
	targetCols := make(map[string]*schema.ColumnDef, len(target.Columns))
	for _, col := range target.Columns {
		targetCols[col.Name] = col
	}

	for _, col := range target.Columns {
		liveCol, ok := liveCols[col.Name]
		if !ok {
			diff.AddedColumns = append(diff.AddedColumns, col)
			continue
		}
		if !columnsEqual(d, liveCol, col) {
			diff.AlteredColumns = append(diff.AlteredColumns, col)
		}
	}
	for _, col := range live.Columns {
		if _, ok := targetCols[col.Name]; !ok {
			diff.DroppedColumns = append(diff.DroppedColumns, col.Name)
		}
	}

	liveIdx := make(map[string]*schema.IndexDef, len(live.Indexes))
	for _, idx := range live.Indexes {
		liveIdx[idx.Name] = idx
	}
	targetIdx := make(map[string]*schema.IndexDef, len(target.Indexes))
	for _, idx := range target.Indexes {
		targetIdx[idx.Name] = idx
	}

	for _, idx := range target.Indexes {
		liveI, ok := liveIdx[idx.Name]
		if !ok {
			diff.AddedIndexes = append(diff.AddedIndexes, idx)
			continue
		}
		if !indexesEqual(liveI, idx) {
			// Indexes cannot be altered in place; recreate.
			diff.DroppedIndexes = append(diff.DroppedIndexes, idx.Name)
			diff.AddedIndexes = append(diff.AddedIndexes, idx)
		}
	}
	for _, idx := range live.Indexes {
		if _, ok := targetIdx[idx.Name]; !ok {
			diff.DroppedIndexes = append(diff.DroppedIndexes, idx.Name)
		}
	}

	// Foreign keys match structurally, not by name: SQLite reports
	// synthesized constraint names, so name equality would force a
	// drop-and-recreate on every run.
	liveFKs := make(map[string]*schema.ForeignKeyDef, len(live.ForeignKeys))
	for _, fk := range live.ForeignKeys {
		liveFKs[fkKey(fk)] = fk
	}
	targetFKs := make(map[string]*schema.ForeignKeyDef, len(target.ForeignKeys))
	for _, fk := range target.ForeignKeys {
		targetFKs[fkKey(fk)] = fk
	}

	for _, fk := range target.ForeignKeys {
		liveFK, ok := liveFKs[fkKey(fk)]
		if !ok {
			diff.AddedForeignKeys = append(diff.AddedForeignKeys, fk)
			continue
		}
		if !foreignKeysEqual(liveFK, fk) {
			// Changed actions: recreate, dropping by the live name.
			diff.DroppedForeignKeys = append(diff.DroppedForeignKeys, liveFK.Name)
			diff.AddedForeignKeys = append(diff.AddedForeignKeys, fk)
		}
	}
	for _, fk := range live.ForeignKeys {
		if _, ok := targetFKs[fkKey(fk)]; !ok {
			diff.DroppedForeignKeys = append(diff.DroppedForeignKeys, fk.Name)
		}
	}

	sortDiff(diff)
	return diff
}

func sortDiff(d *TableDiff) {
	sort.Slice(d.AddedColumns, func(i, j int) bool { return d.AddedColumns[i].Name < d.AddedColumns[j].Name })
	sort.Slice(d.AlteredColumns, func(i, j int) bool { return d.AlteredColumns[i].Name < d.AlteredColumns[j].Name })
	sort.Strings(d.DroppedColumns)
	sort.Slice(d.AddedIndexes, func(i, j int) bool { return d.AddedIndexes[i].Name < d.AddedIndexes[j].Name })
	sort.Strings(d.DroppedIndexes)
	sort.Slice(d.AddedForeignKeys, func(i, j int) bool { return d.AddedForeignKeys[i].Name < d.AddedForeignKeys[j].Name })
	sort.Strings(d.DroppedForeignKeys)
}

// columnsEqual compares the properties a column migration can change.
// Defaults introspect back in engine-specific spellings (postgres casts,
// quoted literals), so they are excluded to avoid perpetual alters.
func columnsEqual(d dialect.Dialect, live, target *schema.ColumnDef) bool {
	if d.ColumnTypeSQL(live) != d.ColumnTypeSQL(target) {
		return false
	}
	return live.Nullable == target.Nullable
}

func indexesEqual(a, b *schema.IndexDef) bool {
	if a.Unique != b.Unique || len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	return true
}

// fkKey identifies a foreign key by its shape: local columns, referenced
// table and referenced columns.
func fkKey(fk *schema.ForeignKeyDef) string {
	return strings.Join(fk.Columns, ",") + "->" + fk.RefTable + "(" + strings.Join(fk.RefColumns, ",") + ")"
}

func foreignKeysEqual(a, b *schema.ForeignKeyDef) bool {
	if a.RefTable != b.RefTable || a.OnDelete != b.OnDelete || a.OnUpdate != b.OnUpdate {
		return false
	}
	if len(a.Columns) != len(b.Columns) || len(a.RefColumns) != len(b.RefColumns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	for i := range a.RefColumns {
		if a.RefColumns[i] != b.RefColumns[i] {
			return false
		}
	}
	return true
}

// Statements renders the diff as ordered DDL. Constraints drop before
// the structures they depend on and are re-added after columns settle:
// drop FKs, drop indexes, drop columns, alter columns, add columns,
// add indexes, add FKs.
func (diff *TableDiff) Statements(d dialect.Dialect) ([]string, error) {
	var stmts []string

	for _, name := range diff.DroppedForeignKeys {
		sql, err := d.DropForeignKeySQL(diff.Table, name)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, sql)
	}
	for _, name := range diff.DroppedIndexes {
		sql, err := d.DropIndexSQL(name)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, sql)
	}
	for _, name := range diff.DroppedColumns {
		sql, err := d.DropColumnSQL(diff.Table, name)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, sql)
	}
	for _, col := range diff.AlteredColumns {
		alters, err := d.AlterColumnSQL(diff.Table, col)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, alters...)
	}
	for _, col := range diff.AddedColumns {
		sql, err := d.AddColumnSQL(diff.Table, col)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, sql)
	}
	for _, idx := range diff.AddedIndexes {
		sql, err := d.CreateIndexSQL(diff.Table, idx)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, sql)
	}
	for _, fk := range diff.AddedForeignKeys {
		sql, err := d.AddForeignKeySQL(diff.Table, fk)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, sql)
	}

	return stmts, nil
}

// CreateStatements renders the DDL for a table that does not exist yet:
// CREATE TABLE followed by one CREATE INDEX per declared index.
func CreateStatements(d dialect.Dialect, target *schema.TableDef) ([]string, error) {
	createSQL, err := d.CreateTableSQL(target)
	if err != nil {
		return nil, err
	}
	stmts := []string{createSQL}

	for _, idx := range target.SortedIndexes() {
		sql, err := d.CreateIndexSQL(target.Name, idx)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, sql)
	}

	return stmts, nil
}
