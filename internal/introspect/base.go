package introspect

import (
	"context"
	"strings"

	"github.com/veldtdb/veldt/internal/schema"
)

type columnIntrospector interface {
	introspectColumns(ctx context.Context, tableName string) ([]*schema.ColumnDef, []string, error)
}

type indexIntrospector interface {
	introspectIndexes(ctx context.Context, tableName string) ([]*schema.IndexDef, error)
}

type foreignKeyIntrospector interface {
	introspectForeignKeys(ctx context.Context, tableName string) ([]*schema.ForeignKeyDef, error)
}

// introspectTableCommon is the shared implementation of IntrospectTable.
// It returns nil (no error) when the catalog reports zero columns, which
// both dialects use to signal that the table does not exist.
func introspectTableCommon(
	ctx context.Context,
	tableName string,
	cols columnIntrospector,
	idxs indexIntrospector,
	fks foreignKeyIntrospector,
) (*schema.TableDef, error) {
	columns, primaryKey, err := cols.introspectColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, nil
	}

	indexes, err := idxs.introspectIndexes(ctx, tableName)
	if err != nil {
		return nil, err
	}

	foreignKeys, err := fks.introspectForeignKeys(ctx, tableName)
	if err != nil {
		return nil, err
	}

	indexes = markUniqueColumnsAndFilterAutoIndexes(columns, indexes)

	return &schema.TableDef{
		Name:        tableName,
		Columns:     columns,
		PrimaryKey:  primaryKey,
		Indexes:     indexes,
		ForeignKeys: foreignKeys,
	}, nil
}

// markUniqueColumnsAndFilterAutoIndexes marks columns backed by a
// single-column unique index as Unique, and drops the auto-generated
// indexes SQLite creates for PRIMARY KEY and UNIQUE constraints.
func markUniqueColumnsAndFilterAutoIndexes(columns []*schema.ColumnDef, indexes []*schema.IndexDef) []*schema.IndexDef {
	colMap := make(map[string]*schema.ColumnDef, len(columns))
	for _, col := range columns {
		colMap[col.Name] = col
	}

	isConstraintIndex := make(map[string]bool)
	for _, idx := range indexes {
		if idx.Unique && len(idx.Columns) == 1 {
			if col, ok := colMap[idx.Columns[0]]; ok {
				col.Unique = true
				if strings.HasPrefix(idx.Name, "sqlite_autoindex_") {
					isConstraintIndex[idx.Name] = true
				}
			}
		}
	}

	filtered := make([]*schema.IndexDef, 0, len(indexes))
	for _, idx := range indexes {
		if !isConstraintIndex[idx.Name] {
			filtered = append(filtered, idx)
		}
	}
	return filtered
}

// FKAccumulator merges composite FK columns into single definitions.
// Catalogs return foreign key metadata row-by-row; rows sharing a name
// belong to one composite key.
type FKAccumulator struct {
	fks   map[string]*schema.ForeignKeyDef
	order []string
}

// NewFKAccumulator creates an empty FKAccumulator.
func NewFKAccumulator() *FKAccumulator {
	return &FKAccumulator{fks: make(map[string]*schema.ForeignKeyDef)}
}

// Add records one catalog row. Rows with a known name extend the
// existing key's column lists; new names start a new key.
func (a *FKAccumulator) Add(name, column, refTable, refColumn, onDelete, onUpdate string) {
	if fk, ok := a.fks[name]; ok {
		fk.Columns = append(fk.Columns, column)
		fk.RefColumns = append(fk.RefColumns, refColumn)
		return
	}
	a.fks[name] = &schema.ForeignKeyDef{
		Name:       name,
		Columns:    []string{column},
		RefTable:   refTable,
		RefColumns: []string{refColumn},
		OnDelete:   normalizeAction(onDelete),
		OnUpdate:   normalizeAction(onUpdate),
	}
	a.order = append(a.order, name)
}

// Values returns all accumulated foreign keys in insertion order.
func (a *FKAccumulator) Values() []*schema.ForeignKeyDef {
	result := make([]*schema.ForeignKeyDef, 0, len(a.order))
	for _, name := range a.order {
		result = append(result, a.fks[name])
	}
	return result
}
