package introspect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/veldtdb/veldt/internal/dialect"
	"github.com/veldtdb/veldt/internal/schema"
	"github.com/veldtdb/veldt/internal/verr"
)

type sqliteIntrospector struct {
	db      *sql.DB
	dialect dialect.Dialect
}

func (s *sqliteIntrospector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, verr.WrapSQL(err, "list tables", "")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, verr.WrapSQL(err, "scan table name", "")
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

func (s *sqliteIntrospector) IntrospectTable(ctx context.Context, tableName string) (*schema.TableDef, error) {
	return introspectTableCommon(ctx, tableName, s, s, s)
}

func (s *sqliteIntrospector) introspectColumns(ctx context.Context, tableName string) ([]*schema.ColumnDef, []string, error) {
	// PRAGMA table_info returns: cid, name, type, notnull, dflt_value, pk.
	// pk is the 1-based position within the primary key, 0 for non-PK.
	query := fmt.Sprintf("PRAGMA table_info(%s)", s.dialect.QuoteIdent(tableName))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, verr.WrapSQL(err, "introspect columns", tableName)
	}
	defer rows.Close()

	var columns []*schema.ColumnDef
	type pkEntry struct {
		pos  int
		name string
	}
	var pkEntries []pkEntry

	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull, pk int
		var defaultVal sql.NullString

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultVal, &pk); err != nil {
			return nil, nil, verr.WrapSQL(err, "scan column", tableName)
		}

		mapping := MapSQLiteType(dataType)

		col := &schema.ColumnDef{
			Name:     name,
			Type:     mapping.Type,
			Length:   mapping.Length,
			Nullable: notNull == 0 && pk == 0,
		}
		if defaultVal.Valid {
			col.DefaultSet = true
			col.ServerDefault = defaultVal.String
		}

		columns = append(columns, col)
		if pk > 0 {
			pkEntries = append(pkEntries, pkEntry{pos: pk, name: name})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, verr.WrapSQL(err, "iterate columns", tableName)
	}

	primaryKey := make([]string, len(pkEntries))
	for _, e := range pkEntries {
		primaryKey[e.pos-1] = e.name
	}

	return columns, primaryKey, nil
}

func (s *sqliteIntrospector) introspectIndexes(ctx context.Context, tableName string) ([]*schema.IndexDef, error) {
	// Collect all index names before issuing further queries; in-memory
	// databases with shared cache misbehave with interleaved statements.
	query := `
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, verr.WrapSQL(err, "introspect indexes", tableName)
	}

	var indexNames []string
	for rows.Next() {
		var indexName string
		if err := rows.Scan(&indexName); err != nil {
			rows.Close()
			return nil, verr.WrapSQL(err, "scan index", tableName)
		}
		indexNames = append(indexNames, indexName)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, verr.WrapSQL(err, "iterate indexes", tableName)
	}
	rows.Close()

	var indexes []*schema.IndexDef
	for _, indexName := range indexNames {
		idx, err := s.getIndexDetails(ctx, tableName, indexName)
		if err != nil {
			return nil, err
		}
		if idx != nil {
			indexes = append(indexes, idx)
		}
	}

	return indexes, nil
}

func (s *sqliteIntrospector) getIndexDetails(ctx context.Context, tableName, indexName string) (*schema.IndexDef, error) {
	unique := false
	listQuery := fmt.Sprintf("PRAGMA index_list(%s)", s.dialect.QuoteIdent(tableName))
	listRows, err := s.db.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, verr.WrapSQL(err, "get index list", tableName)
	}

	for listRows.Next() {
		var seq int
		var name string
		var isUnique int
		var origin, partial string

		// index_list returns: seq, name, unique, origin, partial
		if err := listRows.Scan(&seq, &name, &isUnique, &origin, &partial); err != nil {
			continue
		}
		if name == indexName {
			unique = isUnique == 1
			break
		}
	}
	listRows.Close()

	infoQuery := fmt.Sprintf("PRAGMA index_info(%s)", s.dialect.QuoteIdent(indexName))
	infoRows, err := s.db.QueryContext(ctx, infoQuery)
	if err != nil {
		return nil, verr.WrapSQL(err, "get index info", indexName)
	}
	defer infoRows.Close()

	var columns []string
	for infoRows.Next() {
		var seqno, cid int
		var colName string

		if err := infoRows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, verr.WrapSQL(err, "scan index column", indexName)
		}
		columns = append(columns, colName)
	}

	if len(columns) == 0 {
		return nil, nil
	}

	return &schema.IndexDef{
		Name:    indexName,
		Columns: columns,
		Unique:  unique,
	}, nil
}

func (s *sqliteIntrospector) introspectForeignKeys(ctx context.Context, tableName string) ([]*schema.ForeignKeyDef, error) {
	// PRAGMA foreign_key_list returns: id, seq, table, from, to, on_update, on_delete, match
	query := fmt.Sprintf("PRAGMA foreign_key_list(%s)", s.dialect.QuoteIdent(tableName))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, verr.WrapSQL(err, "introspect foreign keys", tableName)
	}
	defer rows.Close()

	acc := NewFKAccumulator()
	for rows.Next() {
		var id, seq int
		var refTable, from, to, onUpdate, onDelete, match string

		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, verr.WrapSQL(err, "scan foreign key", tableName)
		}

		// SQLite identifies FKs by numeric id only, so synthesize a name.
		name := fmt.Sprintf("fk_%s_%d", tableName, id)
		acc.Add(name, from, refTable, to, onDelete, onUpdate)
	}

	return acc.Values(), rows.Err()
}

func (s *sqliteIntrospector) TableExists(ctx context.Context, tableName string) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name = ?
	`, tableName).Scan(&name)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, verr.WrapSQL(err, "check table existence", tableName)
	}
	return true, nil
}
