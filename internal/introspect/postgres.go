package introspect

import (
	"context"
	"database/sql"
	"strings"

	"github.com/veldtdb/veldt/internal/dialect"
	"github.com/veldtdb/veldt/internal/schema"
	"github.com/veldtdb/veldt/internal/verr"
)

type postgresIntrospector struct {
	db      *sql.DB
	dialect dialect.Dialect
}

func (p *postgresIntrospector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT tablename FROM pg_tables
		WHERE schemaname = current_schema()
		ORDER BY tablename
	`

	rows, err := p.db.QueryContext(ctx, query)
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

func (p *postgresIntrospector) IntrospectTable(ctx context.Context, tableName string) (*schema.TableDef, error) {
	return introspectTableCommon(ctx, tableName, p, p, p)
}

func (p *postgresIntrospector) introspectColumns(ctx context.Context, tableName string) ([]*schema.ColumnDef, []string, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.column_default,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			COALESCE(pk.position, 0) AS pk_position
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT kcu.column_name, kcu.ordinal_position AS position
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON tc.constraint_name = kcu.constraint_name
				AND tc.table_schema = kcu.table_schema
			WHERE tc.table_name = $1
				AND tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_schema = current_schema()
		) pk ON c.column_name = pk.column_name
		WHERE c.table_schema = current_schema()
			AND c.table_name = $1
		ORDER BY c.ordinal_position
	`

	rows, err := p.db.QueryContext(ctx, query, tableName)
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
		var raw RawColumn
		var isNullable string
		var pkPos int

		err := rows.Scan(
			&raw.Name,
			&raw.DataType,
			&isNullable,
			&raw.Default,
			&raw.MaxLength,
			&raw.Precision,
			&raw.Scale,
			&pkPos,
		)
		if err != nil {
			return nil, nil, verr.WrapSQL(err, "scan column", tableName)
		}

		mapping := MapPostgresType(raw.DataType, raw.MaxLength, raw.Precision, raw.Scale)

		col := &schema.ColumnDef{
			Name:     raw.Name,
			Type:     mapping.Type,
			Length:   mapping.Length,
			Nullable: isNullable == "YES" && pkPos == 0,
		}
		if raw.Default.Valid {
			col.DefaultSet = true
			col.ServerDefault = raw.Default.String
		}

		columns = append(columns, col)
		if pkPos > 0 {
			pkEntries = append(pkEntries, pkEntry{pos: pkPos, name: raw.Name})
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

func (p *postgresIntrospector) introspectIndexes(ctx context.Context, tableName string) ([]*schema.IndexDef, error) {
	query := `
		SELECT
			i.relname AS index_name,
			ix.indisunique AS is_unique,
			array_to_string(array_agg(a.attname ORDER BY x.n), ',') AS columns
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS x(attnum, n) ON TRUE
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = x.attnum
		WHERE t.relname = $1
			AND t.relnamespace = (SELECT oid FROM pg_namespace WHERE nspname = current_schema())
			AND NOT ix.indisprimary
		GROUP BY i.relname, ix.indisunique
		ORDER BY i.relname
	`

	rows, err := p.db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, verr.WrapSQL(err, "introspect indexes", tableName)
	}
	defer rows.Close()

	var indexes []*schema.IndexDef
	for rows.Next() {
		var name string
		var unique bool
		var columnsStr string

		if err := rows.Scan(&name, &unique, &columnsStr); err != nil {
			return nil, verr.WrapSQL(err, "scan index", tableName)
		}

		indexes = append(indexes, &schema.IndexDef{
			Name:    name,
			Columns: strings.Split(columnsStr, ","),
			Unique:  unique,
		})
	}

	return indexes, rows.Err()
}

// introspectForeignKeys reads pg_constraint directly. The
// information_schema column-usage views cross-product local and
// referenced columns for composite keys; unnesting conkey and confkey
// with a shared ordinality keeps the column pairs aligned.
func (p *postgresIntrospector) introspectForeignKeys(ctx context.Context, tableName string) ([]*schema.ForeignKeyDef, error) {
	query := `
		SELECT
			con.conname,
			att.attname,
			ref.relname,
			fatt.attname,
			con.confdeltype,
			con.confupdtype
		FROM pg_constraint con
		JOIN pg_class tbl ON tbl.oid = con.conrelid
		JOIN pg_namespace ns ON ns.oid = tbl.relnamespace
		JOIN pg_class ref ON ref.oid = con.confrelid
		JOIN LATERAL unnest(con.conkey) WITH ORDINALITY AS src(attnum, ord) ON true
		JOIN pg_attribute att
			ON att.attrelid = con.conrelid AND att.attnum = src.attnum
		JOIN LATERAL unnest(con.confkey) WITH ORDINALITY AS dst(attnum, ord)
			ON dst.ord = src.ord
		JOIN pg_attribute fatt
			ON fatt.attrelid = con.confrelid AND fatt.attnum = dst.attnum
		WHERE con.contype = 'f'
			AND tbl.relname = $1
			AND ns.nspname = current_schema()
		ORDER BY con.conname, src.ord
	`

	rows, err := p.db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, verr.WrapSQL(err, "introspect foreign keys", tableName)
	}
	defer rows.Close()

	acc := NewFKAccumulator()
	for rows.Next() {
		var name, column, refTable, refColumn, deleteCode, updateCode string

		if err := rows.Scan(&name, &column, &refTable, &refColumn, &deleteCode, &updateCode); err != nil {
			return nil, verr.WrapSQL(err, "scan foreign key", tableName)
		}

		acc.Add(name, column, refTable, refColumn,
			refActionFromCode(deleteCode), refActionFromCode(updateCode))
	}

	return acc.Values(), rows.Err()
}

// refActionFromCode maps a pg_constraint action code to its SQL
// spelling. The 'a' (no action) code maps to the empty action, matching
// normalizeAction's treatment of the engine default.
func refActionFromCode(code string) string {
	switch code {
	case "c":
		return "CASCADE"
	case "n":
		return "SET NULL"
	case "d":
		return "SET DEFAULT"
	case "r":
		return "RESTRICT"
	default:
		return ""
	}
}

func (p *postgresIntrospector) TableExists(ctx context.Context, tableName string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pg_tables
			WHERE schemaname = current_schema() AND tablename = $1
		)
	`, tableName).Scan(&exists)

	if err != nil {
		return false, verr.WrapSQL(err, "check table existence", tableName)
	}
	return true, nil
}
