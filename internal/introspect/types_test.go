package introspect

import (
	"database/sql"
	"testing"
)

func TestMapPostgresType(t *testing.T) {
	nullInt := func(v int64) sql.NullInt64 { return sql.NullInt64{Int64: v, Valid: true} }
	none := sql.NullInt64{}

	tests := []struct {
		sqlType string
		maxLen  sql.NullInt64
		want    TypeMapping
	}{
		{"character varying", nullInt(80), TypeMapping{Type: "string", Length: 80}},
		{"character varying", none, TypeMapping{Type: "string", Length: 255}},
		{"text", none, TypeMapping{Type: "text"}},
		{"integer", none, TypeMapping{Type: "integer"}},
		{"smallint", none, TypeMapping{Type: "integer"}},
		{"bigint", none, TypeMapping{Type: "bigint"}},
		{"double precision", none, TypeMapping{Type: "float"}},
		{"numeric", none, TypeMapping{Type: "decimal"}},
		{"boolean", none, TypeMapping{Type: "boolean"}},
		{"timestamp with time zone", none, TypeMapping{Type: "date_time"}},
		{"timestamp without time zone", none, TypeMapping{Type: "date_time"}},
		{"uuid", none, TypeMapping{Type: "uuid"}},
		{"jsonb", none, TypeMapping{Type: "json"}},
		{"bytea", none, TypeMapping{Type: "blob"}},
		{"my_enum_type", none, TypeMapping{Type: "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.sqlType, func(t *testing.T) {
			got := MapPostgresType(tt.sqlType, tt.maxLen, none, none)
			if got != tt.want {
				t.Errorf("MapPostgresType(%q) = %+v, want %+v", tt.sqlType, got, tt.want)
			}
		})
	}
}

func TestMapSQLiteType(t *testing.T) {
	tests := []struct {
		sqlType string
		want    string
	}{
		{"TEXT", "text"},
		{"INTEGER", "integer"},
		{"REAL", "float"},
		{"BLOB", "blob"},
		{"NUMERIC", "decimal"},
		{"DATETIME", "date_time"},
		{"DATE", "date"},
		{"TIME", "time"},
		{"BOOLEAN", "boolean"},
		{"VARCHAR(80)", "string"},
		{"weird", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.sqlType, func(t *testing.T) {
			if got := MapSQLiteType(tt.sqlType); got.Type != tt.want {
				t.Errorf("MapSQLiteType(%q) = %q, want %q", tt.sqlType, got.Type, tt.want)
			}
		})
	}
}
