package introspect

import (
	"database/sql"
	"strings"
)

// TypeMapping is the result of parsing a raw SQL type back into the
// portable type vocabulary used by schema definitions.
type TypeMapping struct {
	Type   string
	Length int
}

// MapPostgresType converts a PostgreSQL catalog type to a portable type.
func MapPostgresType(sqlType string, maxLen, precision, scale sql.NullInt64) TypeMapping {
	upper := strings.ToUpper(sqlType)

	switch {
	case upper == "UUID":
		return TypeMapping{Type: "uuid"}

	case strings.HasPrefix(upper, "CHARACTER VARYING"), strings.HasPrefix(upper, "VARCHAR"):
		if maxLen.Valid && maxLen.Int64 > 0 {
			return TypeMapping{Type: "string", Length: int(maxLen.Int64)}
		}
		return TypeMapping{Type: "string", Length: 255}

	case upper == "TEXT":
		return TypeMapping{Type: "text"}

	case upper == "INTEGER", upper == "INT", upper == "INT4", upper == "SMALLINT", upper == "INT2":
		return TypeMapping{Type: "integer"}

	case upper == "BIGINT", upper == "INT8":
		return TypeMapping{Type: "bigint"}

	case upper == "REAL", upper == "FLOAT4", upper == "DOUBLE PRECISION", upper == "FLOAT8":
		return TypeMapping{Type: "float"}

	case strings.HasPrefix(upper, "NUMERIC"), strings.HasPrefix(upper, "DECIMAL"):
		return TypeMapping{Type: "decimal"}

	case upper == "BOOLEAN", upper == "BOOL":
		return TypeMapping{Type: "boolean"}

	case upper == "DATE":
		return TypeMapping{Type: "date"}

	case upper == "TIME", upper == "TIME WITHOUT TIME ZONE":
		return TypeMapping{Type: "time"}

	case strings.HasPrefix(upper, "TIMESTAMP"):
		return TypeMapping{Type: "date_time"}

	case upper == "JSONB", upper == "JSON":
		return TypeMapping{Type: "json"}

	case upper == "BYTEA":
		return TypeMapping{Type: "blob"}

	default:
		// User-defined types appear under their own name; fold to text.
		return TypeMapping{Type: "text"}
	}
}

// MapSQLiteType converts a declared SQLite type to a portable type.
// SQLite uses type affinity, so the declared type is the best signal
// available; precision and length are not preserved.
func MapSQLiteType(sqlType string) TypeMapping {
	upper := strings.ToUpper(sqlType)

	switch {
	case upper == "TEXT":
		return TypeMapping{Type: "text"}

	case upper == "INTEGER", upper == "INT":
		return TypeMapping{Type: "integer"}

	case upper == "REAL", upper == "FLOAT", upper == "DOUBLE":
		return TypeMapping{Type: "float"}

	case upper == "BLOB":
		return TypeMapping{Type: "blob"}

	case upper == "NUMERIC", upper == "DECIMAL":
		return TypeMapping{Type: "decimal"}

	case upper == "DATETIME", upper == "TIMESTAMP":
		return TypeMapping{Type: "date_time"}

	case upper == "DATE":
		return TypeMapping{Type: "date"}

	case upper == "TIME":
		return TypeMapping{Type: "time"}

	case upper == "BOOLEAN", upper == "BOOL":
		return TypeMapping{Type: "boolean"}

	case strings.HasPrefix(upper, "VARCHAR"), strings.HasPrefix(upper, "CHARACTER"):
		return TypeMapping{Type: "string"}

	default:
		return TypeMapping{Type: "text"}
	}
}
