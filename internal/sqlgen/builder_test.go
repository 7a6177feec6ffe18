package sqlgen

import (
	"reflect"
	"testing"
)

func TestInsertSQL(t *testing.T) {
	values := map[string]any{"name": "Ada", "id": 1}

	sql, args := InsertSQL(Postgres, "user", values)
	want := `INSERT INTO "user" ("id", "name") VALUES ($1, $2)`
	if sql != want {
		t.Errorf("InsertSQL postgres = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{1, "Ada"}) {
		t.Errorf("args = %v", args)
	}

	sql, _ = InsertSQL(SQLite, "user", values)
	want = `INSERT INTO "user" ("id", "name") VALUES (?, ?)`
	if sql != want {
		t.Errorf("InsertSQL sqlite = %q, want %q", sql, want)
	}
}

func TestUpdateSQL(t *testing.T) {
	sql, args := UpdateSQL(Postgres, "post",
		map[string]any{"title": "new", "body": "text"},
		map[string]any{"id": 7})

	want := `UPDATE "post" SET "body" = $1, "title" = $2 WHERE "id" = $3`
	if sql != want {
		t.Errorf("UpdateSQL = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"text", "new", 7}) {
		t.Errorf("args = %v", args)
	}
}

func TestUpdateSQLNoWhere(t *testing.T) {
	sql, _ := UpdateSQL(SQLite, "post", map[string]any{"title": "x"}, nil)
	want := `UPDATE "post" SET "title" = ?`
	if sql != want {
		t.Errorf("UpdateSQL = %q, want %q", sql, want)
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := QuoteIdent(Postgres, `we"ird`); got != `"we""ird"` {
		t.Errorf("QuoteIdent() = %q", got)
	}
}

func TestPlaceholders(t *testing.T) {
	if got := Placeholders(Postgres, 3); got != "$1, $2, $3" {
		t.Errorf("Placeholders postgres = %q", got)
	}
	if got := Placeholders(SQLite, 2); got != "?, ?" {
		t.Errorf("Placeholders sqlite = %q", got)
	}
	if got := Placeholders(Postgres, 0); got != "" {
		t.Errorf("Placeholders(0) = %q", got)
	}
}
