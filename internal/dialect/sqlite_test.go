package dialect

import (
	"strings"
	"testing"

	"github.com/veldtdb/veldt/internal/schema"
	"github.com/veldtdb/veldt/internal/verr"
)

func TestSQLiteColumnTypeSQL(t *testing.T) {
	d := SQLite()

	tests := []struct {
		name string
		col  *schema.ColumnDef
		want string
	}{
		{"string ignores length", &schema.ColumnDef{Type: "string", Length: 80}, "TEXT"},
		{"integer", &schema.ColumnDef{Type: "integer"}, "INTEGER"},
		{"bigint", &schema.ColumnDef{Type: "bigint"}, "INTEGER"},
		{"boolean stored as integer", &schema.ColumnDef{Type: "boolean"}, "INTEGER"},
		{"decimal stored as text", &schema.ColumnDef{Type: "decimal"}, "TEXT"},
		{"date_time", &schema.ColumnDef{Type: "date_time"}, "DATETIME"},
		{"blob", &schema.ColumnDef{Type: "blob"}, "BLOB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.ColumnTypeSQL(tt.col); got != tt.want {
				t.Errorf("ColumnTypeSQL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSQLiteCreateTableSQL(t *testing.T) {
	d := SQLite()

	tbl := &schema.TableDef{
		Name: "post",
		Columns: []*schema.ColumnDef{
			{Name: "id", Type: "integer"},
			{Name: "author_id", Type: "integer"},
			{Name: "active", Type: "boolean", Default: true, DefaultSet: true},
		},
		PrimaryKey: []string{"id"},
		ForeignKeys: []*schema.ForeignKeyDef{
			{
				Name:       "fk_post_author_id",
				Columns:    []string{"author_id"},
				RefTable:   "user",
				RefColumns: []string{"id"},
				OnDelete:   "SET NULL",
			},
		},
	}

	sql, err := d.CreateTableSQL(tbl)
	if err != nil {
		t.Fatalf("CreateTableSQL() = %v", err)
	}

	wants := []string{
		`CREATE TABLE "post"`,
		`"id" INTEGER PRIMARY KEY`,
		`"active" INTEGER NOT NULL DEFAULT 1`,
		`CONSTRAINT "fk_post_author_id" FOREIGN KEY ("author_id") REFERENCES "user" ("id") ON DELETE SET NULL`,
	}
	for _, want := range wants {
		if !strings.Contains(sql, want) {
			t.Errorf("CreateTableSQL missing %q in:\n%s", want, sql)
		}
	}
}

func TestSQLiteUnsupportedOperations(t *testing.T) {
	d := SQLite()

	col := &schema.ColumnDef{Name: "age", Type: "integer"}
	if _, err := d.AlterColumnSQL("user", col); !verr.Is(err, verr.ErrSQLUnsupported) {
		t.Errorf("AlterColumnSQL err = %v, want ErrSQLUnsupported", err)
	}

	fk := &schema.ForeignKeyDef{
		Name:       "fk_x_y",
		Columns:    []string{"y"},
		RefTable:   "z",
		RefColumns: []string{"id"},
	}
	if _, err := d.AddForeignKeySQL("x", fk); !verr.Is(err, verr.ErrSQLUnsupported) {
		t.Errorf("AddForeignKeySQL err = %v, want ErrSQLUnsupported", err)
	}
	if _, err := d.DropForeignKeySQL("x", "fk_x_y"); !verr.Is(err, verr.ErrSQLUnsupported) {
		t.Errorf("DropForeignKeySQL err = %v, want ErrSQLUnsupported", err)
	}
}

func TestSQLiteTruncateSQL(t *testing.T) {
	d := SQLite()

	if d.SupportsTruncate() {
		t.Error("SupportsTruncate() should be false")
	}
	if d.SupportsTruncateCascade() {
		t.Error("SupportsTruncateCascade() should be false")
	}
	// cascade is ignored: sqlite has no TRUNCATE statement at all.
	for _, cascade := range []bool{false, true} {
		if got := d.TruncateSQL("log", cascade); got != `DELETE FROM "log"` {
			t.Errorf("TruncateSQL(cascade=%v) = %q", cascade, got)
		}
	}
}

func TestSQLiteDropTableSQL(t *testing.T) {
	d := SQLite()

	sql, err := d.DropTableSQL("old_table", true)
	if err != nil {
		t.Fatalf("DropTableSQL() = %v", err)
	}
	if sql != `DROP TABLE IF EXISTS "old_table"` {
		t.Errorf("DropTableSQL = %q", sql)
	}
}
