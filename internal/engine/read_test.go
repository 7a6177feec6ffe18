package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/veldtdb/veldt/internal/dialect"
	"github.com/veldtdb/veldt/internal/testutil"
)

func sqliteExecutor(t *testing.T) *Executor {
	t.Helper()

	db := testutil.SetupSQLite(t)
	testutil.ExecSQL(t, db, `CREATE TABLE "user" ("id" INTEGER PRIMARY KEY, "name" TEXT NOT NULL)`)
	testutil.ExecSQL(t, db, `INSERT INTO "user" ("id", "name") VALUES (1, 'Ada'), (2, 'Grace')`)

	return NewExecutor(db, dialect.SQLite(), nil)
}

func TestReadWithDefaultHydrator(t *testing.T) {
	e := sqliteExecutor(t)

	coll, err := e.Read(context.Background(), `SELECT "id", "name" FROM "user" ORDER BY "id"`, nil, nil)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if coll.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", coll.Len())
	}

	rows, err := coll.All()
	if err != nil {
		t.Fatalf("All() = %v", err)
	}
	first, ok := rows[0].(map[string]any)
	if !ok {
		t.Fatalf("default hydrator should yield maps, got %T", rows[0])
	}
	if first["name"] != "Ada" {
		t.Errorf("first row = %v", first)
	}
}

func TestReadWithCustomHydrator(t *testing.T) {
	e := sqliteExecutor(t)

	type user struct {
		ID   int64
		Name string
	}
	h := HydratorFunc(func(row map[string]any) (any, error) {
		id, _ := row["id"].(int64)
		name, _ := row["name"].(string)
		return user{ID: id, Name: name}, nil
	})

	coll, err := e.Read(context.Background(), `SELECT * FROM "user" ORDER BY "id"`, nil, h)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}

	var names []string
	err = coll.Each(func(v any) error {
		names = append(names, v.(user).Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Each() = %v", err)
	}
	if len(names) != 2 || names[0] != "Ada" || names[1] != "Grace" {
		t.Errorf("names = %v", names)
	}
}

func TestCollectionIsRestartable(t *testing.T) {
	e := sqliteExecutor(t)

	coll, err := e.Read(context.Background(), `SELECT "id" FROM "user"`, nil, nil)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}

	for i := 0; i < 2; i++ {
		count := 0
		if err := coll.Each(func(any) error { count++; return nil }); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
		if count != 2 {
			t.Errorf("pass %d visited %d rows, want 2", i, count)
		}
	}
}

func TestEachStopsOnHydrationError(t *testing.T) {
	boom := errors.New("bad row")
	coll := NewCollection(
		[]map[string]any{{"id": 1}, {"id": 2}},
		HydratorFunc(func(map[string]any) (any, error) { return nil, boom }),
	)

	visited := 0
	err := coll.Each(func(any) error { visited++; return nil })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want hydration error", err)
	}
	if visited != 0 {
		t.Errorf("consumer ran %d times after hydration failed", visited)
	}
}

func TestReadWithArgs(t *testing.T) {
	e := sqliteExecutor(t)

	coll, err := e.Read(context.Background(), `SELECT "name" FROM "user" WHERE "id" = ?`, []any{2}, nil)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if coll.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", coll.Len())
	}
	if coll.Raw()[0]["name"] != "Grace" {
		t.Errorf("row = %v", coll.Raw()[0])
	}
}

func TestTruncateOnSQLiteDeletesAllRows(t *testing.T) {
	e := sqliteExecutor(t)

	if _, err := e.Truncate(context.Background(), "user", false); err != nil {
		t.Fatalf("Truncate() = %v", err)
	}
	if n := testutil.CountRows(t, e.DB(), `"user"`); n != 0 {
		t.Errorf("table still has %d rows after truncate", n)
	}

	// The table itself must survive.
	testutil.AssertTableExists(t, e.DB(), "user")
}

func TestDropTableOnSQLite(t *testing.T) {
	e := sqliteExecutor(t)

	if ok := e.DropTable(context.Background(), "user"); !ok {
		t.Fatal("DropTable should succeed for an existing table")
	}
	testutil.AssertTableNotExists(t, e.DB(), "user")

	if ok := e.DropTable(context.Background(), "user"); ok {
		t.Error("dropping a missing table should report false")
	}
}
