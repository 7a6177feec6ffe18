//go:build integration

package introspect

import (
	"context"
	"testing"

	"github.com/veldtdb/veldt/internal/dialect"
	"github.com/veldtdb/veldt/internal/testutil"
)

func TestPostgresIntrospectTable(t *testing.T) {
	db := testutil.SetupPostgres(t)
	testutil.ExecSQL(t, db, `CREATE TABLE "user" ("id" INTEGER PRIMARY KEY, "email" VARCHAR(120) NOT NULL)`)
	testutil.ExecSQL(t, db, `
		CREATE TABLE "comment" (
			"id" INTEGER PRIMARY KEY,
			"author_id" INTEGER,
			CONSTRAINT "fk_comment_author_id" FOREIGN KEY ("author_id") REFERENCES "user" ("id") ON DELETE SET NULL
		)
	`)

	intro := New(db, dialect.Postgres())
	ctx := context.Background()

	missing, err := intro.IntrospectTable(ctx, "nope")
	if err != nil {
		t.Fatalf("IntrospectTable(nope) = %v", err)
	}
	if missing != nil {
		t.Errorf("missing table should introspect as nil, got %+v", missing)
	}

	user, err := intro.IntrospectTable(ctx, "user")
	if err != nil {
		t.Fatalf("IntrospectTable(user) = %v", err)
	}
	if user == nil {
		t.Fatal("user table not found")
	}
	email := user.GetColumn("email")
	if email == nil || email.Type != "string" || email.Length != 120 {
		t.Errorf("email column = %+v", email)
	}
	if len(user.PrimaryKey) != 1 || user.PrimaryKey[0] != "id" {
		t.Errorf("PrimaryKey = %v", user.PrimaryKey)
	}

	comment, err := intro.IntrospectTable(ctx, "comment")
	if err != nil {
		t.Fatalf("IntrospectTable(comment) = %v", err)
	}
	if len(comment.ForeignKeys) != 1 {
		t.Fatalf("got %d FKs, want 1", len(comment.ForeignKeys))
	}
	fk := comment.ForeignKeys[0]
	if fk.OnDelete != "SET NULL" || fk.OnUpdate != "" {
		t.Errorf("fk actions = delete %q update %q", fk.OnDelete, fk.OnUpdate)
	}
}

func TestPostgresIntrospectCompositeForeignKey(t *testing.T) {
	db := testutil.SetupPostgres(t)
	testutil.ExecSQL(t, db, `
		CREATE TABLE "tenant_user" (
			"tenant_id" INTEGER,
			"user_id" INTEGER,
			PRIMARY KEY ("tenant_id", "user_id")
		)
	`)
	testutil.ExecSQL(t, db, `
		CREATE TABLE "membership" (
			"id" INTEGER PRIMARY KEY,
			"tenant_id" INTEGER,
			"member_id" INTEGER,
			CONSTRAINT "fk_membership_tenant" FOREIGN KEY ("tenant_id", "member_id")
				REFERENCES "tenant_user" ("tenant_id", "user_id")
		)
	`)

	intro := New(db, dialect.Postgres())
	def, err := intro.IntrospectTable(context.Background(), "membership")
	if err != nil {
		t.Fatalf("IntrospectTable(membership) = %v", err)
	}
	if len(def.ForeignKeys) != 1 {
		t.Fatalf("got %d FKs, want 1", len(def.ForeignKeys))
	}

	// Column pairs must stay ordinally aligned, not cross-producted.
	fk := def.ForeignKeys[0]
	if len(fk.Columns) != 2 || len(fk.RefColumns) != 2 {
		t.Fatalf("fk shape = %+v", fk)
	}
	if fk.Columns[0] != "tenant_id" || fk.RefColumns[0] != "tenant_id" {
		t.Errorf("first pair = %s -> %s", fk.Columns[0], fk.RefColumns[0])
	}
	if fk.Columns[1] != "member_id" || fk.RefColumns[1] != "user_id" {
		t.Errorf("second pair = %s -> %s", fk.Columns[1], fk.RefColumns[1])
	}
}
