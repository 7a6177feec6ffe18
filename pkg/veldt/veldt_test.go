package veldt

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/veldtdb/veldt/internal/testutil"
	"github.com/veldtdb/veldt/internal/verr"
)

func newSQLiteResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	db := testutil.SetupSQLite(t)
	base := []Option{
		WithDB(db),
		WithDialect("sqlite"),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	r, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return r
}

func TestNewRequiresDatabase(t *testing.T) {
	_, err := New(WithDialect("sqlite"))
	if !verr.Is(err, verr.EInternalError) {
		t.Errorf("New() without a database = %v", err)
	}
}

func TestNewRejectsUnknownDialect(t *testing.T) {
	db := testutil.SetupSQLite(t)
	_, err := New(WithDB(db), WithDialect("oracle"))
	if !verr.Is(err, verr.EUnsupportedDialect) {
		t.Errorf("New() with oracle = %v", err)
	}
}

func TestNewOpensAndVerifiesConnection(t *testing.T) {
	// Opening from a URL pings the database within Config.Timeout before
	// the Resolver is returned.
	r, err := New(
		WithDatabaseURL("sqlite://:memory:"),
		WithTimeout(5*time.Second),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	defer r.Close()

	if r.Dialect() != "sqlite" {
		t.Errorf("Dialect() = %q", r.Dialect())
	}
	if err := r.DB().Ping(); err != nil {
		t.Errorf("Ping() = %v", err)
	}
}

func TestDetectDialect(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"postgres://localhost/app", "postgres"},
		{"postgresql://user:pw@db:5432/app", "postgres"},
		{"sqlite://app.db", "sqlite"},
		{"sqlite3:///tmp/app.db", "sqlite"},
		{"file:app.db?mode=memory", "sqlite"},
		{"/var/data/app.db", "sqlite"},
		{"app.sqlite", "sqlite"},
		{"app.sqlite3", "sqlite"},
		{"mysql://localhost/app", "postgres"},
	}

	for _, tt := range tests {
		if got := detectDialect(tt.url); got != tt.want {
			t.Errorf("detectDialect(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://alice:hunter2@db:5432/app", "postgres://alice:***@db:5432/app"},
		{"postgres://alice@db:5432/app", "postgres://alice@db:5432/app"},
		{"app.db", "app.db"},
	}

	for _, tt := range tests {
		if got := redactURL(tt.in); got != tt.want {
			t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMigrateCreatesAbsentTable(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteResolver(t)
	r.Register("user", userEntity())

	stmts, err := r.Plan(ctx, "user")
	if err != nil {
		t.Fatalf("Plan() = %v", err)
	}
	if len(stmts) != 1 || !strings.HasPrefix(stmts[0], `CREATE TABLE "user"`) {
		t.Fatalf("plan for an absent table = %v, want one CREATE TABLE", stmts)
	}

	ok, err := r.Migrate(ctx, "user")
	if err != nil {
		t.Fatalf("Migrate() = %v", err)
	}
	if !ok {
		t.Fatal("Migrate() = false, want true")
	}

	testutil.AssertTableExists(t, r.DB(), "user")
	testutil.AssertColumnExists(t, r.DB(), "user", "id")
	testutil.AssertColumnExists(t, r.DB(), "user", "name")
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteResolver(t)
	r.Register("user", userEntity())

	if _, err := r.Migrate(ctx, "user"); err != nil {
		t.Fatalf("first Migrate() = %v", err)
	}

	// A second pass must see a converged schema and plan nothing.
	stmts, err := r.Plan(ctx, "user")
	if err != nil {
		t.Fatalf("Plan() = %v", err)
	}
	if len(stmts) != 0 {
		t.Errorf("second plan not empty: %v", stmts)
	}

	ok, err := r.Migrate(ctx, "user")
	if err != nil || !ok {
		t.Errorf("second Migrate() = %v, %v", ok, err)
	}
}

func TestMigrateAddsNewColumn(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteResolver(t)
	r.Register("user", userEntity())
	if _, err := r.Migrate(ctx, "user"); err != nil {
		t.Fatalf("Migrate() = %v", err)
	}

	// Re-register with an extra field and reconcile again.
	grown := userEntity()
	grown.fields = append(grown.fields, FieldDef{Name: "email", Type: "string", Length: 120, Nullable: true})
	r.Register("user", grown)

	stmts, err := r.Plan(ctx, "user")
	if err != nil {
		t.Fatalf("Plan() = %v", err)
	}
	if len(stmts) != 1 || !strings.Contains(stmts[0], "ADD COLUMN") {
		t.Fatalf("plan = %v, want a single ADD COLUMN", stmts)
	}

	if _, err := r.Migrate(ctx, "user"); err != nil {
		t.Fatalf("Migrate() after growth = %v", err)
	}
	testutil.AssertColumnExists(t, r.DB(), "user", "email")
}

func TestMigrateAllRoundTripsForeignKeys(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteResolver(t)
	r.Register("post", postEntity())
	r.Register("comment", commentEntity())

	ok, err := r.MigrateAll(ctx)
	if err != nil {
		t.Fatalf("MigrateAll() = %v", err)
	}
	if !ok {
		t.Fatal("MigrateAll() = false")
	}
	testutil.AssertTableExists(t, r.DB(), "post")
	testutil.AssertTableExists(t, r.DB(), "comment")

	// The introspected foreign key (with its synthesized name and
	// CASCADE action) must converge against the declared one.
	for _, name := range []string{"post", "comment"} {
		stmts, err := r.Plan(ctx, name)
		if err != nil {
			t.Fatalf("Plan(%s) = %v", name, err)
		}
		if len(stmts) != 0 {
			t.Errorf("plan for %s not empty after migrate: %v", name, stmts)
		}
	}
}

func TestMigrateConvergesWithDeclaredNoAction(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteResolver(t)
	r.Register("post", postEntity())
	e := commentEntity()
	e.keys.OnDelete = map[string]Action{"post_id": NoAction}
	r.Register("comment", e)

	if ok, err := r.MigrateAll(ctx); err != nil || !ok {
		t.Fatalf("MigrateAll() = %v, %v", ok, err)
	}

	// The live constraint reports no explicit rule; the declared NO ACTION
	// must converge against it instead of forcing a recreate.
	stmts, err := r.Plan(ctx, "comment")
	if err != nil {
		t.Fatalf("Plan() = %v", err)
	}
	if len(stmts) != 0 {
		t.Errorf("plan not empty after migrate: %v", stmts)
	}
}

func TestMigrateAllStopsOnFailure(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteResolver(t)
	// "bad" sorts first, so the failure halts the run before "user".
	r.Register("bad", testEntity{table: ""})
	r.Register("user", userEntity())

	ok, err := r.MigrateAll(ctx)
	if ok || err == nil {
		t.Fatalf("MigrateAll() = %v, %v, want failure", ok, err)
	}
	testutil.AssertTableNotExists(t, r.DB(), "user")
}

func TestCreateAndRead(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteResolver(t)
	r.Register("user", userEntity())
	if _, err := r.Migrate(ctx, "user"); err != nil {
		t.Fatalf("Migrate() = %v", err)
	}

	for i, name := range []string{"Ada", "Grace"} {
		if _, err := r.Create(ctx, "user", map[string]any{"id": i + 1, "name": name}); err != nil {
			t.Fatalf("Create(%s) = %v", name, err)
		}
	}

	coll, err := r.Read(ctx, Statement{SQL: `SELECT * FROM "user" ORDER BY "id"`}, nil)
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
		t.Fatalf("row type = %T", rows[0])
	}
	if first["name"] != "Ada" {
		t.Errorf("first row = %v", first)
	}
}

func TestUpdateMatchingRows(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteResolver(t)
	r.Register("user", userEntity())
	if _, err := r.Migrate(ctx, "user"); err != nil {
		t.Fatalf("Migrate() = %v", err)
	}
	if _, err := r.Create(ctx, "user", map[string]any{"id": 1, "name": "Ada"}); err != nil {
		t.Fatalf("Create() = %v", err)
	}

	res, err := r.Update(ctx, "user", map[string]any{"name": "Ada L."}, map[string]any{"id": 1})
	if err != nil {
		t.Fatalf("Update() = %v", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		t.Errorf("RowsAffected = %d", n)
	}

	// Matching zero rows must not error.
	if _, err := r.Update(ctx, "user", map[string]any{"name": "x"}, map[string]any{"id": 99}); err != nil {
		t.Errorf("Update() on zero rows = %v", err)
	}
}

func TestExecQuery(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteResolver(t)
	r.Register("user", userEntity())
	if _, err := r.Migrate(ctx, "user"); err != nil {
		t.Fatalf("Migrate() = %v", err)
	}
	if _, err := r.Create(ctx, "user", map[string]any{"id": 1, "name": "Ada"}); err != nil {
		t.Fatalf("Create() = %v", err)
	}

	res, err := r.ExecQuery(ctx, Statement{SQL: `SELECT "name" FROM "user" WHERE "id" = ?`, Args: []any{1}})
	if err != nil {
		t.Fatalf("ExecQuery(select) = %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0]["name"] != "Ada" {
		t.Errorf("Rows = %v", res.Rows)
	}

	res, err = r.ExecQuery(ctx, Statement{SQL: `DELETE FROM "user"`})
	if err != nil {
		t.Fatalf("ExecQuery(delete) = %v", err)
	}
	if res.RowsAffected != 1 {
		t.Errorf("RowsAffected = %d", res.RowsAffected)
	}
}

func TestReadUsesHydratorFactory(t *testing.T) {
	ctx := context.Background()

	var gotEager []string
	factory := func(eager []string) Hydrator {
		gotEager = eager
		return nil
	}

	r := newSQLiteResolver(t, WithHydrators(factory))
	r.Register("user", userEntity())
	if _, err := r.Migrate(ctx, "user"); err != nil {
		t.Fatalf("Migrate() = %v", err)
	}

	if _, err := r.Read(ctx, Statement{SQL: `SELECT * FROM "user"`}, []string{"posts", "comments"}); err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if len(gotEager) != 2 || gotEager[0] != "posts" {
		t.Errorf("factory received eager = %v", gotEager)
	}
}

func TestTruncateKeepsTable(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteResolver(t)
	r.Register("user", userEntity())
	if _, err := r.Migrate(ctx, "user"); err != nil {
		t.Fatalf("Migrate() = %v", err)
	}
	for i := 1; i <= 3; i++ {
		if _, err := r.Create(ctx, "user", map[string]any{"id": i, "name": "u"}); err != nil {
			t.Fatalf("Create() = %v", err)
		}
	}

	if _, err := r.Truncate(ctx, "user", false); err != nil {
		t.Fatalf("Truncate() = %v", err)
	}
	if n := testutil.CountRows(t, r.DB(), "user"); n != 0 {
		t.Errorf("rows after truncate = %d", n)
	}
	testutil.AssertTableExists(t, r.DB(), "user")
}

func TestDropTable(t *testing.T) {
	ctx := context.Background()
	r := newSQLiteResolver(t)
	r.Register("user", userEntity())
	if _, err := r.Migrate(ctx, "user"); err != nil {
		t.Fatalf("Migrate() = %v", err)
	}

	if ok := r.DropTable(ctx, "user"); !ok {
		t.Error("DropTable() = false for an existing table")
	}
	testutil.AssertTableNotExists(t, r.DB(), "user")

	// A missing table is reported, never raised.
	if ok := r.DropTable(ctx, "user"); ok {
		t.Error("DropTable() = true for a missing table")
	}
}
