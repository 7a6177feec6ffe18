// Package veldt reconciles entity metadata with live database schema.
// Entities declare fields, indexes, and relations; the Resolver derives
// the target schema (including foreign keys from owning-side relations),
// diffs it against the live table, and applies the converging DDL. It
// also exposes the row operations that run through the same connection.
//
// Example:
//
//	r, err := veldt.New(
//	    veldt.WithDatabaseURL("postgres://localhost/mydb"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	r.Register("user", userEntity{})
//	if _, err := r.Migrate(ctx, "user"); err != nil {
//	    log.Fatal(err)
//	}
package veldt

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/veldtdb/veldt/internal/dialect"
	"github.com/veldtdb/veldt/internal/engine"
	"github.com/veldtdb/veldt/internal/introspect"
	"github.com/veldtdb/veldt/internal/schema"
	"github.com/veldtdb/veldt/internal/verr"
)

// Aliases for the result types callers receive, so importing internal
// packages is never necessary.
type (
	TableDef    = schema.TableDef
	ColumnDef   = schema.ColumnDef
	Collection  = engine.Collection
	Statement   = engine.Statement
	QueryResult = engine.QueryResult
	Hydrator    = engine.Hydrator
)

// Resolver is the entry point: it owns the entity registry, the
// dialect, and the executor, and performs schema reconciliation and row
// operations for registered entities.
type Resolver struct {
	db       *sql.DB
	ownsDB   bool
	dialect  dialect.Dialect
	exec     *engine.Executor
	intro    introspect.Introspector
	registry *Registry
	config   *Config
	log      *slog.Logger
}

// New creates a Resolver. Either WithDB or WithDatabaseURL must be
// provided; the dialect is auto-detected from the URL when not set.
func New(opts ...Option) (*Resolver, error) {
	cfg := &Config{
		Timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	if cfg.Dialect == "" {
		cfg.Dialect = detectDialect(cfg.DatabaseURL)
	}
	d := dialect.Get(cfg.Dialect)
	if d == nil {
		return nil, verr.Newf(verr.EUnsupportedDialect, "unsupported dialect: %q", cfg.Dialect).
			WithHelp("supported dialects: " + strings.Join(dialect.Names(), ", "))
	}

	db := cfg.DB
	ownsDB := false
	if db == nil {
		if cfg.DatabaseURL == "" {
			return nil, verr.New(verr.EInternalError, "no database configured").
				WithHelp("provide WithDB or WithDatabaseURL")
		}
		opened, err := openDatabase(cfg.DatabaseURL, cfg.Dialect)
		if err != nil {
			return nil, verr.Wrap(verr.ErrSQLExecution, err, "failed to open database").
				With("url", redactURL(cfg.DatabaseURL))
		}
		opened.SetMaxOpenConns(10)
		opened.SetMaxIdleConns(5)
		opened.SetConnMaxLifetime(5 * time.Minute)

		// Verify connectivity within the configured timeout.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if err := opened.PingContext(ctx); err != nil {
			opened.Close()
			return nil, verr.Wrap(verr.ErrSQLExecution, err, "failed to connect to database").
				With("url", redactURL(cfg.DatabaseURL))
		}

		db = opened
		ownsDB = true
	}

	return &Resolver{
		db:       db,
		ownsDB:   ownsDB,
		dialect:  d,
		exec:     engine.NewExecutor(db, d, log),
		intro:    introspect.New(db, d),
		registry: NewRegistry(),
		config:   cfg,
		log:      log,
	}, nil
}

// Close releases the database connection if the Resolver opened it.
func (r *Resolver) Close() error {
	if r.ownsDB && r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Register adds an entity to the resolver's registry.
func (r *Resolver) Register(name string, e Entity) {
	r.registry.Register(name, e)
}

// Registry returns the resolver's entity registry.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Dialect returns the active dialect name.
func (r *Resolver) Dialect() string {
	return r.dialect.Name()
}

// DB returns the underlying database handle.
func (r *Resolver) DB() *sql.DB {
	return r.db
}

// detectDialect auto-detects the database dialect from the connection URL.
//
// Detection rules:
//   - postgres:// or postgresql:// -> postgres
//   - sqlite:// or file: or path ending with .db/.sqlite/.sqlite3 -> sqlite
func detectDialect(url string) string {
	url = strings.ToLower(url)

	switch {
	case strings.HasPrefix(url, "postgres://"),
		strings.HasPrefix(url, "postgresql://"):
		return "postgres"

	case strings.HasPrefix(url, "sqlite://"),
		strings.HasPrefix(url, "sqlite3://"),
		strings.HasPrefix(url, "file:"):
		return "sqlite"

	case strings.HasSuffix(url, ".db"),
		strings.HasSuffix(url, ".sqlite"),
		strings.HasSuffix(url, ".sqlite3"):
		return "sqlite"
	}

	return "postgres"
}

// openDatabase opens a database connection based on the dialect.
func openDatabase(url, dialectName string) (*sql.DB, error) {
	switch dialectName {
	case "postgres":
		return sql.Open("postgres", url)
	case "sqlite":
		return sql.Open("sqlite", convertSQLiteURL(url))
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialectName)
	}
}

// convertSQLiteURL strips URL scheme prefixes, leaving a driver DSN.
// Query parameters (e.g. ?mode=memory) pass through untouched.
func convertSQLiteURL(url string) string {
	url = strings.TrimPrefix(url, "sqlite://")
	url = strings.TrimPrefix(url, "sqlite3://")
	url = strings.TrimPrefix(url, "file:")
	return url
}

// redactURL removes the password from a database URL for logging.
func redactURL(url string) string {
	start := strings.Index(url, "://")
	if start == -1 {
		return url
	}
	start += 3

	end := strings.Index(url[start:], "@")
	if end == -1 {
		return url
	}
	end += start

	credentials := url[start:end]
	if colonIdx := strings.Index(credentials, ":"); colonIdx != -1 {
		user := credentials[:colonIdx]
		return url[:start] + user + ":***@" + url[end+1:]
	}

	return url
}
