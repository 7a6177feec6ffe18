package engine

import (
	"context"
	"database/sql"

	"github.com/stephenafamo/scan"
	"github.com/stephenafamo/scan/stdscan"

	"github.com/veldtdb/veldt/internal/verr"
)

// Hydrator turns a raw row into a domain value. Hydration runs per
// iteration, so the same Collection can be walked with different
// consumers.
type Hydrator interface {
	Hydrate(row map[string]any) (any, error)
}

// HydratorFunc adapts a function to the Hydrator interface.
type HydratorFunc func(row map[string]any) (any, error)

func (f HydratorFunc) Hydrate(row map[string]any) (any, error) {
	return f(row)
}

// MapHydrator passes rows through unchanged.
func MapHydrator() Hydrator {
	return HydratorFunc(func(row map[string]any) (any, error) {
		return row, nil
	})
}

// Collection holds fetched rows and hydrates them on demand. It can be
// iterated any number of times.
type Collection struct {
	rows     []map[string]any
	hydrator Hydrator
}

// NewCollection wraps rows with a hydrator. A nil hydrator behaves
// like MapHydrator.
func NewCollection(rows []map[string]any, h Hydrator) *Collection {
	if h == nil {
		h = MapHydrator()
	}
	return &Collection{rows: rows, hydrator: h}
}

// Len returns the number of rows.
func (c *Collection) Len() int {
	return len(c.rows)
}

// Each calls fn with each hydrated row, stopping at the first error.
func (c *Collection) Each(fn func(v any) error) error {
	for _, row := range c.rows {
		v, err := c.hydrator.Hydrate(row)
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

// All hydrates every row and returns the results.
func (c *Collection) All() ([]any, error) {
	out := make([]any, 0, len(c.rows))
	err := c.Each(func(v any) error {
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Raw returns the underlying rows without hydration.
func (c *Collection) Raw() []map[string]any {
	return c.rows
}

// Read runs a row-returning statement and wraps the result set in a
// Collection using the given hydrator.
func (e *Executor) Read(ctx context.Context, query string, args []any, h Hydrator) (*Collection, error) {
	rows, err := queryMaps(ctx, e.db, query, args...)
	if err != nil {
		return nil, verr.Wrap(verr.ErrSQLExecution, err, "read failed").WithSQL(query)
	}
	return NewCollection(rows, h), nil
}

// queryMaps fetches all rows as column-keyed maps.
func queryMaps(ctx context.Context, db *sql.DB, query string, args ...any) ([]map[string]any, error) {
	return stdscan.All(ctx, db, scan.MapMapper[any], query, args...)
}
