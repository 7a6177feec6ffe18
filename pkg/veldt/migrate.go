package veldt

import (
	"context"

	"github.com/veldtdb/veldt/internal/diff"
	"github.com/veldtdb/veldt/internal/engine"
	"github.com/veldtdb/veldt/internal/verr"
)

// Plan returns the statements Migrate would run for an entity without
// executing them. An empty slice means the live table already matches.
func (r *Resolver) Plan(ctx context.Context, name string) ([]string, error) {
	target, err := r.BuildTargetSchema(name)
	if err != nil {
		return nil, err
	}

	live, err := r.intro.IntrospectTable(ctx, target.Name)
	if err != nil {
		return nil, verr.Wrap(verr.ErrIntrospection, err, "failed to introspect table").
			WithTable(target.Name)
	}

	if live == nil {
		return diff.CreateStatements(r.dialect, target)
	}

	d := diff.Compute(r.dialect, live, target)
	if d.Empty() {
		return nil, nil
	}
	return d.Statements(r.dialect)
}

// Migrate reconciles one entity's live table with its target schema:
// introspect, diff, apply. It reports whether the operation succeeded;
// a live table that already matches succeeds with zero statements.
// Failed statements halt the run, and already-applied statements are
// not rolled back.
func (r *Resolver) Migrate(ctx context.Context, name string) (bool, error) {
	stmts, err := r.Plan(ctx, name)
	if err != nil {
		return false, err
	}
	if len(stmts) == 0 {
		r.log.Debug("schema up to date", "entity", name)
		return true, nil
	}

	r.log.Info("applying schema changes", "entity", name, "statements", len(stmts))
	if _, err := r.exec.Apply(ctx, engine.Statements(stmts)); err != nil {
		return false, err
	}
	return true, nil
}

// MigrateAll reconciles every registered entity in name order.
// It stops at the first failure.
func (r *Resolver) MigrateAll(ctx context.Context) (bool, error) {
	for _, name := range r.registry.Names() {
		if ok, err := r.Migrate(ctx, name); !ok {
			return false, err
		}
	}
	return true, nil
}
