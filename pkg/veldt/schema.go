package veldt

import (
	"sort"

	"github.com/veldtdb/veldt/internal/schema"
	"github.com/veldtdb/veldt/internal/strutil"
	"github.com/veldtdb/veldt/internal/verr"
)

// BuildTargetSchema derives the target table definition for a
// registered entity: one column per field, the declared primary key and
// indexes, and one foreign key per owning-side relation. Inverse
// relations (ToMany, ToManyThrough) contribute nothing. The result is
// built fresh on every call and never cached.
func (r *Resolver) BuildTargetSchema(name string) (*TableDef, error) {
	e, ok := r.registry.Get(name)
	if !ok {
		err := verr.Newf(verr.ErrUnknownEntity, "unknown entity %q", name)
		if hint := verr.SuggestSimilar(name, r.registry.Names()); hint != "" {
			err = err.WithHelp(hint)
		}
		return nil, err
	}

	table := e.TableName()
	if table == "" {
		return nil, verr.Newf(verr.ErrMetadataInvalid, "entity %q has no table name", name)
	}
	if err := schema.ValidateIdentifier(table); err != nil {
		return nil, err
	}

	fields := e.Fields()
	fieldNames := make([]string, 0, len(fields))
	def := &schema.TableDef{Name: table}
	for _, f := range fields {
		def.Columns = append(def.Columns, &schema.ColumnDef{
			Name:       f.Name,
			Type:       f.Type,
			Length:     f.Length,
			Nullable:   f.Nullable,
			Default:    f.Default,
			DefaultSet: f.DefaultSet,
		})
		fieldNames = append(fieldNames, f.Name)
	}

	keys := e.IndexKeys()
	def.PrimaryKey = keys.Primary

	// Sorted traversal keeps the definition deterministic across runs.
	for _, idxName := range sortedKeys(keys.Unique) {
		def.Indexes = append(def.Indexes, &schema.IndexDef{
			Name:    idxName,
			Columns: keys.Unique[idxName],
			Unique:  true,
		})
	}
	for _, idxName := range sortedKeys(keys.Index) {
		def.Indexes = append(def.Indexes, &schema.IndexDef{
			Name:    idxName,
			Columns: keys.Index[idxName],
		})
	}

	relations := e.Relations(&Mapper{registry: r.registry})
	for _, relName := range sortedKeys(relations) {
		rel := relations[relName]
		if !rel.Owning() {
			continue
		}

		refTable, err := (&Mapper{registry: r.registry}).TableFor(rel.EntityName())
		if err != nil {
			return nil, err
		}

		localKey := rel.LocalKey()
		if !contains(fieldNames, localKey) {
			err := verr.Newf(verr.ErrUnknownField, "relation %q uses unknown local key %q", relName, localKey).
				WithTable(table)
			if hint := verr.SuggestSimilar(localKey, fieldNames); hint != "" {
				err = err.WithHelp(hint)
			}
			return nil, err
		}

		// Only explicitly declared actions are carried; an absent
		// action means the database default, not NO ACTION.
		onUpdate, err := declaredAction(keys.OnUpdate, localKey)
		if err != nil {
			return nil, err
		}
		onDelete, err := declaredAction(keys.OnDelete, localKey)
		if err != nil {
			return nil, err
		}

		def.ForeignKeys = append(def.ForeignKeys, &schema.ForeignKeyDef{
			Name:       strutil.ForeignKeyName(table, localKey),
			Columns:    []string{localKey},
			RefTable:   refTable,
			RefColumns: []string{rel.ForeignKey()},
			OnUpdate:   onUpdate,
			OnDelete:   onDelete,
		})
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func declaredAction(m map[string]Action, field string) (string, error) {
	a, ok := m[field]
	if !ok {
		return "", nil
	}
	parsed, err := ParseAction(string(a))
	if err != nil {
		return "", err
	}
	// NO ACTION is every engine's default rule, and introspection reports
	// it as the empty action. Folding the declared form keeps a converged
	// constraint comparing equal to its live counterpart.
	if parsed == NoAction {
		return "", nil
	}
	return string(parsed), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
