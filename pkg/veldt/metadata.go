package veldt

import (
	"sort"

	"github.com/veldtdb/veldt/internal/verr"
)

// Action is a referential action applied by the database when a
// referenced parent row is updated or deleted. The set is closed; any
// other value is rejected during schema building.
type Action string

const (
	NoAction   Action = "NO ACTION"
	SetNull    Action = "SET NULL"
	Restrict   Action = "RESTRICT"
	SetDefault Action = "SET DEFAULT"
	Cascade    Action = "CASCADE"
)

// ParseAction validates a referential action string.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case NoAction, SetNull, Restrict, SetDefault, Cascade:
		return Action(s), nil
	default:
		return "", verr.Newf(verr.ErrInvalidAction, "invalid referential action: %q", s).
			WithHelp("valid actions: CASCADE, RESTRICT, SET NULL, SET DEFAULT, NO ACTION")
	}
}

// FieldDef describes one column of an entity.
type FieldDef struct {
	Name     string
	Type     string // portable type tag: integer, string, text, ...
	Length   int    // for string types; 0 means dialect default
	Nullable bool
	Default  any
	// DefaultSet distinguishes "default is nil" from "no default".
	DefaultSet bool
}

// IndexSet declares an entity's keys, indexes, and per-field
// referential actions. Constraint maps are keyed by local field name.
type IndexSet struct {
	Primary  []string
	Unique   map[string][]string
	Index    map[string][]string
	OnUpdate map[string]Action
	OnDelete map[string]Action
}

// RelationKind tags the variant of a declared relation.
type RelationKind int

const (
	// KindToOne is the owning side: this table stores the foreign key.
	KindToOne RelationKind = iota
	// KindToMany is the inverse side: no physical key on this table.
	KindToMany
	// KindToManyThrough is an inverse side mediated by a join table.
	KindToManyThrough
)

// Relation describes one declared relation between two entity types.
// Only the owning side (ToOne) ever contributes a foreign key; inverse
// variants are informational and are skipped during schema building.
type Relation struct {
	kind       RelationKind
	entityName string
	through    string
	localKey   string
	foreignKey string
}

// ToOne declares an owning-side relation: the declaring entity stores
// localKey referencing foreignKey on the target entity's table.
func ToOne(entity, localKey, foreignKey string) Relation {
	return Relation{
		kind:       KindToOne,
		entityName: entity,
		localKey:   localKey,
		foreignKey: foreignKey,
	}
}

// ToMany declares an inverse-side relation to entity.
func ToMany(entity string) Relation {
	return Relation{kind: KindToMany, entityName: entity}
}

// ToManyThrough declares an inverse-side relation mediated by a join
// table registered under through.
func ToManyThrough(entity, through string) Relation {
	return Relation{kind: KindToManyThrough, entityName: entity, through: through}
}

// Kind returns the relation variant.
func (r Relation) Kind() RelationKind { return r.kind }

// EntityName returns the registered name of the related entity.
func (r Relation) EntityName() string { return r.entityName }

// Through returns the join entity name for ToManyThrough relations.
func (r Relation) Through() string { return r.through }

// LocalKey returns the declaring table's FK column (ToOne only).
func (r Relation) LocalKey() string { return r.localKey }

// ForeignKey returns the referenced column on the target table (ToOne only).
func (r Relation) ForeignKey() string { return r.foreignKey }

// Owning reports whether the relation stores a physical key on the
// declaring table.
func (r Relation) Owning() bool { return r.kind == KindToOne }

// Entity is the metadata contract an entity type implements to take
// part in schema reconciliation. Relations receives a Mapper so that
// declarations can reference other entities by registered name without
// importing their types.
type Entity interface {
	TableName() string
	Fields() []FieldDef
	IndexKeys() IndexSet
	Relations(m *Mapper) map[string]Relation
}

// Registry holds the known entity types by registered name.
type Registry struct {
	entities map[string]Entity
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]Entity)}
}

// Register adds an entity under a name. Registering the same name
// twice replaces the earlier entity.
func (r *Registry) Register(name string, e Entity) {
	r.entities[name] = e
}

// Get returns the entity registered under name.
func (r *Registry) Get(name string) (Entity, bool) {
	e, ok := r.entities[name]
	return e, ok
}

// Names returns all registered entity names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mapper is the late-bound context handed to Relations declarations.
// It resolves registered entity names to table names.
type Mapper struct {
	registry *Registry
}

// TableFor resolves the table name of a registered entity.
func (m *Mapper) TableFor(entityName string) (string, error) {
	e, ok := m.registry.Get(entityName)
	if !ok {
		err := verr.Newf(verr.ErrUnknownEntity, "unknown entity %q", entityName)
		if hint := verr.SuggestSimilar(entityName, m.registry.Names()); hint != "" {
			err = err.WithHelp(hint)
		}
		return "", err
	}
	table := e.TableName()
	if table == "" {
		return "", verr.Newf(verr.ErrRelationUnmapped, "entity %q has no table name", entityName)
	}
	return table, nil
}
