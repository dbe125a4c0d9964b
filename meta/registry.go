package meta

import (
	"fmt"
	"sync/atomic"

	"github.com/jinzhu/inflection"

	"github.com/mickamy/aliasq/internal/naming"
)

// Registry is a validated, read-only set of entities.
// It is safe for concurrent use; callers must not modify the entities it
// hands out.
type Registry struct {
	entities map[string]*Entity
	names    []string
}

// NewRegistry fills in defaults for every entity and validates the set:
//
//   - Table defaults to the plural snake_case of Name ("BlogPost" → "blog_posts").
//   - Field.Column defaults to the snake_case of Field.Name.
//   - Relation.ForeignKey defaults to "<relation>_id" for belongs_to and
//     "<source entity>_id" for has_one / has_many.
//   - Relation.References defaults to the primary key column of the side
//     the foreign key points at, and must name a column of that side.
//   - Relation.ForeignKey may name a field of the table holding it by
//     property or column; it then resolves to that column. Undeclared
//     foreign key columns are accepted unless the other side declares them.
func NewRegistry(entities ...Entity) (*Registry, error) {
	r := &Registry{entities: make(map[string]*Entity, len(entities))}

	for _, e := range entities {
		if e.Name == "" {
			return nil, fmt.Errorf("meta: entity without name")
		}
		if _, dup := r.entities[e.Name]; dup {
			return nil, fmt.Errorf("meta: entity %s registered twice", e.Name)
		}
		ent, err := normalizeEntity(e)
		if err != nil {
			return nil, err
		}
		r.entities[e.Name] = ent
		r.names = append(r.names, e.Name)
	}

	for _, name := range r.names {
		if err := r.resolveRelations(r.entities[name]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error. Intended for
// package-level registries built from static definitions.
func MustRegistry(entities ...Entity) *Registry {
	r, err := NewRegistry(entities...)
	if err != nil {
		panic(err)
	}
	return r
}

// Entity returns the entity registered under name.
func (r *Registry) Entity(name string) (*Entity, bool) {
	e, ok := r.entities[name]
	return e, ok
}

// Names returns entity names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func normalizeEntity(e Entity) (*Entity, error) {
	ent := &Entity{
		Name:      e.Name,
		Table:     e.Table,
		Fields:    append([]Field(nil), e.Fields...),
		Relations: append([]Relation(nil), e.Relations...),
	}
	if ent.Table == "" {
		ent.Table = inflection.Plural(naming.CamelToSnake(ent.Name))
	}

	seen := make(map[string]bool, len(ent.Fields)+len(ent.Relations))
	var pk *Field
	for i := range ent.Fields {
		f := &ent.Fields[i]
		if f.Name == "" {
			return nil, fmt.Errorf("meta: %s: field without name", ent.Name)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("meta: %s: duplicate property %s", ent.Name, f.Name)
		}
		seen[f.Name] = true
		if f.Column == "" {
			f.Column = naming.CamelToSnake(f.Name)
		}
		if f.PrimaryKey {
			if pk != nil {
				return nil, fmt.Errorf("meta: %s: multiple primary keys: %s and %s", ent.Name, pk.Name, f.Name)
			}
			pk = f
		}
	}
	if pk == nil {
		return nil, fmt.Errorf("meta: no primary key defined for %s", ent.Name)
	}

	for _, rel := range ent.Relations {
		if rel.Name == "" {
			return nil, fmt.Errorf("meta: %s: relation without name", ent.Name)
		}
		if seen[rel.Name] {
			return nil, fmt.Errorf("meta: %s: duplicate property %s", ent.Name, rel.Name)
		}
		seen[rel.Name] = true
	}
	return ent, nil
}

func (r *Registry) resolveRelations(ent *Entity) error {
	for i := range ent.Relations {
		rel := &ent.Relations[i]

		target, ok := r.entities[rel.Target]
		if !ok {
			return fmt.Errorf("meta: %s.%s: unknown target entity %q", ent.Name, rel.Name, rel.Target)
		}

		// referenced is the entity whose column the foreign key points at;
		// owner is the entity whose table holds the foreign key.
		var referenced, owner *Entity
		switch rel.Kind {
		case BelongsTo:
			referenced, owner = target, ent
			if rel.ForeignKey == "" {
				rel.ForeignKey = naming.CamelToSnake(rel.Name) + "_id"
			}
		case HasOne, HasMany:
			referenced, owner = ent, target
			if rel.ForeignKey == "" {
				rel.ForeignKey = naming.CamelToSnake(ent.Name) + "_id"
			}
		default:
			return fmt.Errorf("meta: %s.%s: unknown relation kind %q", ent.Name, rel.Name, rel.Kind)
		}

		// A foreign key naming a declared field resolves to its column. One
		// that is undeclared on the owner but declared on the other side
		// points the wrong way.
		if f, ok := owner.Field(rel.ForeignKey); ok {
			rel.ForeignKey = f.Column
		} else if owner != referenced && hasColumn(referenced, rel.ForeignKey) {
			return fmt.Errorf("meta: %s.%s: foreign key %q is a column of %s, want a column of %s",
				ent.Name, rel.Name, rel.ForeignKey, referenced.Name, owner.Name)
		}

		if rel.References == "" {
			rel.References = referenced.PrimaryKey().Column
		} else if !hasColumn(referenced, rel.References) {
			return fmt.Errorf("meta: %s.%s: %s has no column %q", ent.Name, rel.Name, referenced.Name, rel.References)
		}
	}
	return nil
}

func hasColumn(e *Entity, column string) bool {
	for _, f := range e.Fields {
		if f.Column == column {
			return true
		}
	}
	return false
}

var defaultRegistry atomic.Pointer[Registry]

// SetDefault installs r as the process-wide registry.
func SetDefault(r *Registry) { defaultRegistry.Store(r) }

// Default returns the process-wide registry, or nil if none was installed.
func Default() *Registry { return defaultRegistry.Load() }
