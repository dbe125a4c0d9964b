// Package meta declares the entity metadata that queries are resolved
// against: tables, columns and the relations between entities.
package meta

// RelationKind names how two entities are linked.
type RelationKind string

const (
	// BelongsTo is a many-to-one relation; the foreign key lives on the
	// source table.
	BelongsTo RelationKind = "belongs_to"
	// HasOne is a one-to-one relation; the foreign key lives on the target.
	HasOne RelationKind = "has_one"
	// HasMany is a one-to-many relation; the foreign key lives on the target.
	HasMany RelationKind = "has_many"
)

// Field is one mapped column of an entity.
type Field struct {
	Name       string `yaml:"name"`       // property name, e.g. "title"
	Column     string `yaml:"column"`     // DB column; defaults to snake_case of Name
	PrimaryKey bool   `yaml:"primaryKey"` // exactly one per entity
	CreatedAt  bool   `yaml:"createdAt"`  // filled on insert when absent
}

// Relation links an entity to another registered entity.
type Relation struct {
	Name       string       `yaml:"name"`       // property name, e.g. "category"
	Kind       RelationKind `yaml:"kind"`       // belongs_to, has_one or has_many
	Target     string       `yaml:"target"`     // target entity name
	ForeignKey string       `yaml:"foreignKey"` // FK column; see Registry for defaults
	References string       `yaml:"references"` // column the FK points at
}

// Entity describes one table.
type Entity struct {
	Name      string     `yaml:"name"`
	Table     string     `yaml:"table"`
	Fields    []Field    `yaml:"fields"`
	Relations []Relation `yaml:"relations"`
}

// Field looks up a field by property name, falling back to column name.
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	for _, f := range e.Fields {
		if f.Column == name {
			return f, true
		}
	}
	return Field{}, false
}

// Relation looks up a relation by property name.
func (e *Entity) Relation(name string) (Relation, bool) {
	for _, r := range e.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}

// PrimaryKey returns the primary key field. Entities held by a Registry
// always have exactly one.
func (e *Entity) PrimaryKey() Field {
	for _, f := range e.Fields {
		if f.PrimaryKey {
			return f
		}
	}
	return Field{}
}
