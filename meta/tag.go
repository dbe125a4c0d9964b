package meta

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mickamy/aliasq/internal/naming"
)

// parseField maps one exported struct field to a Field or a Relation.
// typeName is the field's element type name with pointers, slices and
// package qualifiers stripped ("*model.Category" → "Category").
//
// Tag grammar:
//
//	db:"column,primaryKey,createdAt"   column may be empty to keep the default
//	db:"-"                             skip
//	rel:"belongs_to,foreign_key:category_id,references:id"
func parseField(goName, typeName string, tag reflect.StructTag) (*Field, *Relation, error) {
	if relTag, ok := tag.Lookup("rel"); ok {
		rel, err := parseRelTag(goName, typeName, relTag)
		if err != nil {
			return nil, nil, err
		}
		return nil, rel, nil
	}

	f := &Field{
		Name:       naming.LowerCamel(goName),
		Column:     naming.CamelToSnake(goName),
		PrimaryKey: goName == "ID",
		CreatedAt:  goName == "CreatedAt",
	}

	dbTag, ok := tag.Lookup("db")
	if !ok {
		return f, nil, nil
	}
	if dbTag == "-" {
		return nil, nil, nil
	}
	parts := strings.Split(dbTag, ",")
	if parts[0] != "" {
		f.Column = parts[0]
	}
	for _, opt := range parts[1:] {
		switch opt {
		case "primaryKey":
			f.PrimaryKey = true
		case "createdAt":
			f.CreatedAt = true
		}
	}
	return f, nil, nil
}

func parseRelTag(goName, typeName, relTag string) (*Relation, error) {
	parts := strings.Split(relTag, ",")
	rel := &Relation{
		Name:   naming.LowerCamel(goName),
		Kind:   RelationKind(parts[0]),
		Target: typeName,
	}
	for _, opt := range parts[1:] {
		key, val, ok := strings.Cut(opt, ":")
		if !ok {
			return nil, fmt.Errorf("meta: %s: malformed rel option %q", goName, opt)
		}
		switch key {
		case "foreign_key":
			rel.ForeignKey = val
		case "references":
			rel.References = val
		default:
			return nil, fmt.Errorf("meta: %s: unknown rel option %q", goName, key)
		}
	}
	return rel, nil
}

func baseTypeName(s string) string {
	s = strings.TrimLeft(s, "*[]")
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	return s
}
