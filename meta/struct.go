package meta

import (
	"fmt"
	"reflect"
)

// FromStruct builds an Entity from the exported fields of struct type T.
// Fields follow the tag grammar of parseField; untagged exported fields are
// mapped with inferred column names. The table name comes from TableNamer
// when T implements it and is otherwise left for NewRegistry to infer.
func FromStruct[T any]() (Entity, error) {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return Entity{}, fmt.Errorf("meta: %s is not a struct", typ)
	}

	ent := Entity{
		Name:  typ.Name(),
		Table: ResolveTableName[T](""),
	}
	for i := range typ.NumField() {
		sf := typ.Field(i)
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		f, rel, err := parseField(sf.Name, baseTypeName(elemType(sf.Type).Name()), sf.Tag)
		if err != nil {
			return Entity{}, err
		}
		switch {
		case rel != nil:
			ent.Relations = append(ent.Relations, *rel)
		case f != nil:
			ent.Fields = append(ent.Fields, *f)
		}
	}
	return ent, nil
}

func elemType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	return t
}
