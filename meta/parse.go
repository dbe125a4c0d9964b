package meta

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strings"
)

// ParseFile reads the Go file at filePath and returns an Entity for every
// struct type declared in it that maps at least one field. Struct tags use
// the same grammar as FromStruct.
func ParseFile(filePath string) ([]Entity, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse file: %w", err)
	}

	var (
		entities []Entity
		parseErr error
	)
	ast.Inspect(file, func(n ast.Node) bool {
		if parseErr != nil {
			return false
		}
		ts, ok := n.(*ast.TypeSpec)
		if !ok {
			return true
		}
		st, ok := ts.Type.(*ast.StructType)
		if !ok {
			return true
		}

		ent, err := parseStruct(ts.Name.Name, st)
		if err != nil {
			parseErr = err
			return false
		}
		if len(ent.Fields) == 0 {
			return true
		}
		entities = append(entities, ent)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return entities, nil
}

func parseStruct(name string, st *ast.StructType) (Entity, error) {
	ent := Entity{Name: name}
	for _, field := range st.Fields.List {
		// Embedded and unexported fields are skipped.
		if len(field.Names) == 0 || !field.Names[0].IsExported() {
			continue
		}

		var tag reflect.StructTag
		if field.Tag != nil {
			tag = reflect.StructTag(strings.Trim(field.Tag.Value, "`"))
		}
		f, rel, err := parseField(field.Names[0].Name, baseTypeName(typeToString(field.Type)), tag)
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

func typeToString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return typeToString(t.X) + "." + t.Sel.Name
	case *ast.StarExpr:
		return "*" + typeToString(t.X)
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + typeToString(t.Elt)
		}
		return fmt.Sprintf("[%s]%s", typeToString(t.Len), typeToString(t.Elt))
	default:
		return fmt.Sprintf("%T", expr)
	}
}
