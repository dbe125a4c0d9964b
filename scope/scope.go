package scope

import "strings"

// Applier is implemented by query builders to receive scope fragments.
// This interface lives in the scope package so that orm can import scope
// without creating circular dependencies.
type Applier interface {
	ApplyWhere(clause string, args []any)
	ApplyOrderBy(clause string)
	ApplySkip(n int)
	ApplyTake(n int)
	ApplyAddSelect(path, alias string)
}

type scopeKind int

const (
	kindWhere scopeKind = iota
	kindOrderBy
	kindSkip
	kindTake
	kindAddSelect
)

// Scope represents a single query condition fragment.
// Scopes are immutable and safe to reuse across queries.
type Scope struct {
	kind   scopeKind
	clause string
	alias  string
	args   []any
	n      int
}

// Apply dispatches this Scope to the given Applier.
func (s Scope) Apply(a Applier) {
	switch s.kind {
	case kindWhere:
		a.ApplyWhere(s.clause, s.args)
	case kindOrderBy:
		a.ApplyOrderBy(s.clause)
	case kindSkip:
		a.ApplySkip(s.n)
	case kindTake:
		a.ApplyTake(s.n)
	case kindAddSelect:
		a.ApplyAddSelect(s.clause, s.alias)
	}
}

// Where returns a Scope that adds a WHERE clause fragment.
//
//	scope.Where("age > ?", 18)
//	scope.Where("name = ? AND role = ?", "alice", "admin")
func Where(clause string, args ...any) Scope {
	return Scope{kind: kindWhere, clause: clause, args: args}
}

// OrderBy returns a Scope that sets the ORDER BY clause.
//
//	scope.OrderBy("created_at DESC")
func OrderBy(clause string) Scope {
	return Scope{kind: kindOrderBy, clause: clause}
}

// Skip returns a Scope that omits the first n ordered rows.
func Skip(n int) Scope {
	return Scope{kind: kindSkip, n: n}
}

// Take returns a Scope that caps the result at n rows.
func Take(n int) Scope {
	return Scope{kind: kindTake, n: n}
}

// Paginate returns the Skip and Take scopes for a 1-based page number.
// Pages below 1 are treated as page 1.
//
//	Posts(db).Scopes(scope.Paginate(2, 20)...)  // rows 21-40
func Paginate(page, perPage int) Scopes {
	if page < 1 {
		page = 1
	}
	return Combine(Skip((page-1)*perPage), Take(perPage))
}

// AddSelect returns a Scope that appends a selection, optionally under an
// alias.
//
//	scope.AddSelect("category.name", "NameOfCategory")
func AddSelect(path string, alias ...string) Scope {
	s := Scope{kind: kindAddSelect, clause: path}
	if len(alias) > 0 {
		s.alias = alias[0]
	}
	return s
}

// In returns a WHERE scope with an IN clause, expanding the slice into
// individual placeholders. No reflection is used; generics handle the
// type conversion.
//
//	scope.In("post.id", []int{1, 2, 3})  // → WHERE post.id IN (?, ?, ?)
func In[T any](column string, values []T) Scope {
	if len(values) == 0 {
		return Where("1 = 0")
	}
	placeholders := repeatJoin("?", len(values))
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return Where(column+" IN ("+placeholders+")", args...)
}

// Scopes is a named slice of Scope, useful for conditionally building
// up a set of scopes.
//
//	var s scope.Scopes
//	if onlyActive {
//	    s = s.Append(Active)
//	}
//	s = s.Merge(scope.Paginate(page, perPage))
//	orm.CreateQueryBuilder(db, "Post", "post").Scopes(s...).GetManyWithAlias(ctx)
type Scopes []Scope

// Append adds scopes and returns a new Scopes. The receiver is not modified.
func (ss Scopes) Append(scopes ...Scope) Scopes {
	return append(append(Scopes(nil), ss...), scopes...)
}

// Merge concatenates two Scopes and returns a new Scopes.
// Neither receiver nor argument is modified.
func (ss Scopes) Merge(other Scopes) Scopes {
	return append(append(Scopes(nil), ss...), other...)
}

// Combine creates a Scopes from the given scopes.
//
//	scope.Combine(scope.Take(10), scope.Skip(20))
func Combine(scopes ...Scope) Scopes {
	return Scopes(scopes)
}

func repeatJoin(s string, count int) string {
	if count <= 0 {
		return ""
	}
	parts := make([]string, count)
	for i := range parts {
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}
