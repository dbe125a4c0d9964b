package orm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/mickamy/aliasq/meta"
	"github.com/mickamy/aliasq/scope"
)

const (
	leftJoin  = "LEFT JOIN"
	innerJoin = "INNER JOIN"
)

// SelectQuery is a pending SELECT rooted at one entity.
// All builder methods return a new SelectQuery; the receiver is never
// modified. The first builder error is kept and returned by every
// terminal method without touching the database.
type SelectQuery struct {
	db    Querier
	nodes []aliasNode // nodes[0] is the root

	aliases  AliasTable
	wheres   []whereClause
	orderBys []string
	page     Pagination

	err error
}

// aliasNode is an entity reachable under a query alias.
type aliasNode struct {
	alias    string
	entity   *meta.Entity
	parent   string // empty for the root
	rel      meta.Relation
	joinType string
}

type whereClause struct {
	clause string
	args   []any
}

// CreateQueryBuilder starts a query over entity, addressed as alias in
// select paths, joins and raw clauses.
func CreateQueryBuilder(db Querier, entity, alias string) *SelectQuery {
	q := &SelectQuery{db: db}

	reg := db.registry()
	if reg == nil {
		q.err = configErrorf("CreateQueryBuilder", "no entity registry")
		return q
	}
	ent, ok := reg.Entity(entity)
	if !ok {
		q.err = configErrorf("CreateQueryBuilder", "unknown entity %q", entity)
		return q
	}
	if alias == "" {
		q.err = configErrorf("CreateQueryBuilder", "alias is required")
		return q
	}
	q.nodes = []aliasNode{{alias: alias, entity: ent}}
	return q
}

// clone returns a shallow copy with slices copied to avoid aliasing.
func (q *SelectQuery) clone() *SelectQuery {
	q2 := *q
	q2.nodes = append([]aliasNode(nil), q.nodes...)
	q2.aliases = AliasTable{specs: q.aliases.Resolve()}
	q2.wheres = append([]whereClause(nil), q.wheres...)
	q2.orderBys = append([]string(nil), q.orderBys...)
	return &q2
}

// Err returns the first error recorded while building the query.
func (q *SelectQuery) Err() error { return q.err }

// --- Builder methods ---

// Select replaces the selection with path, optionally exposed under alias.
// path is "alias.property" (or "alias.column"), or a bare alias to select
// every field of that entity under its property names.
func (q *SelectQuery) Select(path string, alias ...string) *SelectQuery {
	q2 := q.clone()
	q2.aliases = AliasTable{}
	q2.addSelect("Select", path, alias)
	return q2
}

// AddSelect appends path to the selection, optionally exposed under alias.
func (q *SelectQuery) AddSelect(path string, alias ...string) *SelectQuery {
	q2 := q.clone()
	q2.addSelect("AddSelect", path, alias)
	return q2
}

// LeftJoin joins the relation at path ("alias.relation") as joinAlias,
// keeping rows that have no related row.
func (q *SelectQuery) LeftJoin(path, joinAlias string) *SelectQuery {
	q2 := q.clone()
	q2.addJoin("LeftJoin", leftJoin, path, joinAlias)
	return q2
}

// InnerJoin joins the relation at path ("alias.relation") as joinAlias,
// dropping rows that have no related row.
func (q *SelectQuery) InnerJoin(path, joinAlias string) *SelectQuery {
	q2 := q.clone()
	q2.addJoin("InnerJoin", innerJoin, path, joinAlias)
	return q2
}

// Where adds a raw condition; conditions are joined with AND.
// Use "?" placeholders; they are rewritten for the dialect.
func (q *SelectQuery) Where(clause string, args ...any) *SelectQuery {
	q2 := q.clone()
	q2.wheres = append(q2.wheres, whereClause{clause, args})
	return q2
}

// OrderBy adds a raw ORDER BY term. Without any, rows are ordered by the
// root primary key.
func (q *SelectQuery) OrderBy(clause string) *SelectQuery {
	q2 := q.clone()
	q2.orderBys = append(q2.orderBys, clause)
	return q2
}

// Skip omits the first n ordered rows. n must not be negative.
func (q *SelectQuery) Skip(n int) *SelectQuery {
	q2 := q.clone()
	q2.ApplySkip(n)
	return q2
}

// Take returns at most n rows. n must be positive.
func (q *SelectQuery) Take(n int) *SelectQuery {
	q2 := q.clone()
	q2.ApplyTake(n)
	return q2
}

// Scopes applies the given scope.Scope values to the query.
func (q *SelectQuery) Scopes(scopes ...scope.Scope) *SelectQuery {
	q2 := q.clone()
	for _, s := range scopes {
		s.Apply(q2)
	}
	return q2
}

// --- scope.Applier implementation ---

func (q *SelectQuery) ApplyWhere(clause string, args []any) {
	q.wheres = append(q.wheres, whereClause{clause, args})
}

func (q *SelectQuery) ApplyOrderBy(clause string) {
	q.orderBys = append(q.orderBys, clause)
}

func (q *SelectQuery) ApplySkip(n int) {
	if n < 0 {
		q.fail(configErrorf("Skip", "negative skip %d", n))
		return
	}
	q.page.Skip = n
}

func (q *SelectQuery) ApplyTake(n int) {
	if n < 1 {
		q.fail(configErrorf("Take", "take must be positive, got %d", n))
		return
	}
	q.page.Take = n
}

func (q *SelectQuery) ApplyAddSelect(path, alias string) {
	q.addSelect("AddSelect", path, []string{alias})
}

var _ scope.Applier = (*SelectQuery)(nil)

func (q *SelectQuery) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

func (q *SelectQuery) node(alias string) (aliasNode, bool) {
	for _, n := range q.nodes {
		if n.alias == alias {
			return n, true
		}
	}
	return aliasNode{}, false
}

func (q *SelectQuery) addSelect(op, path string, alias []string) {
	if q.err != nil {
		return
	}
	if len(alias) > 1 {
		q.fail(configErrorf(op, "%q: more than one alias", path))
		return
	}
	as := ""
	if len(alias) == 1 {
		as = alias[0]
	}

	name, prop, hasProp := strings.Cut(path, ".")
	n, ok := q.node(name)
	if !ok {
		q.fail(configErrorf(op, "unknown alias %q in %q", name, path))
		return
	}
	if !hasProp {
		if as != "" {
			q.fail(configErrorf(op, "cannot alias whole entity selection %q", path))
			return
		}
		for _, f := range n.entity.Fields {
			q.aliases.Define(name+"."+f.Name, "")
		}
		return
	}
	if _, ok := n.entity.Field(prop); !ok {
		q.fail(configErrorf(op, "%s has no property %q", n.entity.Name, prop))
		return
	}
	q.aliases.Define(path, as)
}

func (q *SelectQuery) addJoin(op, joinType, path, joinAlias string) {
	if q.err != nil {
		return
	}
	parentAlias, relName, ok := strings.Cut(path, ".")
	if !ok {
		q.fail(configErrorf(op, "join path %q must be alias.relation", path))
		return
	}
	parent, ok := q.node(parentAlias)
	if !ok {
		q.fail(configErrorf(op, "unknown alias %q in %q", parentAlias, path))
		return
	}
	rel, ok := parent.entity.Relation(relName)
	if !ok {
		q.fail(configErrorf(op, "%s has no relation %q", parent.entity.Name, relName))
		return
	}
	if joinAlias == "" {
		q.fail(configErrorf(op, "join alias is required for %q", path))
		return
	}
	if _, dup := q.node(joinAlias); dup {
		q.fail(configErrorf(op, "alias %q is already in use", joinAlias))
		return
	}
	for _, n := range q.nodes[1:] {
		if n.parent == parentAlias && n.rel.Name == relName {
			q.fail(configErrorf(op, "%s is already joined as %q", path, n.alias))
			return
		}
	}
	target, ok := q.db.registry().Entity(rel.Target)
	if !ok {
		q.fail(configErrorf(op, "unknown entity %q", rel.Target))
		return
	}
	q.nodes = append(q.nodes, aliasNode{
		alias:    joinAlias,
		entity:   target,
		parent:   parentAlias,
		rel:      rel,
		joinType: joinType,
	})
}

// --- Terminal methods ---

// GetManyWithAlias executes the query and hydrates each row into a Record
// keyed by the selected aliases, with joined selections nested under their
// relation names.
func (q *SelectQuery) GetManyWithAlias(ctx context.Context) ([]*Record, error) {
	query, args, plan, err := q.build()
	if err != nil {
		return nil, err
	}
	raw, err := q.fetch(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return Hydrate(raw, plan), nil
}

// Execute is an alias for GetManyWithAlias.
func (q *SelectQuery) Execute(ctx context.Context) ([]*Record, error) {
	return q.GetManyWithAlias(ctx)
}

// GetOneWithAlias executes the query with Take(1) and returns the first
// record. Returns ErrNotFound if no rows match.
func (q *SelectQuery) GetOneWithAlias(ctx context.Context) (*Record, error) {
	records, err := q.Take(1).GetManyWithAlias(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records[0], nil
}

// GetRawMany executes the query and returns the rows keyed by result
// column label ("<alias>_<column>") without hydration.
func (q *SelectQuery) GetRawMany(ctx context.Context) ([]RawRow, error) {
	query, args, _, err := q.build()
	if err != nil {
		return nil, err
	}
	return q.fetch(ctx, query, args)
}

// Count returns the number of rows matching the joins and conditions,
// ignoring selection, ordering and pagination.
func (q *SelectQuery) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	query, args, err := q.from(q.builder().Select("COUNT(*)")).ToSql()
	if err != nil {
		return 0, err //nolint:wrapcheck // pass through
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, &ExecutionError{SQL: query, Err: err}
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, &ExecutionError{SQL: query, Err: err}
		}
		return 0, &ExecutionError{SQL: query, Err: errors.New("COUNT returned no rows")}
	}
	var count int64
	if err := rows.Scan(&count); err != nil {
		return 0, &ExecutionError{SQL: query, Err: err}
	}
	if err := rows.Err(); err != nil {
		return 0, &ExecutionError{SQL: query, Err: err}
	}
	return count, nil
}

// ToSQL renders the SELECT and its bind arguments.
func (q *SelectQuery) ToSQL() (string, []any, error) {
	query, args, _, err := q.build()
	return query, args, err
}

func (q *SelectQuery) fetch(ctx context.Context, query string, args []any) ([]RawRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ExecutionError{SQL: query, Err: err}
	}
	defer func() { _ = rows.Close() }()

	raw, err := ScanRows(rows)
	if err != nil {
		return nil, &ExecutionError{SQL: query, Err: err}
	}
	return raw, nil
}

// --- SQL building ---

// qi quotes an identifier (table/column name) using the dialect.
func (q *SelectQuery) qi(name string) string {
	return q.db.dialect().QuoteIdent(name)
}

func (q *SelectQuery) col(alias, column string) string {
	return q.qi(alias) + "." + q.qi(column)
}

func (q *SelectQuery) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(q.db.dialect().PlaceholderFormat())
}

// from adds the FROM, JOIN and WHERE clauses shared by SELECT and COUNT.
func (q *SelectQuery) from(b sq.SelectBuilder) sq.SelectBuilder {
	root := q.nodes[0]
	b = b.From(q.qi(root.entity.Table) + " " + q.qi(root.alias))

	for _, n := range q.nodes[1:] {
		var on string
		switch n.rel.Kind {
		case meta.BelongsTo:
			on = q.col(n.alias, n.rel.References) + " = " + q.col(n.parent, n.rel.ForeignKey)
		default:
			on = q.col(n.alias, n.rel.ForeignKey) + " = " + q.col(n.parent, n.rel.References)
		}
		b = b.JoinClause(n.joinType + " " + q.qi(n.entity.Table) + " " + q.qi(n.alias) + " ON " + on)
	}

	for _, w := range q.wheres {
		b = b.Where(w.clause, w.args...)
	}
	return b
}

func (q *SelectQuery) build() (string, []any, *Level, error) {
	if q.err != nil {
		return "", nil, nil, q.err
	}

	columns, plan := q.resolve()
	b := q.from(q.builder().Select(columns...))

	if len(q.orderBys) > 0 {
		b = b.OrderBy(q.orderBys...)
	} else {
		root := q.nodes[0]
		b = b.OrderBy(q.col(root.alias, root.entity.PrimaryKey().Column) + " ASC")
	}
	b = q.db.dialect().Paginate(b, q.page)

	query, args, err := b.ToSql()
	if err != nil {
		return "", nil, nil, err //nolint:wrapcheck // pass through
	}
	return query, args, plan, nil
}

// resolve turns the alias table into SELECT column expressions and the
// hydration plan. Every path was validated when it was added.
func (q *SelectQuery) resolve() ([]string, *Level) {
	specs := q.aliases.Resolve()
	root := q.nodes[0]
	if len(specs) == 0 {
		for _, f := range root.entity.Fields {
			specs = append(specs, AliasSpec{SourcePath: root.alias + "." + f.Name})
		}
	}

	plan := &Level{Alias: root.alias}
	levels := map[string]*Level{root.alias: plan}
	var levelOf func(alias string) *Level
	levelOf = func(alias string) *Level {
		if lv, ok := levels[alias]; ok {
			return lv
		}
		n, _ := q.node(alias)
		parent := levelOf(n.parent)
		lv := &Level{Alias: alias, Key: n.rel.Name}
		parent.addChild(lv)
		levels[alias] = lv
		return lv
	}

	var columns []string
	// labels maps each selected (alias, column) pair to its result label;
	// taken guards against two pairs rendering the same "<alias>_<column>".
	type source struct{ alias, column string }
	labels := make(map[source]string, len(specs))
	taken := make(map[string]bool, len(specs))
	for _, s := range specs {
		alias, prop, _ := strings.Cut(s.SourcePath, ".")
		n, _ := q.node(alias)
		f, _ := n.entity.Field(prop)

		src := source{alias, f.Column}
		label, ok := labels[src]
		if !ok {
			label = alias + "_" + f.Column
			for i := 2; taken[label]; i++ {
				label = fmt.Sprintf("%s_%s_%d", alias, f.Column, i)
			}
			labels[src] = label
			taken[label] = true
			columns = append(columns, q.col(alias, f.Column)+" AS "+q.qi(label))
		}

		key := s.Alias
		if key == "" {
			key = f.Name
		}
		levelOf(alias).addColumn(key, label)
	}
	return columns, plan
}
