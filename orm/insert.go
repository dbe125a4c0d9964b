package orm

import (
	"context"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"github.com/mickamy/aliasq/meta"
)

// Values holds one row to insert, keyed by property or column name.
type Values map[string]any

// Insert writes rows of entity in a single INSERT statement. Every row must
// carry the same keys. Keys are property names, column names, or the
// foreign key column of a belongs_to relation. CreatedAt fields missing
// from a row are set from the context Clock.
func Insert(ctx context.Context, db Querier, entity string, rows ...Values) error {
	if len(rows) == 0 {
		return nil
	}
	reg := db.registry()
	if reg == nil {
		return configErrorf("Insert", "no entity registry")
	}
	ent, ok := reg.Entity(entity)
	if !ok {
		return configErrorf("Insert", "unknown entity %q", entity)
	}

	columns, keys, err := insertColumns(ent, rows[0])
	if err != nil {
		return err
	}

	d := db.dialect()
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdent(c)
	}
	b := sq.StatementBuilder.
		PlaceholderFormat(d.PlaceholderFormat()).
		Insert(d.QuoteIdent(ent.Table)).
		Columns(quoted...)

	ts := now(ctx)
	for i, row := range rows {
		if len(row) != len(rows[0]) {
			return configErrorf("Insert", "row %d has %d keys, want %d", i, len(row), len(rows[0]))
		}
		vals := make([]any, len(columns))
		for j, key := range keys {
			if key == "" {
				vals[j] = ts
				continue
			}
			v, ok := row[key]
			if !ok {
				return configErrorf("Insert", "row %d is missing %q", i, key)
			}
			vals[j] = v
		}
		b = b.Values(vals...)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return err //nolint:wrapcheck // pass through
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return &ExecutionError{SQL: query, Err: err}
	}
	return nil
}

// insertColumns maps the keys of a sample row to columns in field order,
// followed by relation foreign keys. keys[i] is the row key feeding
// columns[i], or "" for a CreatedAt column filled from the clock.
func insertColumns(ent *meta.Entity, sample Values) (columns, keys []string, err error) {
	used := make(map[string]bool, len(sample))
	for _, f := range ent.Fields {
		switch {
		case has(sample, f.Name):
			columns, keys = append(columns, f.Column), append(keys, f.Name)
			used[f.Name] = true
		case has(sample, f.Column):
			columns, keys = append(columns, f.Column), append(keys, f.Column)
			used[f.Column] = true
		case f.CreatedAt:
			columns, keys = append(columns, f.Column), append(keys, "")
		}
	}
	for _, rel := range ent.Relations {
		if rel.Kind != meta.BelongsTo || used[rel.ForeignKey] || !has(sample, rel.ForeignKey) {
			continue
		}
		columns, keys = append(columns, rel.ForeignKey), append(keys, rel.ForeignKey)
		used[rel.ForeignKey] = true
	}

	var unknown []string
	for k := range sample {
		if !used[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, nil, configErrorf("Insert", "%s has no column for %q", ent.Name, unknown)
	}
	return columns, keys, nil
}

func has(v Values, key string) bool {
	_, ok := v[key]
	return ok
}
