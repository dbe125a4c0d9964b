package orm

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// RawRow is one result row keyed by column label.
type RawRow map[string]any

// ScanRows reads every remaining row of rows. []byte values are returned
// as strings.
func ScanRows(rows *sql.Rows) ([]RawRow, error) {
	var out []RawRow
	for rows.Next() {
		row := make(RawRow)
		if err := sqlx.MapScan(rows, row); err != nil {
			return nil, err //nolint:wrapcheck // pass through
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		out = append(out, row)
	}
	return out, rows.Err() //nolint:wrapcheck // pass through
}

// Hydrate turns raw rows into records shaped by plan. Every entry of the
// plan yields a key; a label missing from a row yields nil. Nested levels
// are produced even when a left join matched nothing.
func Hydrate(rows []RawRow, plan *Level) []*Record {
	out := make([]*Record, len(rows))
	for i, row := range rows {
		out[i] = hydrateLevel(row, plan)
	}
	return out
}

func hydrateLevel(row RawRow, lv *Level) *Record {
	rec := NewRecord()
	for _, e := range lv.Entries {
		if e.Level != nil {
			rec.Set(e.Key, hydrateLevel(row, e.Level))
			continue
		}
		rec.Set(e.Key, row[e.Label])
	}
	return rec
}
