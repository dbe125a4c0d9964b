package orm

import (
	"bytes"
	"encoding/json"
)

// Record is a hydrated result row: an ordered, dynamically keyed container
// whose keys are the selected aliases or property names. Values of joined
// relations are nested *Record.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores v under key. A key keeps the position of its first Set.
func (r *Record) Set(key string, v any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value under key and whether the key is present.
// A present key may hold nil (NULL or missing column).
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Nested returns the nested record under key, or nil.
func (r *Record) Nested(key string) *Record {
	nested, _ := r.values[key].(*Record)
	return nested
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len reports the number of keys.
func (r *Record) Len() int { return len(r.keys) }

// Map converts the record, and every nested record, into plain maps.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		if nested, ok := r.values[k].(*Record); ok {
			m[k] = nested.Map()
			continue
		}
		m[k] = r.values[k]
	}
	return m
}

// MarshalJSON encodes the record as a JSON object in key order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err //nolint:wrapcheck // pass through
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err //nolint:wrapcheck // pass through
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
