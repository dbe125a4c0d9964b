package orm

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a query expects exactly one row but finds none.
var ErrNotFound = errors.New("orm: not found")

// ConfigurationError reports a query that cannot be built against the
// registered metadata: unknown entities, aliases, properties or relations,
// and invalid pagination. It is detected while the query is being built
// and returned by the terminal methods before any SQL is sent.
type ConfigurationError struct {
	Op  string // builder method that failed, e.g. "LeftJoin"
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "orm: " + e.Op + ": " + e.Msg
}

func configErrorf(op, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// ExecutionError wraps a failure reported by the database driver while
// running SQL or reading its result. Unwrap returns the driver error as is.
type ExecutionError struct {
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return "orm: execute: " + e.Err.Error()
}

func (e *ExecutionError) Unwrap() error { return e.Err }
