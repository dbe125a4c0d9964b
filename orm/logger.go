package orm

import (
	"context"
	"log/slog"
)

type slogLogger struct {
	l     *slog.Logger
	level slog.Level
}

// NewSlogLogger adapts l to Logger. Each query is emitted as one record at
// the given level with "sql" and "args" attributes.
func NewSlogLogger(l *slog.Logger, level slog.Level) Logger {
	return slogLogger{l: l, level: level}
}

func (s slogLogger) Log(ctx context.Context, query string, args ...any) {
	s.l.LogAttrs(ctx, s.level, "query", slog.String("sql", query), slog.Any("args", args))
}
