package orm

import (
	"context"
	"time"
)

// Clock supplies the timestamp Insert writes into CreatedAt fields that a
// row leaves out. Fixtures pin it with WithClock.
type Clock interface {
	Now() time.Time
}

type clockKey struct{}

// WithClock returns ctx carrying c for Insert.
func WithClock(ctx context.Context, c Clock) context.Context {
	return context.WithValue(ctx, clockKey{}, c)
}

// now is the CreatedAt value for one Insert statement; every row of the
// statement shares it.
func now(ctx context.Context) time.Time {
	if c, ok := ctx.Value(clockKey{}).(Clock); ok {
		return c.Now()
	}
	return time.Now()
}
