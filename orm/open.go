package orm

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Options configures the connection pool opened by Open.
type Options struct {
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	PingTimeout     time.Duration `yaml:"pingTimeout"`
}

// DefaultOptions returns the pool settings used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// Open opens a pool for driverName, applies opt and pings the server.
// The driver must already be registered with database/sql.
func Open(ctx context.Context, driverName, dsn string, opt Options) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("orm: open %s: %w", driverName, err)
	}

	if opt.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opt.MaxOpenConns)
	}
	if opt.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opt.MaxIdleConns)
	}
	if opt.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opt.ConnMaxLifetime)
	}
	if opt.PingTimeout <= 0 {
		opt.PingTimeout = 5 * time.Second
	}

	pingCtx, cancel := context.WithTimeout(ctx, opt.PingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("orm: ping %s: %w", driverName, err)
	}
	return db, nil
}
