package orm

import (
	"fmt"
	"math"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Dialect abstracts SQL differences between database engines.
type Dialect interface {
	// Name returns a short identifier, e.g. "mysql".
	Name() string

	// QuoteIdent quotes an identifier (table name, column name, alias) to
	// safely handle SQL reserved words. MySQL uses backticks; PostgreSQL
	// uses double quotes; SQL Server uses brackets. An embedded closing
	// quote is doubled.
	QuoteIdent(name string) string

	// PlaceholderFormat rewrites "?" bind parameters into the engine's
	// native form ("?", "$1", "@p1").
	PlaceholderFormat() sq.PlaceholderFormat

	// Paginate appends the skip/take window to an ordered SELECT.
	Paginate(b sq.SelectBuilder, p Pagination) sq.SelectBuilder
}

// MySQL is the Dialect for MySQL / MariaDB.
var MySQL Dialect = mysqlDialect{}

// PostgreSQL is the Dialect for PostgreSQL.
var PostgreSQL Dialect = postgresDialect{}

// SQLServer is the Dialect for Microsoft SQL Server (2012 and later).
var SQLServer Dialect = sqlServerDialect{}

// DialectFor maps a database/sql driver name to its Dialect.
func DialectFor(driverName string) (Dialect, error) {
	switch driverName {
	case "mysql":
		return MySQL, nil
	case "pgx", "postgres":
		return PostgreSQL, nil
	case "sqlserver", "mssql":
		return SQLServer, nil
	default:
		return nil, fmt.Errorf("orm: no dialect for driver %q", driverName)
	}
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string                            { return "mysql" }
func (mysqlDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
func (mysqlDialect) PlaceholderFormat() sq.PlaceholderFormat { return sq.Question }

// MySQL has no OFFSET without LIMIT; the documented idiom is the largest
// unsigned BIGINT.
func (mysqlDialect) Paginate(b sq.SelectBuilder, p Pagination) sq.SelectBuilder {
	switch {
	case p.Take > 0:
		b = b.Limit(uint64(p.Take))
	case p.Skip > 0:
		b = b.Limit(math.MaxUint64)
	}
	if p.Skip > 0 {
		b = b.Offset(uint64(p.Skip))
	}
	return b
}

type postgresDialect struct{}

func (postgresDialect) Name() string                            { return "postgres" }
func (postgresDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
func (postgresDialect) PlaceholderFormat() sq.PlaceholderFormat { return sq.Dollar }

func (postgresDialect) Paginate(b sq.SelectBuilder, p Pagination) sq.SelectBuilder {
	if p.Take > 0 {
		b = b.Limit(uint64(p.Take))
	}
	if p.Skip > 0 {
		b = b.Offset(uint64(p.Skip))
	}
	return b
}

type sqlServerDialect struct{}

func (sqlServerDialect) Name() string                            { return "sqlserver" }
func (sqlServerDialect) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
func (sqlServerDialect) PlaceholderFormat() sq.PlaceholderFormat { return sq.AtP }

// OFFSET ... FETCH requires an ORDER BY, which SelectQuery always emits.
func (sqlServerDialect) Paginate(b sq.SelectBuilder, p Pagination) sq.SelectBuilder {
	if p.Skip == 0 && p.Take == 0 {
		return b
	}
	clause := fmt.Sprintf("OFFSET %d ROWS", p.Skip)
	if p.Take > 0 {
		clause += fmt.Sprintf(" FETCH NEXT %d ROWS ONLY", p.Take)
	}
	return b.Suffix(clause)
}
