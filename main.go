package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/mickamy/aliasq/internal/config"
	"github.com/mickamy/aliasq/orm"
)

var version = "dev"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}

// step is one query-building flag. Steps are applied in command-line order
// so that a join is declared before its columns are selected.
type step struct {
	kind  string
	value string
}

type stepFlag struct {
	kind  string
	steps *[]step
}

func (f stepFlag) String() string { return "" }

func (f stepFlag) Set(v string) error {
	*f.steps = append(*f.steps, step{kind: f.kind, value: v})
	return nil
}

type options struct {
	configPath string
	from       string
	steps      []step
	skip       int
	take       int
	dryRun     bool
	count      bool
}

func parseFlags(args []string, stderr io.Writer) (*options, bool, error) {
	fs := flag.NewFlagSet("aliasq", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.configPath, "config", "aliasq.yaml", "configuration file")
	fs.StringVar(&o.from, "from", "", "root entity and alias, e.g. Post:post (required)")
	for _, kind := range []string{"select", "left-join", "inner-join", "where", "order-by"} {
		fs.Var(stepFlag{kind: kind, steps: &o.steps}, kind, stepUsage[kind])
	}
	fs.IntVar(&o.skip, "skip", 0, "rows to skip")
	fs.IntVar(&o.take, "take", 0, "maximum rows to return (0 for no limit)")
	fs.BoolVar(&o.dryRun, "dry-run", false, "print the SQL instead of executing it")
	fs.BoolVar(&o.count, "count", false, "print the number of matching rows")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, false, err //nolint:wrapcheck // flag already reports
	}
	if *showVersion {
		return nil, true, nil
	}
	if o.from == "" {
		return nil, false, errors.New("-from flag is required")
	}
	return o, false, nil
}

var stepUsage = map[string]string{
	"select":     "path[=Alias] to select, e.g. post.id=IdOfPost (repeatable)",
	"left-join":  "path=alias to left join, e.g. post.category=category (repeatable)",
	"inner-join": "path=alias to inner join (repeatable)",
	"where":      "raw condition, e.g. \"post.id > 1\" (repeatable)",
	"order-by":   "raw ORDER BY expression (repeatable)",
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	o, versionOnly, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	if versionOnly {
		_, _ = fmt.Fprintln(stdout, "aliasq", version)
		return nil
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err //nolint:wrapcheck // already prefixed
	}
	d, err := cfg.Dialect()
	if err != nil {
		return err //nolint:wrapcheck // already prefixed
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err //nolint:wrapcheck // already prefixed
	}

	if o.dryRun {
		q, err := buildQuery(orm.New(nil, d, reg), o)
		if err != nil {
			return err
		}
		query, qargs, err := q.ToSQL()
		if err != nil {
			return err //nolint:wrapcheck // configuration error
		}
		_, _ = fmt.Fprintln(stdout, query)
		if len(qargs) > 0 {
			_, _ = fmt.Fprintln(stdout, "-- args:", qargs)
		}
		return nil
	}

	sqlDB, err := orm.Open(ctx, cfg.Driver, cfg.DSN, cfg.Pool)
	if err != nil {
		return err //nolint:wrapcheck // already prefixed
	}
	defer func() { _ = sqlDB.Close() }()

	db := orm.New(sqlDB, d, reg)
	if cfg.Debug {
		db = db.Debug(orm.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)), slog.LevelInfo))
	}

	q, err := buildQuery(db, o)
	if err != nil {
		return err
	}
	if o.count {
		n, err := q.Count(ctx)
		if err != nil {
			return err //nolint:wrapcheck // already typed
		}
		_, _ = fmt.Fprintln(stdout, n)
		return nil
	}

	records, err := q.GetManyWithAlias(ctx)
	if err != nil {
		return err //nolint:wrapcheck // already typed
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if records == nil {
		records = []*orm.Record{}
	}
	return enc.Encode(records) //nolint:wrapcheck // write error
}

// buildQuery turns the parsed flags into a query against db.
func buildQuery(db orm.Querier, o *options) (*orm.SelectQuery, error) {
	entity, alias, ok := strings.Cut(o.from, ":")
	if !ok || entity == "" || alias == "" {
		return nil, fmt.Errorf("-from %q: want Entity:alias", o.from)
	}

	q := orm.CreateQueryBuilder(db, entity, alias)
	for _, s := range o.steps {
		path, name, _ := strings.Cut(s.value, "=")
		switch s.kind {
		case "select":
			if name == "" {
				q = q.AddSelect(path)
			} else {
				q = q.AddSelect(path, name)
			}
		case "left-join":
			q = q.LeftJoin(path, name)
		case "inner-join":
			q = q.InnerJoin(path, name)
		case "where":
			q = q.Where(s.value)
		case "order-by":
			q = q.OrderBy(s.value)
		}
	}
	if o.skip != 0 {
		q = q.Skip(o.skip)
	}
	if o.take != 0 {
		q = q.Take(o.take)
	}
	return q, q.Err() //nolint:wrapcheck // configuration error
}

