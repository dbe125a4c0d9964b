package orm_test

import (
	"errors"
	"testing"

	"github.com/mickamy/aliasq/orm"
	"github.com/mickamy/aliasq/scope"
)

func newTestQuery(tq *orm.TestQuerier) *orm.SelectQuery {
	return orm.CreateQueryBuilder(tq, "Post", "post")
}

// aliasedPosts is the query used throughout: aliased root key, plain
// title, and an aliased column of the left joined category.
func aliasedPosts(tq *orm.TestQuerier) *orm.SelectQuery {
	return newTestQuery(tq).
		Select("post.id", "IdOfPost").
		AddSelect("post.title").
		LeftJoin("post.category", "category").
		AddSelect("category.name", "NameOfCategory")
}

func toSQL(t *testing.T, q *orm.SelectQuery) (string, []any) {
	t.Helper()

	query, args, err := q.ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}
	return query, args
}

// --- SELECT (MySQL) ---

func TestBuildSelectDefaultColumns(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
	got, _ := toSQL(t, newTestQuery(tq))

	want := "SELECT `post`.`id` AS `post_id`, `post`.`title` AS `post_title`, `post`.`created_at` AS `post_created_at` " +
		"FROM `posts` `post` ORDER BY `post`.`id` ASC"
	if got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
}

func TestBuildSelectWithAlias(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
	got, _ := toSQL(t, aliasedPosts(tq))

	want := "SELECT `post`.`id` AS `post_id`, `post`.`title` AS `post_title`, `category`.`name` AS `category_name` " +
		"FROM `posts` `post` LEFT JOIN `categories` `category` ON `category`.`id` = `post`.`category_id` " +
		"ORDER BY `post`.`id` ASC"
	if got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
}

func TestBuildSelectInnerJoinHasMany(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
	q := orm.CreateQueryBuilder(tq, "Category", "c").
		Select("c.name").
		InnerJoin("c.posts", "p").
		AddSelect("p.title", "PostTitle")
	got, _ := toSQL(t, q)

	want := "SELECT `c`.`name` AS `c_name`, `p`.`title` AS `p_title` " +
		"FROM `categories` `c` INNER JOIN `posts` `p` ON `p`.`category_id` = `c`.`id` " +
		"ORDER BY `c`.`id` ASC"
	if got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
}

func TestBuildSelectWholeAlias(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
	q := newTestQuery(tq).
		Select("post.title").
		LeftJoin("post.category", "category").
		AddSelect("category")
	got, _ := toSQL(t, q)

	want := "SELECT `post`.`title` AS `post_title`, `category`.`id` AS `category_id`, " +
		"`category`.`name` AS `category_name`, `category`.`parent_id` AS `category_parent_id` " +
		"FROM `posts` `post` LEFT JOIN `categories` `category` ON `category`.`id` = `post`.`category_id` " +
		"ORDER BY `post`.`id` ASC"
	if got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
}

func TestBuildSelectDuplicatePathSelectedOnce(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
	q := newTestQuery(tq).Select("post.id", "A").AddSelect("post.id", "B")
	got, _ := toSQL(t, q)

	want := "SELECT `post`.`id` AS `post_id` FROM `posts` `post` ORDER BY `post`.`id` ASC"
	if got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
}

func TestBuildSelectWhereOrderBy(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
	q := aliasedPosts(tq).
		Where("category.name = ?", "category1").
		Where("post.id > ?", 1).
		OrderBy("post.title DESC")
	got, args := toSQL(t, q)

	want := "SELECT `post`.`id` AS `post_id`, `post`.`title` AS `post_title`, `category`.`name` AS `category_name` " +
		"FROM `posts` `post` LEFT JOIN `categories` `category` ON `category`.`id` = `post`.`category_id` " +
		"WHERE category.name = ? AND post.id > ? ORDER BY post.title DESC"
	if got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
	if len(args) != 2 || args[0] != "category1" || args[1] != 1 {
		t.Errorf("Args = %v", args)
	}
}

// --- Pagination per dialect ---

func TestBuildSelectPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dialect orm.Dialect
		skip    int
		take    int
		suffix  string
	}{
		{"MySQL skip take", orm.MySQL, 1, 2, " LIMIT 2 OFFSET 1"},
		{"MySQL take", orm.MySQL, 0, 2, " LIMIT 2"},
		{"MySQL skip", orm.MySQL, 1, 0, " LIMIT 18446744073709551615 OFFSET 1"},
		{"PostgreSQL skip take", orm.PostgreSQL, 1, 2, " LIMIT 2 OFFSET 1"},
		{"PostgreSQL skip", orm.PostgreSQL, 1, 0, " OFFSET 1"},
		{"SQLServer skip take", orm.SQLServer, 1, 2, " OFFSET 1 ROWS FETCH NEXT 2 ROWS ONLY"},
		{"SQLServer take", orm.SQLServer, 0, 2, " OFFSET 0 ROWS FETCH NEXT 2 ROWS ONLY"},
		{"SQLServer skip", orm.SQLServer, 3, 0, " OFFSET 3 ROWS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tq := orm.NewTestQuerier(tt.dialect, blogRegistry())
			q := newTestQuery(tq).Select("post.id")
			if tt.skip > 0 {
				q = q.Skip(tt.skip)
			}
			if tt.take > 0 {
				q = q.Take(tt.take)
			}
			got, _ := toSQL(t, q)

			qi := tt.dialect.QuoteIdent
			want := "SELECT " + qi("post") + "." + qi("id") + " AS " + qi("post_id") +
				" FROM " + qi("posts") + " " + qi("post") +
				" ORDER BY " + qi("post") + "." + qi("id") + " ASC" + tt.suffix
			if got != want {
				t.Errorf("SQL = %q, want %q", got, want)
			}
		})
	}
}

// --- Placeholders ---

func TestRewritePostgreSQLSelect(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.PostgreSQL, blogRegistry())
	q := aliasedPosts(tq).Where("category.name = ?", "category1").Where("post.id > ?", 1).Skip(1).Take(2)
	got, _ := toSQL(t, q)

	want := `SELECT "post"."id" AS "post_id", "post"."title" AS "post_title", "category"."name" AS "category_name" ` +
		`FROM "posts" "post" LEFT JOIN "categories" "category" ON "category"."id" = "post"."category_id" ` +
		`WHERE category.name = $1 AND post.id > $2 ORDER BY "post"."id" ASC LIMIT 2 OFFSET 1`
	if got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
}

func TestRewriteSQLServerSelect(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.SQLServer, blogRegistry())
	q := newTestQuery(tq).Select("post.title").Where("post.id IN (?, ?)", 1, 2)
	got, _ := toSQL(t, q)

	want := "SELECT [post].[title] AS [post_title] FROM [posts] [post] WHERE post.id IN (@p1, @p2) ORDER BY [post].[id] ASC"
	if got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
}

// --- Nested joins ---

func TestBuildSelectNestedJoin(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
	q := newTestQuery(tq).
		Select("post.title").
		LeftJoin("post.category", "category").
		LeftJoin("category.parent", "parent").
		AddSelect("parent.name", "ParentName")
	got, _ := toSQL(t, q)

	want := "SELECT `post`.`title` AS `post_title`, `parent`.`name` AS `parent_name` " +
		"FROM `posts` `post` LEFT JOIN `categories` `category` ON `category`.`id` = `post`.`category_id` " +
		"LEFT JOIN `categories` `parent` ON `parent`.`id` = `category`.`parent_id` " +
		"ORDER BY `post`.`id` ASC"
	if got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
}

// --- Scopes ---

func TestBuildSelectWithScopes(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
	q := newTestQuery(tq).
		Select("post.id", "IdOfPost").
		LeftJoin("post.category", "category").
		Scopes(
			scope.AddSelect("category.name", "NameOfCategory"),
			scope.Where("post.title = ?", "post1"),
			scope.OrderBy("post.id DESC"),
		).
		Scopes(scope.Paginate(2, 5)...)
	got, _ := toSQL(t, q)

	want := "SELECT `post`.`id` AS `post_id`, `category`.`name` AS `category_name` " +
		"FROM `posts` `post` LEFT JOIN `categories` `category` ON `category`.`id` = `post`.`category_id` " +
		"WHERE post.title = ? ORDER BY post.id DESC LIMIT 5 OFFSET 5"
	if got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
}

// --- Immutability ---

func TestQueryImmutability(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
	base := newTestQuery(tq).Select("post.id")

	_ = base.AddSelect("post.title")
	_ = base.LeftJoin("post.category", "category")
	_ = base.Where("post.id = ?", 1)
	_ = base.OrderBy("post.title")
	_ = base.Skip(5)
	_ = base.Take(10)
	_ = base.Take(0)

	got, _ := toSQL(t, base)
	want := "SELECT `post`.`id` AS `post_id` FROM `posts` `post` ORDER BY `post`.`id` ASC"
	if got != want {
		t.Errorf("base query was mutated: SQL = %q", got)
	}
}

func TestBuildSelectLabelCollision(t *testing.T) {
	t.Parallel()

	// "category" + "parent_id" and "category_parent" + "id" both render
	// as category_parent_id.
	tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
	got, _ := toSQL(t, orm.CreateQueryBuilder(tq, "Category", "category").
		Select("category.parentID", "ParentFk").
		LeftJoin("category.parent", "category_parent").
		AddSelect("category_parent.id", "ParentID").
		AddSelect("category.parentID", "ParentFkAgain"))

	want := "SELECT `category`.`parent_id` AS `category_parent_id`, `category_parent`.`id` AS `category_parent_id_2` " +
		"FROM `categories` `category` LEFT JOIN `categories` `category_parent` ON `category_parent`.`id` = `category`.`parent_id` " +
		"ORDER BY `category`.`id` ASC"
	if got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
}

func TestBuildSelectSameRelationUnderDifferentParents(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
	q := orm.CreateQueryBuilder(tq, "Category", "c").
		LeftJoin("c.parent", "p").
		LeftJoin("p.parent", "gp").
		AddSelect("gp.name")
	if err := q.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
}

// --- Configuration errors ---

func TestConfigurationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(tq *orm.TestQuerier) *orm.SelectQuery
		op    string
	}{
		{
			name:  "unknown entity",
			build: func(tq *orm.TestQuerier) *orm.SelectQuery { return orm.CreateQueryBuilder(tq, "Comment", "c") },
			op:    "CreateQueryBuilder",
		},
		{
			name:  "empty alias",
			build: func(tq *orm.TestQuerier) *orm.SelectQuery { return orm.CreateQueryBuilder(tq, "Post", "") },
			op:    "CreateQueryBuilder",
		},
		{
			name:  "unknown relation",
			build: func(tq *orm.TestQuerier) *orm.SelectQuery { return newTestQuery(tq).LeftJoin("post.author", "author") },
			op:    "LeftJoin",
		},
		{
			name:  "join path without relation",
			build: func(tq *orm.TestQuerier) *orm.SelectQuery { return newTestQuery(tq).InnerJoin("category", "category") },
			op:    "InnerJoin",
		},
		{
			name:  "join from unknown alias",
			build: func(tq *orm.TestQuerier) *orm.SelectQuery { return newTestQuery(tq).LeftJoin("p.category", "category") },
			op:    "LeftJoin",
		},
		{
			name: "duplicate join alias",
			build: func(tq *orm.TestQuerier) *orm.SelectQuery {
				return newTestQuery(tq).LeftJoin("post.category", "post")
			},
			op: "LeftJoin",
		},
		{
			name: "same relation joined twice",
			build: func(tq *orm.TestQuerier) *orm.SelectQuery {
				return newTestQuery(tq).LeftJoin("post.category", "c1").LeftJoin("post.category", "c2")
			},
			op: "LeftJoin",
		},
		{
			name:  "unknown property",
			build: func(tq *orm.TestQuerier) *orm.SelectQuery { return newTestQuery(tq).Select("post.body") },
			op:    "Select",
		},
		{
			name:  "select before join",
			build: func(tq *orm.TestQuerier) *orm.SelectQuery { return newTestQuery(tq).AddSelect("category.name") },
			op:    "AddSelect",
		},
		{
			name:  "aliased whole entity",
			build: func(tq *orm.TestQuerier) *orm.SelectQuery { return newTestQuery(tq).Select("post", "p") },
			op:    "Select",
		},
		{
			name:  "two aliases",
			build: func(tq *orm.TestQuerier) *orm.SelectQuery { return newTestQuery(tq).Select("post.id", "a", "b") },
			op:    "Select",
		},
		{
			name:  "negative skip",
			build: func(tq *orm.TestQuerier) *orm.SelectQuery { return newTestQuery(tq).Skip(-1) },
			op:    "Skip",
		},
		{
			name:  "zero take",
			build: func(tq *orm.TestQuerier) *orm.SelectQuery { return newTestQuery(tq).Take(0) },
			op:    "Take",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
			// Further builder calls keep the first error.
			q := tt.build(tq).AddSelect("post.title").Take(3)

			var cfgErr *orm.ConfigurationError
			if !errors.As(q.Err(), &cfgErr) {
				t.Fatalf("Err() = %v, want *ConfigurationError", q.Err())
			}
			if cfgErr.Op != tt.op {
				t.Errorf("Op = %q, want %q", cfgErr.Op, tt.op)
			}

			if _, err := q.GetManyWithAlias(t.Context()); !errors.As(err, &cfgErr) {
				t.Errorf("GetManyWithAlias error = %v, want *ConfigurationError", err)
			}
			if _, err := q.Count(t.Context()); !errors.As(err, &cfgErr) {
				t.Errorf("Count error = %v, want *ConfigurationError", err)
			}
			if len(tq.Queries) != 0 {
				t.Errorf("queries sent despite configuration error: %v", tq.Queries)
			}
		})
	}
}

func TestNoRegistry(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL, nil)
	q := newTestQuery(tq)

	var cfgErr *orm.ConfigurationError
	if !errors.As(q.Err(), &cfgErr) {
		t.Fatalf("Err() = %v, want *ConfigurationError", q.Err())
	}
}

// --- Execution errors ---

func TestExecutionErrorWrapsDriverError(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
	_, err := aliasedPosts(tq).GetManyWithAlias(t.Context())

	var execErr *orm.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("err = %v, want *ExecutionError", err)
	}
	if !errors.Is(err, orm.ErrMockNotImplemented) {
		t.Errorf("err does not unwrap to the driver error: %v", err)
	}
	if execErr.SQL != tq.LastQuery().SQL {
		t.Errorf("ExecutionError.SQL = %q, want %q", execErr.SQL, tq.LastQuery().SQL)
	}
}

// --- GetOneWithAlias ---

func TestGetOneWithAliasAddsTake(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
	_, _ = newTestQuery(tq).Select("post.id").Skip(4).GetOneWithAlias(t.Context())

	got := tq.LastQuery()
	want := "SELECT `post`.`id` AS `post_id` FROM `posts` `post` ORDER BY `post`.`id` ASC LIMIT 1 OFFSET 4"
	if got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
}

// --- Count ---

func TestBuildCount(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.PostgreSQL, blogRegistry())
	_, _ = aliasedPosts(tq).Where("category.name = ?", "category1").Skip(1).Take(2).Count(t.Context())

	got := tq.LastQuery()
	want := `SELECT COUNT(*) FROM "posts" "post" LEFT JOIN "categories" "category" ON "category"."id" = "post"."category_id" ` +
		`WHERE category.name = $1`
	if got.SQL != want {
		t.Errorf("SQL = %q, want %q", got.SQL, want)
	}
}

func TestBuildSelectQuotedAlias(t *testing.T) {
	t.Parallel()

	tq := orm.NewTestQuerier(orm.MySQL, blogRegistry())
	got, _ := toSQL(t, orm.CreateQueryBuilder(tq, "Post", "p`x").Select("p`x.title"))

	want := "SELECT `p``x`.`title` AS `p``x_title` FROM `posts` `p``x` ORDER BY `p``x`.`id` ASC"
	if got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
}
