package orm_test

import (
	"testing"

	"github.com/mickamy/aliasq/orm"
)

func TestDialectQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    orm.Dialect
		want string
	}{
		{orm.MySQL, "`order`"},
		{orm.PostgreSQL, `"order"`},
		{orm.SQLServer, "[order]"},
	}
	for _, tt := range tests {
		t.Run(tt.d.Name(), func(t *testing.T) {
			t.Parallel()

			if got := tt.d.QuoteIdent("order"); got != tt.want {
				t.Errorf("QuoteIdent = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDialectQuoteIdentEscapesQuote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    orm.Dialect
		name string
		want string
	}{
		{orm.MySQL, "a`b", "`a``b`"},
		{orm.PostgreSQL, `a"b`, `"a""b"`},
		{orm.SQLServer, "a]b", "[a]]b]"},
		{orm.SQLServer, "a[b", "[a[b]"},
	}
	for _, tt := range tests {
		if got := tt.d.QuoteIdent(tt.name); got != tt.want {
			t.Errorf("%s.QuoteIdent(%q) = %q, want %q", tt.d.Name(), tt.name, got, tt.want)
		}
	}
}

func TestDialectPlaceholderFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    orm.Dialect
		want string
	}{
		{orm.MySQL, "a = ? AND b = ?"},
		{orm.PostgreSQL, "a = $1 AND b = $2"},
		{orm.SQLServer, "a = @p1 AND b = @p2"},
	}
	for _, tt := range tests {
		t.Run(tt.d.Name(), func(t *testing.T) {
			t.Parallel()

			got, err := tt.d.PlaceholderFormat().ReplacePlaceholders("a = ? AND b = ?")
			if err != nil {
				t.Fatalf("ReplacePlaceholders: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReplacePlaceholders = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDialectFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		driver string
		want   orm.Dialect
	}{
		{"mysql", orm.MySQL},
		{"pgx", orm.PostgreSQL},
		{"postgres", orm.PostgreSQL},
		{"sqlserver", orm.SQLServer},
		{"mssql", orm.SQLServer},
	}
	for _, tt := range tests {
		got, err := orm.DialectFor(tt.driver)
		if err != nil {
			t.Errorf("DialectFor(%q): %v", tt.driver, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DialectFor(%q) = %s, want %s", tt.driver, got.Name(), tt.want.Name())
		}
	}

	if _, err := orm.DialectFor("sqlite3"); err == nil {
		t.Error("DialectFor(\"sqlite3\") returned no error")
	}
}
