package orm_test

import (
	"github.com/mickamy/aliasq/meta"
)

// blogRegistry declares Category 1..n Post, with Category optionally
// nested under a parent category.
func blogRegistry() *meta.Registry {
	return meta.MustRegistry(
		meta.Entity{
			Name: "Category",
			Fields: []meta.Field{
				{Name: "id", PrimaryKey: true},
				{Name: "name"},
				{Name: "parentID", Column: "parent_id"},
			},
			Relations: []meta.Relation{
				{Name: "posts", Kind: meta.HasMany, Target: "Post"},
				{Name: "parent", Kind: meta.BelongsTo, Target: "Category"},
			},
		},
		meta.Entity{
			Name: "Post",
			Fields: []meta.Field{
				{Name: "id", PrimaryKey: true},
				{Name: "title"},
				{Name: "createdAt", CreatedAt: true},
			},
			Relations: []meta.Relation{
				{Name: "category", Kind: meta.BelongsTo, Target: "Category"},
			},
		},
	)
}
