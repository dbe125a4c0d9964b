package repo

import (
	"context"

	"github.com/mickamy/aliasq/orm"
	"github.com/mickamy/aliasq/scope"
)

// PostRepository reads posts as alias-keyed records.
type PostRepository struct {
	db orm.Querier
}

func NewPostRepository(db orm.Querier) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) withCategory() *orm.SelectQuery {
	return orm.CreateQueryBuilder(r.db, "Post", "post").
		Select("post.id", "IdOfPost").
		AddSelect("post.title").
		LeftJoin("post.category", "category").
		AddSelect("category.name", "NameOfCategory")
}

// ListWithCategory returns {IdOfPost, title, category: {NameOfCategory}}
// records ordered by post id.
func (r *PostRepository) ListWithCategory(ctx context.Context, scopes ...scope.Scope) ([]*orm.Record, error) {
	return r.withCategory().Scopes(scopes...).GetManyWithAlias(ctx)
}

// FindWithCategory returns the record of post id.
func (r *PostRepository) FindWithCategory(ctx context.Context, id int) (*orm.Record, error) {
	return r.withCategory().Where("post.id = ?", id).GetOneWithAlias(ctx)
}

// CountInCategory counts the posts of the named category.
func (r *PostRepository) CountInCategory(ctx context.Context, name string) (int64, error) {
	return r.withCategory().Where("category.name = ?", name).Count(ctx)
}
