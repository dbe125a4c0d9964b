package testdata

import "time"

type Category struct {
	ID    int
	Name  string
	Posts []Post `rel:"has_many,foreign_key:category_id"`
}

type Post struct {
	ID         int       `db:"id,primaryKey"`
	Title      string    `db:"title"`
	CategoryID int       `db:"category_id"`
	CreatedAt  time.Time // no db tag: column inferred as "created_at"
	Secret     string    `db:"-"`
	Category   *Category `rel:"belongs_to"`
	internal   string    // unexported: skipped
}

// Options maps no fields and is not an entity.
type Options struct {
	limit int
}
