package model

import (
	"time"

	"github.com/mickamy/aliasq/meta"
)

type Category struct {
	ID    int
	Name  string
	Posts []Post `rel:"has_many"`
}

type Post struct {
	ID         int
	Title      string
	CategoryID *int
	CreatedAt  time.Time
	Category   *Category `rel:"belongs_to"`
}

// Entities returns the metadata of every model, for meta.NewRegistry.
func Entities() ([]meta.Entity, error) {
	category, err := meta.FromStruct[Category]()
	if err != nil {
		return nil, err
	}
	post, err := meta.FromStruct[Post]()
	if err != nil {
		return nil, err
	}
	return []meta.Entity{category, post}, nil
}
