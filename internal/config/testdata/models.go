package testdata

type Category struct {
	ID    int
	Name  string
	Posts []Post `rel:"has_many"`
}

type Post struct {
	ID         int
	Title      string
	CategoryID int
	Category   *Category `rel:"belongs_to"`
}
