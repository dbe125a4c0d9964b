package testdata

type Comment struct {
	ID   int
	Post *Post `rel:"belongs_to,fk"`
}
