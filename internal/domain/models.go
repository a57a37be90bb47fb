package domain

// Domain contains core models shared by the fetch, parse and display layers.

// Article is one news story as returned by the search API. Values are built
// once by the parser and passed around by value; Author is empty when the
// story has no contributor tag.
type Article struct {
	Category string
	Title    string
	Date     string
	URL      string
	Author   string
}

// HasAuthor reports whether the article carries a contributor name.
func (a Article) HasAuthor() bool {
	return a.Author != ""
}
