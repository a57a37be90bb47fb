// Package presenter turns articles into display rows and renders them.
package presenter

import (
	"strings"
	"time"

	"github.com/Adda-Baaj/taja-reader/internal/domain"
)

const (
	// publicationLayout is the timestamp shape the search API returns.
	publicationLayout = "2006-01-02T15:04:05Z"
	// displayLayout renders e.g. "Mar 03 '84".
	displayLayout = "Jan 02 '06"

	// UnknownDate is shown when a publication date cannot be parsed.
	UnknownDate = "Unknown date"

	NoConnectionMessage = "No internet connection."
	NoResultsMessage    = "No breaking news found."
)

// FormatDisplayDate renders an API timestamp as "Mon DD 'YY".
func FormatDisplayDate(iso string) string {
	t, err := time.Parse(publicationLayout, strings.TrimSpace(iso))
	if err != nil {
		return UnknownDate
	}
	return t.UTC().Format(displayLayout)
}

// Row is one bound list entry.
type Row struct {
	Category   string
	Title      string
	Date       string
	Author     string
	ShowAuthor bool
	URL        string
}

// Rows binds articles to rows in order.
func Rows(articles []domain.Article) []Row {
	rows := make([]Row, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, Row{
			Category:   a.Category,
			Title:      a.Title,
			Date:       FormatDisplayDate(a.Date),
			Author:     a.Author,
			ShowAuthor: a.HasAuthor(),
			URL:        a.URL,
		})
	}
	return rows
}
