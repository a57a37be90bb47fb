package providers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultSearchURL is The Guardian content search endpoint.
const DefaultSearchURL = "https://content.guardianapis.com/search"

const (
	paramQuery    = "q"
	paramOrderBy  = "order-by"
	paramShowTags = "show-tags"
	paramAPIKey   = "api-key"

	showTagsContributor = "contributor"
)

// ErrEmptyBaseURL is returned when no search endpoint is configured.
var ErrEmptyBaseURL = errors.New("search base url is empty")

// Query holds the user-controlled search parameters plus the API key.
type Query struct {
	Topic   string
	OrderBy string
	APIKey  string
}

// BuildSearchURL appends the search parameters to base:
// q, order-by, show-tags=contributor and api-key, all URL-encoded.
func BuildSearchURL(base string, q Query) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", ErrEmptyBaseURL
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	values := u.Query()
	values.Set(paramQuery, q.Topic)
	values.Set(paramOrderBy, q.OrderBy)
	values.Set(paramShowTags, showTagsContributor)
	values.Set(paramAPIKey, q.APIKey)
	u.RawQuery = values.Encode()

	return u.String(), nil
}
