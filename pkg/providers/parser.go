package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/taja-reader/internal/domain"
	"github.com/Adda-Baaj/taja-reader/internal/logger"
)

// searchEnvelope is the top level of a content search response.
type searchEnvelope struct {
	Response *searchResponse `json:"response"`
}

type searchResponse struct {
	Results *[]searchResult `json:"results"`
}

// searchResult keeps required fields as pointers so absence is detectable.
// Tags stays raw: a malformed tags value only costs the author.
type searchResult struct {
	SectionName        *string         `json:"sectionName"`
	WebTitle           *string         `json:"webTitle"`
	WebPublicationDate *string         `json:"webPublicationDate"`
	WebURL             *string         `json:"webUrl"`
	Tags               json.RawMessage `json:"tags"`
}

type contributorTag struct {
	WebTitle *string `json:"webTitle"`
}

// Parser turns search response bodies into articles.
type Parser struct {
	log logger.Logger
}

// NewParser builds a Parser that reports malformed documents to log.
func NewParser(log logger.Logger) *Parser {
	return &Parser{log: logger.Ensure(log)}
}

// Parse decodes raw into articles in response order. Blank input and any
// structural problem (invalid JSON, missing response.results, a result without
// sectionName, webTitle, webPublicationDate or webUrl) yield nil.
func (p *Parser) Parse(raw string) []domain.Article {
	if strings.TrimSpace(raw) == "" {
		p.log.DebugObj("empty response body", "parse_skipped", map[string]any{})
		return nil
	}

	articles, err := decodeArticles([]byte(raw))
	if err != nil {
		p.log.ErrorObj("problem parsing the news json results", "malformed_json", map[string]any{
			"error": err.Error(),
			"body":  responseSnippet([]byte(raw)),
		})
		return nil
	}
	return articles
}

func decodeArticles(data []byte) ([]domain.Article, error) {
	var env searchEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if env.Response == nil {
		return nil, errors.New(`missing "response" object`)
	}
	if env.Response.Results == nil {
		return nil, errors.New(`missing "response.results" array`)
	}

	results := *env.Response.Results
	articles := make([]domain.Article, 0, len(results))
	for i, r := range results {
		art, err := buildArticle(r)
		if err != nil {
			return nil, fmt.Errorf("results[%d]: %w", i, err)
		}
		articles = append(articles, art)
	}
	return articles, nil
}

func buildArticle(r searchResult) (domain.Article, error) {
	required := []struct {
		name string
		val  *string
	}{
		{"sectionName", r.SectionName},
		{"webTitle", r.WebTitle},
		{"webPublicationDate", r.WebPublicationDate},
		{"webUrl", r.WebURL},
	}
	for _, f := range required {
		if f.val == nil {
			return domain.Article{}, fmt.Errorf("missing required field %q", f.name)
		}
	}

	return domain.Article{
		Category: *r.SectionName,
		Title:    *r.WebTitle,
		Date:     *r.WebPublicationDate,
		URL:      *r.WebURL,
		Author:   firstContributor(r.Tags),
	}, nil
}

// firstContributor returns tags[0].webTitle, or "" when tags is absent, empty
// or shaped unexpectedly.
func firstContributor(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var tags []json.RawMessage
	if err := json.Unmarshal(raw, &tags); err != nil || len(tags) == 0 {
		return ""
	}

	var tag contributorTag
	if err := json.Unmarshal(tags[0], &tag); err != nil || tag.WebTitle == nil {
		return ""
	}
	return strings.TrimSpace(*tag.WebTitle)
}
