package providers

import (
	"context"
	"strings"

	"github.com/Adda-Baaj/taja-reader/internal/domain"
	"github.com/Adda-Baaj/taja-reader/internal/logger"
)

// GuardianSource searches The Guardian content API. It holds no state beyond
// its collaborators and may be shared.
type GuardianSource struct {
	baseURL string
	fetcher *Fetcher
	parser  *Parser
	log     logger.Logger
}

// NewGuardianSource wires a fetcher and parser against baseURL.
func NewGuardianSource(baseURL string, client HTTPClient, log logger.Logger) *GuardianSource {
	log = logger.Ensure(log)
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultSearchURL
	}
	return &GuardianSource{
		baseURL: baseURL,
		fetcher: NewFetcher(client, log),
		parser:  NewParser(log),
		log:     log,
	}
}

// Search runs one query. Every failure collapses to nil.
func (s *GuardianSource) Search(ctx context.Context, q Query) []domain.Article {
	reqURL, err := BuildSearchURL(s.baseURL, q)
	if err != nil {
		s.log.ErrorObj("problem building the search url", "malformed_url", map[string]any{
			"base_url": s.baseURL,
			"error":    err.Error(),
		})
		return nil
	}

	body, ok := s.fetcher.Fetch(ctx, reqURL)
	if !ok {
		return nil
	}

	articles := s.parser.Parse(body)
	s.log.InfoObj("search completed", "search_result", map[string]any{
		"topic":    q.Topic,
		"order_by": q.OrderBy,
		"articles": len(articles),
	})
	return articles
}
