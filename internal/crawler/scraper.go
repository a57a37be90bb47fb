package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Adda-Baaj/taja-reader/internal/domain"
	"github.com/Adda-Baaj/taja-reader/internal/logger"
	"github.com/Adda-Baaj/taja-reader/pkg/httpclient"
	"github.com/Adda-Baaj/taja-reader/pkg/providers"

	"github.com/PuerkitoBio/goquery"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// ErrNoSummary is returned when a page carries no usable metadata.
var ErrNoSummary = errors.New("page has no summary metadata")

// Preview is the short summary shown for a selected article.
type Preview struct {
	Title       string
	Description string
	ImageURL    string
}

// Previewer reads an article page's metadata tags. It never extracts body text.
type Previewer struct {
	client httpclient.Client
	log    logger.Logger
}

// NewPreviewer creates a Previewer with the given HTTP client and logger.
func NewPreviewer(client httpclient.Client, log logger.Logger) *Previewer {
	if client == nil {
		client = providers.DefaultHTTPClient()
	}
	return &Previewer{client: client, log: logger.Ensure(log)}
}

// Preview fetches art.URL and returns its og/meta summary.
func (p *Previewer) Preview(ctx context.Context, art domain.Article) (Preview, error) {
	p.log.DebugObj("fetching article preview", "preview_start", map[string]any{
		"url": art.URL,
	})

	resp, err := p.client.Get(ctx, art.URL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return Preview{}, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return Preview{}, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		p.log.InfoObj("html body truncated", "truncation", map[string]any{
			"url":      art.URL,
			"original": len(body),
			"kept":     maxHTMLBodyBytes,
		})
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return Preview{}, err
	}
	if meta.Title == "" && meta.Description == "" {
		return Preview{}, ErrNoSummary
	}
	if meta.Title == "" {
		meta.Title = art.Title
	}
	meta.ImageURL = resolveURL(meta.ImageURL, art.URL)
	return meta, nil
}

// parseMeta extracts page metadata from the HTML body.
func parseMeta(body []byte) (Preview, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Preview{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return Preview{
		Title: firstNonEmpty(
			extract(`meta[property="og:title"]`),
			strings.TrimSpace(doc.Find("title").First().Text()),
		),
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
		ImageURL: extract(`meta[property="og:image"]`),
	}, nil
}

// firstNonEmpty returns the first non-blank value, trimmed.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// resolveURL resolves a possibly relative URL against a base URL.
func resolveURL(raw, base string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}
	return baseURL.ResolveReference(parsed).String()
}
