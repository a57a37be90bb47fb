package providers

import (
	"context"
	"net/http"
	"strings"

	"github.com/Adda-Baaj/taja-reader/internal/logger"
	"github.com/Adda-Baaj/taja-reader/pkg/httpclient"
)

// HTTPClient is the transport used by fetchers.
type HTTPClient = httpclient.Client

// DefaultHTTPClient returns a client with the standard connect/read timeouts.
func DefaultHTTPClient() HTTPClient {
	return httpclient.NewRestyClientWithTimeouts(httpclient.DefaultTimeouts(), nil)
}

// Fetcher downloads raw response bodies. Failures are logged and reported as
// "no data"; they never surface as errors.
type Fetcher struct {
	client HTTPClient
	log    logger.Logger
}

// NewFetcher builds a Fetcher. A nil client falls back to DefaultHTTPClient.
func NewFetcher(client HTTPClient, log logger.Logger) *Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &Fetcher{client: client, log: logger.Ensure(log)}
}

// Fetch GETs rawURL and returns the body when the server answers 200.
// A malformed URL, a transport error or any other status yields "", false.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, bool) {
	if _, err := parseAbsoluteURL(rawURL); err != nil {
		f.log.ErrorObj("problem building the request url", "malformed_url", map[string]any{
			"url":   redactKey(rawURL),
			"error": err.Error(),
		})
		return "", false
	}

	resp, err := f.client.Get(ctx, rawURL, nil)
	if err != nil {
		f.log.ErrorObj("problem making the http request", "network_failure", map[string]any{
			"url":   redactKey(rawURL),
			"error": err.Error(),
		})
		return "", false
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		f.log.ErrorObj("unexpected response status", "http_status", map[string]any{
			"url":    redactKey(rawURL),
			"status": resp.StatusCode(),
			"body":   responseSnippet(body),
		})
		return "", false
	}

	f.log.DebugObj("response retrieved", "fetch_ok", map[string]any{
		"url":   redactKey(rawURL),
		"bytes": len(body),
	})
	return strings.ToValidUTF8(string(body), "�"), true
}
