package share

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// httpTarget posts events as JSON to a webhook.
type httpTarget struct {
	id      string
	typ     string
	url     string
	method  string
	headers map[string]string
	client  *resty.Client
	log     Logger
}

func newHTTPTarget(_ context.Context, cfg TargetConfig, log Logger) (Target, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("share target %q missing http configuration", cfg.ID)
	}

	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = httpDefaultTimeoutSeconds * time.Second
	}
	method := cfg.HTTP.Method
	if method == "" {
		method = httpDefaultMethod
	}

	return &httpTarget{
		id:      cfg.ID,
		typ:     cfg.Type,
		url:     cfg.HTTP.URL,
		method:  method,
		headers: cfg.HTTP.Headers,
		client:  resty.New().SetTimeout(timeout).SetLogger(discardRestyLogger{}),
		log:     ensureLogger(log),
	}, nil
}

func (t *httpTarget) ID() string   { return t.id }
func (t *httpTarget) Type() string { return t.typ }

// Share sends the event; any non-2xx status is an error.
func (t *httpTarget) Share(ctx context.Context, evt Event) error {
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(t.headers).
		SetBody(evt).
		Execute(t.method, t.url)
	if err != nil {
		return fmt.Errorf("http share request: %w", err)
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return fmt.Errorf("http share returned status %d", resp.StatusCode())
	}

	t.log.DebugObj("http share delivered event", "share_http_delivery", map[string]any{
		"target_id": t.id,
		"status":    resp.StatusCode(),
	})
	return nil
}

type discardRestyLogger struct{}

func (discardRestyLogger) Errorf(string, ...any) {}
func (discardRestyLogger) Warnf(string, ...any)  {}
func (discardRestyLogger) Debugf(string, ...any) {}
