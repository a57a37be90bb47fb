// Package httpclient wraps resty behind a small interface so fetchers can be
// tested with fakes.
package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "taja-reader/1.0"

// Response is the subset of a resty response the reader consumes.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client performs GET requests.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// Timeouts bounds connection establishment and waiting for the response.
type Timeouts struct {
	Connect time.Duration
	Read    time.Duration
}

// DefaultTimeouts mirrors the values the reader has always used: 15s to
// connect and 10s to read.
func DefaultTimeouts() Timeouts {
	return Timeouts{Connect: 15 * time.Second, Read: 10 * time.Second}
}

type restyClient struct {
	rc *resty.Client
}

// NewRestyClient builds a client with a single overall timeout.
func NewRestyClient(timeout time.Duration) Client {
	return NewRestyClientWithTimeouts(Timeouts{Connect: timeout, Read: timeout}, nil)
}

// NewRestyClientWithTimeouts builds a client whose dialer honours t.Connect
// and whose transport waits at most t.Read for response headers. The overall
// request deadline is the sum of both. logf receives resty's own diagnostics;
// nil discards them.
func NewRestyClientWithTimeouts(t Timeouts, logf func(level, msg string)) Client {
	def := DefaultTimeouts()
	if t.Connect <= 0 {
		t.Connect = def.Connect
	}
	if t.Read <= 0 {
		t.Read = def.Read
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: t.Connect, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = t.Connect
	transport.ResponseHeaderTimeout = t.Read

	rc := resty.New().
		SetTransport(transport).
		SetTimeout(t.Connect+t.Read).
		SetHeader("User-Agent", userAgent).
		SetLogger(restyLogger{logf: logf})

	return &restyClient{rc: rc}
}

// Get issues a GET request. The body is read fully and the connection
// released before Get returns, on success and failure alike.
func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// restyLogger keeps resty from writing to stderr, which the UI owns.
type restyLogger struct {
	logf func(level, msg string)
}

func (l restyLogger) emit(level, format string, v ...any) {
	if l.logf == nil {
		return
	}
	l.logf(level, fmt.Sprintf(format, v...))
}

func (l restyLogger) Errorf(format string, v ...any) { l.emit("error", format, v...) }
func (l restyLogger) Warnf(format string, v ...any)  { l.emit("warn", format, v...) }
func (l restyLogger) Debugf(format string, v ...any) { l.emit("debug", format, v...) }
