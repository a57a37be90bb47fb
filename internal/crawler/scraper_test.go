package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Adda-Baaj/taja-reader/internal/domain"
	"github.com/Adda-Baaj/taja-reader/pkg/httpclient"
)

const articlePage = `<!doctype html>
<html><head>
<title>Fallback title | The Guardian</title>
<meta property="og:title" content=" Chips get smaller ">
<meta property="og:description" content="Manufacturers race to 2nm.">
<meta property="og:image" content="/img/chip.jpg">
</head><body><p>Full text that must not be extracted.</p></body></html>`

func TestPreviewExtractsMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	p := NewPreviewer(httpclient.NewRestyClient(2*time.Second), nil)
	got, err := p.Preview(context.Background(), domain.Article{Title: "t", URL: srv.URL + "/technology/1"})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}

	if got.Title != "Chips get smaller" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Description != "Manufacturers race to 2nm." {
		t.Errorf("Description = %q", got.Description)
	}
	if got.ImageURL != srv.URL+"/img/chip.jpg" {
		t.Errorf("ImageURL = %q", got.ImageURL)
	}
	if strings.Contains(got.Description, "Full text") {
		t.Error("body text leaked into preview")
	}
}

func TestPreviewFallsBackToMetaDescription(t *testing.T) {
	page := `<html><head><meta name="description" content="Plain description"></head></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	got, err := NewPreviewer(httpclient.NewRestyClient(2*time.Second), nil).
		Preview(context.Background(), domain.Article{Title: "Listed title", URL: srv.URL})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if got.Title != "Listed title" || got.Description != "Plain description" {
		t.Errorf("Preview = %+v", got)
	}
}

func TestPreviewErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><body>nothing here</body></html>`))
	}))
	defer srv.Close()

	p := NewPreviewer(httpclient.NewRestyClient(2*time.Second), nil)

	if _, err := p.Preview(context.Background(), domain.Article{URL: srv.URL + "/missing"}); err == nil {
		t.Error("expected status error")
	}
	if _, err := p.Preview(context.Background(), domain.Article{URL: srv.URL + "/bare"}); !errors.Is(err, ErrNoSummary) {
		t.Errorf("err = %v, want ErrNoSummary", err)
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct{ raw, base, want string }{
		{"", "https://a.com/x", ""},
		{"https://cdn.com/i.jpg", "https://a.com/x", "https://cdn.com/i.jpg"},
		{"/i.jpg", "https://a.com/x/y", "https://a.com/i.jpg"},
		{"i.jpg", "https://a.com/x/y", "https://a.com/x/i.jpg"},
	}
	for _, tt := range tests {
		if got := resolveURL(tt.raw, tt.base); got != tt.want {
			t.Errorf("resolveURL(%q, %q) = %q, want %q", tt.raw, tt.base, got, tt.want)
		}
	}
}
