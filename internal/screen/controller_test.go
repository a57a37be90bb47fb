package screen

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Adda-Baaj/taja-reader/internal/domain"
	"github.com/Adda-Baaj/taja-reader/internal/netcheck"
	"github.com/Adda-Baaj/taja-reader/internal/prefs"
	"github.com/Adda-Baaj/taja-reader/internal/presenter"
	"github.com/Adda-Baaj/taja-reader/pkg/providers"
)

type fakeSource struct {
	mu       sync.Mutex
	articles []domain.Article
	queries  []providers.Query
	block    bool
	started  chan struct{}
}

func (f *fakeSource) Search(ctx context.Context, q providers.Query) []domain.Article {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	started := f.started
	block := f.block
	articles := f.articles
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block {
		<-ctx.Done()
		return nil
	}
	return articles
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func waitOutcome(t *testing.T, ch <-chan Outcome) (Outcome, bool) {
	t.Helper()
	select {
	case o, ok := <-ch:
		return o, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outcome")
		return Outcome{}, false
	}
}

func sampleArticles() []domain.Article {
	return []domain.Article{
		{Category: "Tech", Title: "One", Date: "2024-03-03T10:00:00Z", URL: "https://x/1", Author: "Ada"},
		{Category: "World", Title: "Two", Date: "2024-03-02T10:00:00Z", URL: "https://x/2"},
		{Category: "Science", Title: "Three", Date: "2024-03-01T10:00:00Z", URL: "https://x/3", Author: "Cy"},
	}
}

func TestControllerLoadsArticles(t *testing.T) {
	src := &fakeSource{articles: sampleArticles()}
	store := prefs.NewMemory(prefs.Preferences{Topic: "science", OrderBy: "oldest"})
	c := NewController(src, netcheck.Static(true), store, "key-123", nil)

	if c.State() != Idle {
		t.Fatalf("initial state = %v, want idle", c.State())
	}

	o, ok := waitOutcome(t, c.Start(context.Background()))
	if !ok {
		t.Fatal("channel closed without outcome")
	}
	if o.State != Loaded || len(o.Articles) != 3 || o.Message != "" {
		t.Fatalf("outcome = %+v", o)
	}
	if c.State() != Loaded {
		t.Errorf("state = %v, want loaded", c.State())
	}

	want := providers.Query{Topic: "science", OrderBy: "oldest", APIKey: "key-123"}
	if src.queries[0] != want {
		t.Errorf("query = %+v, want %+v", src.queries[0], want)
	}

	rows := presenter.Rows(o.Articles)
	if len(rows) != 3 || rows[0].Title != "One" || rows[2].Title != "Three" {
		t.Errorf("rows = %+v", rows)
	}
	if !rows[0].ShowAuthor || rows[1].ShowAuthor || !rows[2].ShowAuthor {
		t.Error("author visibility does not follow presence")
	}
}

func TestControllerEmptyResultShowsNoResults(t *testing.T) {
	c := NewController(&fakeSource{}, netcheck.Static(true), prefs.NewMemory(prefs.Defaults()), "", nil)

	o, _ := waitOutcome(t, c.Start(context.Background()))
	if o.State != Loaded || !o.Empty() || o.Message != presenter.NoResultsMessage {
		t.Errorf("outcome = %+v", o)
	}
}

func TestControllerNoConnectionSkipsFetch(t *testing.T) {
	src := &fakeSource{articles: sampleArticles()}
	c := NewController(src, netcheck.Static(false), prefs.NewMemory(prefs.Defaults()), "", nil)

	o, _ := waitOutcome(t, c.Start(context.Background()))
	if o.State != NoConnection || o.Message != presenter.NoConnectionMessage || !o.Empty() {
		t.Errorf("outcome = %+v", o)
	}
	if src.calls() != 0 {
		t.Errorf("fetch attempted %d times, want 0", src.calls())
	}
	if c.State() != NoConnection {
		t.Errorf("state = %v", c.State())
	}
}

func TestControllerStopCancelsInFlight(t *testing.T) {
	src := &fakeSource{block: true, started: make(chan struct{}, 1)}
	c := NewController(src, netcheck.Static(true), prefs.NewMemory(prefs.Defaults()), "", nil)

	ch := c.Start(context.Background())
	<-src.started
	if c.State() != Loading {
		t.Errorf("state = %v, want loading", c.State())
	}

	c.Stop()

	if _, ok := waitOutcome(t, ch); ok {
		t.Fatal("cancelled run delivered an outcome")
	}
	if c.State() != Cancelled {
		t.Errorf("state = %v, want cancelled", c.State())
	}
}

func TestControllerRestartSupersedesEarlierRun(t *testing.T) {
	src := &fakeSource{block: true, started: make(chan struct{}, 2)}
	c := NewController(src, netcheck.Static(true), prefs.NewMemory(prefs.Defaults()), "", nil)

	first := c.Start(context.Background())
	<-src.started

	src.mu.Lock()
	src.block = false
	src.articles = sampleArticles()[:1]
	src.mu.Unlock()

	second := c.Start(context.Background())

	if _, ok := waitOutcome(t, first); ok {
		t.Error("superseded run delivered an outcome")
	}
	o, ok := waitOutcome(t, second)
	if !ok || o.State != Loaded || len(o.Articles) != 1 {
		t.Errorf("second outcome = %+v, ok=%v", o, ok)
	}
	if c.State() != Loaded {
		t.Errorf("state = %v, want loaded", c.State())
	}
}

func TestControllerParentCancellation(t *testing.T) {
	src := &fakeSource{block: true, started: make(chan struct{}, 1)}
	c := NewController(src, netcheck.Static(true), prefs.NewMemory(prefs.Defaults()), "", nil)

	ctx, cancel := context.WithCancel(context.Background())
	ch := c.Start(ctx)
	<-src.started
	cancel()

	if _, ok := waitOutcome(t, ch); ok {
		t.Fatal("cancelled run delivered an outcome")
	}
}

func TestStateString(t *testing.T) {
	if Loaded.String() != "loaded" || State(99).String() != "unknown" {
		t.Error("unexpected State strings")
	}
}
