package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Adda-Baaj/taja-reader/internal/crawler"
	"github.com/Adda-Baaj/taja-reader/internal/domain"
	"github.com/Adda-Baaj/taja-reader/internal/prefs"
	"github.com/Adda-Baaj/taja-reader/internal/presenter"
	"github.com/Adda-Baaj/taja-reader/internal/screen"
)

type fakeLoader struct {
	mu      sync.Mutex
	outcome screen.Outcome
	starts  int
	stops   int
}

func (f *fakeLoader) Start(context.Context) <-chan screen.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	ch := make(chan screen.Outcome, 1)
	ch <- f.outcome
	close(ch)
	return ch
}

func (f *fakeLoader) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

type fakePreviewer struct {
	preview crawler.Preview
	err     error
}

func (f fakePreviewer) Preview(context.Context, domain.Article) (crawler.Preview, error) {
	return f.preview, f.err
}

var sampleArticles = []domain.Article{
	{Category: "Technology", Title: "First headline", Date: "2024-03-03T10:00:00Z", URL: "https://example.com/1", Author: "Ada"},
	{Category: "Science", Title: "Second headline", Date: "2024-03-04T10:00:00Z", URL: "https://example.com/2"},
}

func newTestModel(t *testing.T, deps Deps) (Model, *fakeLoader) {
	t.Helper()
	loader := &fakeLoader{outcome: screen.Outcome{State: screen.Loaded, Articles: sampleArticles}}
	if deps.Loader == nil {
		deps.Loader = loader
	}
	if deps.Prefs == nil {
		deps.Prefs = prefs.NewMemory(prefs.Defaults())
	}
	return New(context.Background(), deps), loader
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.load()()
	m, _ = update(t, m, msg)
	return m
}

func TestLoadedOutcomeRendersRows(t *testing.T) {
	m, loader := newTestModel(t, Deps{})
	m = loaded(t, m)

	if loader.starts != 1 {
		t.Fatalf("expected one start, got %d", loader.starts)
	}
	if m.loading {
		t.Fatal("expected loading to end")
	}
	view := m.View()
	for _, want := range []string{"First headline", "Second headline", "Mar 03 '24", "Ada"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestEmptyOutcomeShowsMessage(t *testing.T) {
	loader := &fakeLoader{outcome: screen.Outcome{State: screen.NoConnection, Message: presenter.NoConnectionMessage}}
	m, _ := newTestModel(t, Deps{Loader: loader})
	m = loaded(t, m)

	if !strings.Contains(m.View(), presenter.NoConnectionMessage) {
		t.Fatalf("expected no-connection message, got:\n%s", m.View())
	}
}

func TestCancelledLoadIsIgnored(t *testing.T) {
	m, _ := newTestModel(t, Deps{})
	m, _ = update(t, m, loadedMsg{ok: false})
	if !m.loading {
		t.Fatal("a closed channel without an outcome must not end loading")
	}
}

func TestCursorStaysInBounds(t *testing.T) {
	m, _ := newTestModel(t, Deps{})
	m = loaded(t, m)

	m, _ = update(t, m, runes("k"))
	if m.cursor != 0 {
		t.Fatalf("cursor moved above first row: %d", m.cursor)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, runes("j"))
	if m.cursor != 1 {
		t.Fatalf("cursor moved past last row: %d", m.cursor)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Fatalf("expected cursor 0, got %d", m.cursor)
	}
}

func TestEnterOpensSelectedURL(t *testing.T) {
	var opened string
	m, _ := newTestModel(t, Deps{Open: func(url string) error { opened = url; return nil }})
	m = loaded(t, m)
	m, _ = update(t, m, runes("j"))

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected open command")
	}
	if _, ok := cmd().(openedMsg); !ok {
		t.Fatal("expected openedMsg")
	}
	if opened != "https://example.com/2" {
		t.Fatalf("opened %q", opened)
	}
}

func TestQuitStopsLoader(t *testing.T) {
	m, loader := newTestModel(t, Deps{})
	m, cmd := update(t, m, runes("q"))
	if loader.stops != 1 {
		t.Fatalf("expected Stop on quit, got %d", loader.stops)
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Fatal("expected empty view after quit")
	}
}

func TestRefreshRestartsLoad(t *testing.T) {
	m, loader := newTestModel(t, Deps{})
	m = loaded(t, m)

	m, cmd := update(t, m, runes("r"))
	if !m.loading || cmd == nil {
		t.Fatal("expected refresh to start loading")
	}
	if loader.starts != 2 {
		t.Fatalf("expected second start, got %d", loader.starts)
	}
}

func TestSettingsPersistAndReload(t *testing.T) {
	store := prefs.NewMemory(prefs.Defaults())
	m, loader := newTestModel(t, Deps{Prefs: store})
	m = loaded(t, m)

	m, _ = update(t, m, runes("s"))
	if m.mode != modeSettings {
		t.Fatal("expected settings mode")
	}
	m.topic.SetValue("football")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	got := store.Get()
	if got.Topic != "football" || got.OrderBy != prefs.NextOrderBy(prefs.DefaultOrderBy) {
		t.Fatalf("unexpected prefs: %+v", got)
	}
	if m.mode != modeList || !m.loading {
		t.Fatal("expected return to list with a new load")
	}
	if loader.starts != 2 {
		t.Fatalf("expected reload after save, got %d starts", loader.starts)
	}
}

func TestSettingsEscDiscards(t *testing.T) {
	store := prefs.NewMemory(prefs.Defaults())
	m, _ := newTestModel(t, Deps{Prefs: store})
	m = loaded(t, m)

	m, _ = update(t, m, runes("s"))
	m.topic.SetValue("politics")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.mode != modeList {
		t.Fatal("expected list mode")
	}
	if store.Get().Topic != prefs.DefaultTopic {
		t.Fatalf("topic should be unchanged, got %q", store.Get().Topic)
	}
}

func TestPreviewShownForSelection(t *testing.T) {
	pv := fakePreviewer{preview: crawler.Preview{Title: "Page title", Description: "A short summary."}}
	m, _ := newTestModel(t, Deps{Preview: pv})
	m = loaded(t, m)

	m, cmd := update(t, m, runes("p"))
	if cmd == nil {
		t.Fatal("expected preview command")
	}
	m, _ = update(t, m, cmd())
	if m.preview == nil || !strings.Contains(m.View(), "A short summary.") {
		t.Fatalf("expected preview in view:\n%s", m.View())
	}

	m, _ = update(t, m, runes("j"))
	if m.preview != nil {
		t.Fatal("moving the cursor should clear the preview")
	}
}

func TestStalePreviewIgnored(t *testing.T) {
	m, _ := newTestModel(t, Deps{})
	m = loaded(t, m)
	m, _ = update(t, m, previewMsg{url: "https://example.com/2", preview: crawler.Preview{Title: "x"}})
	if m.preview != nil {
		t.Fatal("preview for another row must be ignored")
	}
}

func TestShareReportsStatus(t *testing.T) {
	var shared domain.Article
	share := func(_ context.Context, art domain.Article) error {
		shared = art
		return errors.New("down")
	}
	m, _ := newTestModel(t, Deps{Share: share})
	m = loaded(t, m)

	m, cmd := update(t, m, runes("x"))
	m, _ = update(t, m, cmd())
	if shared.URL != "https://example.com/1" {
		t.Fatalf("shared %q", shared.URL)
	}
	if m.status != "Share failed" {
		t.Fatalf("status %q", m.status)
	}
}

func TestKeysIgnoredWhileLoading(t *testing.T) {
	var opened bool
	m, _ := newTestModel(t, Deps{Open: func(string) error { opened = true; return nil }})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || opened {
		t.Fatal("enter must do nothing before articles are loaded")
	}
}
