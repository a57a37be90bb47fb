// Package tui is the terminal screen: a list of articles backed by the
// screen controller, plus a small settings form.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Adda-Baaj/taja-reader/internal/crawler"
	"github.com/Adda-Baaj/taja-reader/internal/domain"
	"github.com/Adda-Baaj/taja-reader/internal/logger"
	"github.com/Adda-Baaj/taja-reader/internal/prefs"
	"github.com/Adda-Baaj/taja-reader/internal/presenter"
	"github.com/Adda-Baaj/taja-reader/internal/screen"
)

// Loader is the part of the screen controller the UI drives.
type Loader interface {
	Start(ctx context.Context) <-chan screen.Outcome
	Stop()
}

// Previewer fetches a short summary for an article.
type Previewer interface {
	Preview(ctx context.Context, art domain.Article) (crawler.Preview, error)
}

// ShareFunc sends an article to the configured share targets.
type ShareFunc func(ctx context.Context, art domain.Article) error

// OpenFunc opens a URL outside the terminal.
type OpenFunc func(url string) error

// Deps are the collaborators of the screen. Preview and Share may be nil.
type Deps struct {
	Loader  Loader
	Prefs   prefs.Store
	Preview Previewer
	Share   ShareFunc
	Open    OpenFunc
	Log     logger.Logger
}

type mode int

const (
	modeList mode = iota
	modeSettings
)

type (
	loadedMsg struct {
		outcome screen.Outcome
		ok      bool
	}
	previewMsg struct {
		url     string
		preview crawler.Preview
		err     error
	}
	sharedMsg struct{ err error }
	openedMsg struct{ err error }
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f0f6fc")).Background(lipgloss.Color("#1f6feb")).Padding(0, 1)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
	previewStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#30363d")).Padding(0, 1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff")).Bold(true)
)

// Model is the Bubble Tea model for the reader screen.
type Model struct {
	deps Deps
	ctx  context.Context
	log  logger.Logger

	mode     mode
	loading  bool
	outcome  screen.Outcome
	rows     []presenter.Row
	cursor   int
	width    int
	height   int
	status   string
	preview  *crawler.Preview
	spinner  spinner.Model
	topic    textinput.Model
	orderBy  string
	quitting bool
}

// New builds the screen. ctx bounds every background operation it starts.
func New(ctx context.Context, deps Deps) Model {
	if ctx == nil {
		ctx = context.Background()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))

	ti := textinput.New()
	ti.Placeholder = prefs.DefaultTopic
	ti.CharLimit = 120
	ti.Prompt = "Topic: "

	return Model{
		deps:    deps,
		ctx:     ctx,
		log:     logger.Ensure(deps.Log),
		loading: true,
		spinner: s,
		topic:   ti,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// load restarts the controller and waits for its single outcome.
func (m Model) load() tea.Cmd {
	ch := m.deps.Loader.Start(m.ctx)
	return func() tea.Msg {
		o, ok := <-ch
		return loadedMsg{outcome: o, ok: ok}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case loadedMsg:
		if !msg.ok {
			return m, nil
		}
		m.loading = false
		m.outcome = msg.outcome
		m.rows = presenter.Rows(msg.outcome.Articles)
		m.cursor = 0
		m.preview = nil
		return m, nil

	case previewMsg:
		if sel, ok := m.selected(); !ok || sel.URL != msg.url {
			return m, nil
		}
		if msg.err != nil {
			m.status = "Preview unavailable"
			return m, nil
		}
		p := msg.preview
		m.preview = &p
		m.status = ""
		return m, nil

	case sharedMsg:
		if msg.err != nil {
			m.status = "Share failed"
		} else {
			m.status = "Shared"
		}
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.status = "Could not open browser"
			m.log.WarnObj("open browser failed", "open_error", map[string]any{"error": msg.err.Error()})
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode == modeSettings {
			return m.updateSettings(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.deps.Loader.Stop()
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.preview = nil
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.preview = nil
		}

	case "r":
		return m.refresh()

	case "enter":
		if sel, ok := m.selected(); ok && m.deps.Open != nil {
			open, url := m.deps.Open, sel.URL
			return m, func() tea.Msg { return openedMsg{err: open(url)} }
		}

	case "p":
		if sel, ok := m.selected(); ok && m.deps.Preview != nil {
			m.status = "Loading preview…"
			pv, ctx := m.deps.Preview, m.ctx
			return m, func() tea.Msg {
				p, err := pv.Preview(ctx, sel)
				return previewMsg{url: sel.URL, preview: p, err: err}
			}
		}

	case "x":
		if sel, ok := m.selected(); ok && m.deps.Share != nil {
			m.status = "Sharing…"
			share, ctx := m.deps.Share, m.ctx
			return m, func() tea.Msg { return sharedMsg{err: share(ctx, sel)} }
		}

	case "s":
		p := m.deps.Prefs.Get()
		m.mode = modeSettings
		m.topic.SetValue(p.Topic)
		m.topic.CursorEnd()
		m.orderBy = p.OrderBy
		m.status = ""
		return m, m.topic.Focus()
	}
	return m, nil
}

func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.deps.Loader.Stop()
		m.quitting = true
		return m, tea.Quit
	case "esc":
		m.mode = modeList
		m.topic.Blur()
		return m, nil
	case "tab":
		m.orderBy = prefs.NextOrderBy(m.orderBy)
		return m, nil
	case "enter":
		if err := m.deps.Prefs.SetTopic(m.topic.Value()); err != nil {
			m.status = "Could not save topic"
			return m, nil
		}
		if err := m.deps.Prefs.SetOrderBy(m.orderBy); err != nil {
			m.status = "Could not save sort order"
			return m, nil
		}
		m.mode = modeList
		m.topic.Blur()
		return m.refresh()
	}

	var cmd tea.Cmd
	m.topic, cmd = m.topic.Update(msg)
	return m, cmd
}

// refresh restarts the screen state machine from Idle.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	m.loading = true
	m.preview = nil
	m.status = ""
	return m, tea.Batch(m.spinner.Tick, m.load())
}

func (m Model) selected() (domain.Article, bool) {
	if m.loading || m.cursor < 0 || m.cursor >= len(m.outcome.Articles) {
		return domain.Article{}, false
	}
	return m.outcome.Articles[m.cursor], true
}

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	p := m.deps.Prefs.Get()
	header := headerStyle.Render(fmt.Sprintf("News · %s · %s", p.Topic, p.OrderBy))

	var body string
	switch {
	case m.mode == modeSettings:
		body = m.settingsView()
	case m.loading:
		body = "\n " + m.spinner.View() + " Loading…"
	case m.outcome.Empty():
		body = presenter.RenderEmpty(m.outcome.Message)
	default:
		body = presenter.Render(m.rows, m.cursor, m.width, m.listHeight())
		if m.preview != nil {
			body += "\n\n" + m.previewView()
		}
	}

	footer := statusStyle.Render(m.helpLine())
	if m.status != "" {
		footer = statusStyle.Render(m.status) + "\n" + footer
	}
	return header + "\n\n" + body + "\n\n" + footer
}

func (m Model) listHeight() int {
	if m.height <= 0 {
		return 0
	}
	h := m.height - 6
	if m.preview != nil {
		h -= 6
	}
	if h < 4 {
		h = 4
	}
	return h
}

func (m Model) settingsView() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Settings") + "\n\n")
	b.WriteString(m.topic.View() + "\n")
	b.WriteString("Order by: " + m.orderBy + "  (tab to change)\n")
	return b.String()
}

func (m Model) previewView() string {
	width := m.width - 4
	if width < 20 {
		width = 76
	}
	text := labelStyle.Render(presenter.Truncate(m.preview.Title, width))
	if m.preview.Description != "" {
		text += "\n" + lipgloss.NewStyle().Width(width).Render(m.preview.Description)
	}
	return previewStyle.Render(text)
}

func (m Model) helpLine() string {
	if m.mode == modeSettings {
		return "enter save · tab order · esc cancel"
	}
	return "↑/↓ move · enter open · p preview · x share · r refresh · s settings · q quit"
}
