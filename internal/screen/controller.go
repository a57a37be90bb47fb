// Package screen drives one reader screen: connectivity check, a single
// background search, and hand-off of the result to the display.
package screen

import (
	"context"
	"sync"

	"github.com/Adda-Baaj/taja-reader/internal/domain"
	"github.com/Adda-Baaj/taja-reader/internal/logger"
	"github.com/Adda-Baaj/taja-reader/internal/prefs"
	"github.com/Adda-Baaj/taja-reader/internal/presenter"
	"github.com/Adda-Baaj/taja-reader/pkg/providers"
)

// State is the screen lifecycle position.
type State int

const (
	Idle State = iota
	CheckingConnectivity
	NoConnection
	Loading
	Loaded
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CheckingConnectivity:
		return "checking_connectivity"
	case NoConnection:
		return "no_connection"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// NewsSource runs one search; failures come back as an empty result.
type NewsSource interface {
	Search(ctx context.Context, q providers.Query) []domain.Article
}

// Reachability reports whether a network transport is available.
type Reachability interface {
	Reachable() bool
}

// PreferenceReader supplies the topic and sort order at request time.
type PreferenceReader interface {
	Get() prefs.Preferences
}

// Outcome is the terminal result of one run.
type Outcome struct {
	State    State
	Articles []domain.Article
	Message  string
}

// Empty reports whether there is nothing to list.
func (o Outcome) Empty() bool { return len(o.Articles) == 0 }

// Controller owns at most one in-flight run.
type Controller struct {
	source NewsSource
	reach  Reachability
	prefs  PreferenceReader
	apiKey string
	log    logger.Logger

	mu     sync.Mutex
	state  State
	runID  uint64
	cancel context.CancelFunc
}

// NewController wires the collaborators. apiKey is attached to every query.
func NewController(source NewsSource, reach Reachability, p PreferenceReader, apiKey string, log logger.Logger) *Controller {
	return &Controller{
		source: source,
		reach:  reach,
		prefs:  p,
		apiKey: apiKey,
		log:    logger.Ensure(log),
		state:  Idle,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start restarts the state machine from Idle and runs it on a background
// goroutine. Any earlier run is cancelled first. The returned channel carries
// exactly one Outcome and is then closed; a cancelled run closes it empty.
func (c *Controller) Start(parent context.Context) <-chan Outcome {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.runID++
	id := c.runID
	c.cancel = cancel
	c.state = Idle
	c.mu.Unlock()

	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		defer cancel()

		outcome := c.run(ctx, id)
		if ctx.Err() != nil {
			c.finish(id, Cancelled)
			c.log.DebugObj("screen load cancelled", "screen_cancelled", map[string]any{"run": id})
			return
		}
		if c.finish(id, outcome.State) {
			out <- outcome
		}
	}()
	return out
}

// Stop cancels the in-flight run, if any. Used on screen teardown.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) run(ctx context.Context, id uint64) Outcome {
	c.transition(id, CheckingConnectivity)
	if !c.reach.Reachable() {
		c.log.WarnObj("no network transport available", "screen_no_connection", map[string]any{"run": id})
		return Outcome{State: NoConnection, Message: presenter.NoConnectionMessage}
	}

	c.transition(id, Loading)
	p := c.prefs.Get()
	q := providers.Query{Topic: p.Topic, OrderBy: p.OrderBy, APIKey: c.apiKey}
	articles := c.source.Search(ctx, q)

	outcome := Outcome{State: Loaded, Articles: articles}
	if len(articles) == 0 {
		outcome.Message = presenter.NoResultsMessage
	}
	c.log.InfoObj("screen loaded", "screen_loaded", map[string]any{
		"run":      id,
		"articles": len(articles),
	})
	return outcome
}

// transition moves to s only while id is still the current run.
func (c *Controller) transition(id uint64, s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.runID {
		return false
	}
	c.state = s
	return true
}

// finish records the terminal state and releases the cancel func.
func (c *Controller) finish(id uint64, s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.runID {
		return false
	}
	c.state = s
	c.cancel = nil
	return true
}
