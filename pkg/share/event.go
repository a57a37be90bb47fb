// Package share sends a selected article to the share targets declared in a
// config file: webhooks or cloud queues.
package share

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Adda-Baaj/taja-reader/internal/domain"
	"github.com/Adda-Baaj/taja-reader/internal/logger"
)

// Logger is the logger used by share targets.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger { return logger.Ensure(log) }

// Event is the payload delivered to every target.
type Event struct {
	ID       string       `json:"id"`
	SharedAt time.Time    `json:"shared_at"`
	Article  ArticleShare `json:"article"`
}

// ArticleShare is the wire form of a shared article.
type ArticleShare struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	URL      string `json:"url"`
	Author   string `json:"author,omitempty"`
}

// NewEvent stamps an article with a fresh id and time.
func NewEvent(art domain.Article, now time.Time) Event {
	return Event{
		ID:       uuid.NewString(),
		SharedAt: now.UTC(),
		Article: ArticleShare{
			Category: art.Category,
			Title:    art.Title,
			Date:     art.Date,
			URL:      art.URL,
			Author:   art.Author,
		},
	}
}

// Target delivers events to one destination.
type Target interface {
	ID() string
	Type() string
	Share(ctx context.Context, evt Event) error
}

// Broadcast sends evt to every target and joins the failures.
func Broadcast(ctx context.Context, targets []Target, evt Event, log Logger) error {
	log = ensureLogger(log)

	var errs []error
	for _, t := range targets {
		if err := t.Share(ctx, evt); err != nil {
			log.WarnObj("share target failed", "share_error", map[string]any{
				"target_id": t.ID(),
				"type":      t.Type(),
				"event_id":  evt.ID,
				"error":     err.Error(),
			})
			errs = append(errs, fmt.Errorf("target %s: %w", t.ID(), err))
			continue
		}
		log.InfoObj("article shared", "share_delivery", map[string]any{
			"target_id": t.ID(),
			"event_id":  evt.ID,
			"url":       evt.Article.URL,
		})
	}
	return errors.Join(errs...)
}
