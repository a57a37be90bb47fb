// Package prefs persists the two reader settings: search topic and sort order.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Adda-Baaj/taja-reader/internal/logger"
)

const (
	DefaultTopic   = "technology"
	DefaultOrderBy = "newest"

	keyTopic   = "topic"
	keyOrderBy = "order-by"
)

var bucketName = []byte("preferences")

// OrderByValues lists the sort tokens the search API accepts.
var OrderByValues = []string{"newest", "oldest", "relevance"}

// ErrInvalidOrderBy is returned for sort tokens outside OrderByValues.
var ErrInvalidOrderBy = errors.New("order-by must be one of: newest, oldest, relevance")

// Preferences are the values read when a search request is built.
type Preferences struct {
	Topic   string
	OrderBy string
}

// Defaults returns the built-in preference values.
func Defaults() Preferences {
	return Preferences{Topic: DefaultTopic, OrderBy: DefaultOrderBy}
}

// Store reads and writes preferences.
type Store interface {
	Get() Preferences
	SetTopic(topic string) error
	SetOrderBy(orderBy string) error
	Close() error
}

// ValidOrderBy reports whether v is an accepted sort token.
func ValidOrderBy(v string) bool {
	return slices.Contains(OrderByValues, v)
}

// NextOrderBy cycles through OrderByValues.
func NextOrderBy(current string) string {
	i := slices.Index(OrderByValues, current)
	return OrderByValues[(i+1)%len(OrderByValues)]
}

func normalize(defaults Preferences) Preferences {
	defaults.Topic = strings.TrimSpace(defaults.Topic)
	if defaults.Topic == "" {
		defaults.Topic = DefaultTopic
	}
	defaults.OrderBy = strings.ToLower(strings.TrimSpace(defaults.OrderBy))
	if !ValidOrderBy(defaults.OrderBy) {
		defaults.OrderBy = DefaultOrderBy
	}
	return defaults
}

// boltStore keeps preferences in a single bbolt bucket.
type boltStore struct {
	db       *bolt.DB
	defaults Preferences
	log      logger.Logger
}

// Open opens (or creates) the bbolt file at path.
func Open(path string, defaults Preferences, log logger.Logger) (Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("preferences path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create preferences dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open preferences db: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init preferences bucket: %w", err)
	}

	return &boltStore{db: db, defaults: normalize(defaults), log: logger.Ensure(log)}, nil
}

// Get returns stored values, falling back to defaults per key.
func (s *boltStore) Get() Preferences {
	out := s.defaults
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(keyTopic)); len(v) > 0 {
			out.Topic = string(v)
		}
		if v := b.Get([]byte(keyOrderBy)); len(v) > 0 && ValidOrderBy(string(v)) {
			out.OrderBy = string(v)
		}
		return nil
	})
	if err != nil {
		s.log.WarnObj("reading preferences failed", "prefs_error", map[string]any{
			"error": err.Error(),
		})
		return s.defaults
	}
	return out
}

// SetTopic stores topic; a blank topic restores the default.
func (s *boltStore) SetTopic(topic string) error {
	return s.put(keyTopic, strings.TrimSpace(topic))
}

// SetOrderBy stores a validated sort token.
func (s *boltStore) SetOrderBy(orderBy string) error {
	orderBy = strings.ToLower(strings.TrimSpace(orderBy))
	if !ValidOrderBy(orderBy) {
		return fmt.Errorf("%w: got %q", ErrInvalidOrderBy, orderBy)
	}
	return s.put(keyOrderBy, orderBy)
}

func (s *boltStore) put(key, val string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		if val == "" {
			return b.Delete([]byte(key))
		}
		return b.Put([]byte(key), []byte(val))
	})
	if err != nil {
		return fmt.Errorf("save preference %s: %w", key, err)
	}
	s.log.DebugObj("preference saved", "prefs_update", map[string]any{
		"key":   key,
		"value": val,
	})
	return nil
}

func (s *boltStore) Close() error {
	return s.db.Close()
}

// memoryStore is used when no preferences file is configured.
type memoryStore struct {
	mu       sync.RWMutex
	defaults Preferences
	current  Preferences
}

// NewMemory returns a Store that lives only for the process.
func NewMemory(defaults Preferences) Store {
	d := normalize(defaults)
	return &memoryStore{defaults: d, current: d}
}

func (m *memoryStore) Get() Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *memoryStore) SetTopic(topic string) error {
	topic = strings.TrimSpace(topic)
	m.mu.Lock()
	defer m.mu.Unlock()
	if topic == "" {
		topic = m.defaults.Topic
	}
	m.current.Topic = topic
	return nil
}

func (m *memoryStore) SetOrderBy(orderBy string) error {
	orderBy = strings.ToLower(strings.TrimSpace(orderBy))
	if !ValidOrderBy(orderBy) {
		return fmt.Errorf("%w: got %q", ErrInvalidOrderBy, orderBy)
	}
	m.mu.Lock()
	m.current.OrderBy = orderBy
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Close() error { return nil }
