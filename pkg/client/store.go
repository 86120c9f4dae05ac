package client

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Method says how a navigation changes history.
type Method string

const (
	MethodPush     Method = "push"
	MethodReplace  Method = "replace"
	MethodPopState Method = "popstate"
)

// EventNavigate is the type of every navigation event.
const EventNavigate = "navigate"

// DefaultSettleDelay is how long IsNavigating stays true after a request.
const DefaultSettleDelay = 100 * time.Millisecond

// Event is published by a Store for every navigation request.
type Event struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Method Method `json:"method"`
}

// Store holds the navigation state of a page session. All mutations go
// through Push, Replace and HandlePopState. It is safe for concurrent use.
type Store struct {
	history History
	settle  time.Duration

	mu         sync.Mutex
	pathname   string
	navigating bool
	timer      *time.Timer
	subs       map[uint64]func(Event)
	nextID     uint64
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSettleDelay sets how long IsNavigating stays true after a request. A
// zero delay clears it as soon as subscribers have been notified.
func WithSettleDelay(d time.Duration) StoreOption {
	return func(s *Store) { s.settle = d }
}

// NewStore creates a store positioned at initialURL. history is used by Back
// and may be nil.
func NewStore(initialURL string, history History, opts ...StoreOption) *Store {
	s := &Store{
		history:  history,
		settle:   DefaultSettleDelay,
		pathname: pathOf(initialURL),
		subs:     make(map[uint64]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pathname returns the current path without its query string.
func (s *Store) Pathname() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pathname
}

// IsNavigating reports whether a navigation was requested within the settle
// delay.
func (s *Store) IsNavigating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigating
}

// Push requests a navigation to url that adds a history entry.
func (s *Store) Push(url string) {
	s.request(url, MethodPush)
}

// Replace requests a navigation to url that replaces the current entry.
func (s *Store) Replace(url string) {
	s.request(url, MethodReplace)
}

// HandlePopState records a back or forward move the browser already made and
// publishes it so the content can follow.
func (s *Store) HandlePopState(url string) {
	s.request(url, MethodPopState)
}

// Back asks the browser to go back one entry. The resulting popstate arrives
// through HandlePopState.
func (s *Store) Back() {
	if s.history != nil {
		s.history.Back()
	}
}

// Subscribe registers fn for every event and returns a function removing it.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) request(url string, method Method) {
	s.mu.Lock()
	s.pathname = pathOf(url)
	s.navigating = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	ev := Event{Type: EventNavigate, URL: url, Method: method}
	for _, fn := range subs {
		fn(ev)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settle <= 0 {
		s.navigating = false
		return
	}
	var t *time.Timer
	t = time.AfterFunc(s.settle, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.timer == t {
			s.navigating = false
			s.timer = nil
		}
	})
	s.timer = t
}

// pathOf strips the query string and fragment from url.
func pathOf(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	if url == "" {
		return "/"
	}
	return url
}

type storeKey struct{}

// WithStore returns a context carrying s. The manager renders every tree
// with such a context.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the store carried by ctx, or nil.
func FromContext(ctx context.Context) *Store {
	s, _ := ctx.Value(storeKey{}).(*Store)
	return s
}
