package file

import (
	"sync"
	"sync/atomic"

	"github.com/gobwas/glob"
)

// defaultEventBufferSize is the buffer size of subscription channels.
// Subscribers that can't keep up will have events dropped.
const defaultEventBufferSize = 16

// Event is a lifecycle event raised by a SerialFile attached to a Hub.
type Event struct {
	Key  string
	Kind Kind
}

type subscription struct {
	id     uint64
	match  glob.Glob
	ch     chan Event
	closed atomic.Bool
}

// matches reports whether key passes the subscription filter; nil matches
// every key.
func (s *subscription) matches(key string) bool {
	return s.match == nil || s.match.Match(key)
}

func (s *subscription) close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.ch)
	}
}

// Hub fans file events out to subscribers. It is safe for concurrent use.
type Hub struct {
	mu            sync.RWMutex
	subscriptions map[uint64]*subscription
	nextID        atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{subscriptions: make(map[uint64]*subscription)}
}

// Publish sends ev to every matching subscriber without blocking.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscriptions {
		if !sub.matches(ev.Key) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// Subscribe returns a buffered channel of events whose key matches pattern,
// and a cancel function that closes it. An empty pattern matches all keys.
// The cancel function is idempotent.
func (h *Hub) Subscribe(pattern string) (<-chan Event, func(), error) {
	sub := &subscription{
		id: h.nextID.Add(1),
		ch: make(chan Event, defaultEventBufferSize),
	}
	if pattern != "" {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, nil, err
		}
		sub.match = g
	}

	h.mu.Lock()
	h.subscriptions[sub.id] = sub
	h.mu.Unlock()

	return sub.ch, func() { h.unsubscribe(sub.id) }, nil
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	sub, ok := h.subscriptions[id]
	if ok {
		delete(h.subscriptions, id)
	}
	h.mu.Unlock()

	if ok {
		sub.close()
	}
}
