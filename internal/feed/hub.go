// Package feed fans database change notifications out to dashboard clients.
package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

const DefaultBuffer = 16

var ErrHubClosed = errors.New("feed hub closed")

// Event describes a row change in one of the canteen tables
type Event struct {
	Collection string `json:"collection"`
	Op         string `json:"op"`
	ID         string `json:"id"`
}

// DecodeEvent parses a notification payload
func DecodeEvent(payload string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}

	if e.Collection == "" || e.Op == "" {
		return Event{}, fmt.Errorf("decode event: missing collection or op in %q", payload)
	}

	return e, nil
}

// Publisher accepts change events
type Publisher interface {
	Publish(e Event)
}

// Subscription receives the events published after it was created
type Subscription struct {
	hub    *Hub
	events chan Event
}

// Events returns the channel of events. It is closed when the subscription ends.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close ends the subscription
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Hub broadcasts events to every subscription. A subscriber whose buffer is full is dropped
// so a stalled client cannot hold back the others.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
	logger *slog.Logger
}

// NewHub creates a Hub giving each subscription a buffer of the given size
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a new subscription
func (h *Hub) Subscribe() (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	sub := &Subscription{hub: h, events: make(chan Event, h.buffer)}
	h.subs[sub] = struct{}{}

	return sub, nil
}

// Publish delivers e to every subscription without blocking
func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub.events <- e:
		default:
			delete(h.subs, sub)
			close(sub.events)
			h.logger.Warn("feed_subscriber_dropped", "collection", e.Collection, "subscribers", len(h.subs))
		}
	}
}

// Len returns the number of active subscriptions
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs)
}

// Close ends every subscription and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.events)
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; !ok {
		return
	}

	delete(h.subs, sub)
	close(sub.events)
}
