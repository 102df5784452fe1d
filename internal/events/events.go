// Package events carries the engine's fire-and-forget outbound
// notifications. Delivery is best effort: a subscriber that cannot keep up
// loses events instead of blocking the engine.
package events

import (
	"log/slog"
	"sync"

	"github.com/madved/inlineq/internal/protocol"
)

// NewInlineQuery notifies that a bot process received an inline query.
type NewInlineQuery struct {
	QueryID  int64
	SenderID int64
	Location *protocol.Location
	Query    string
	Offset   string
}

// ChosenResult notifies that a user picked one of the published results.
type ChosenResult struct {
	UserID          int64
	Location        *protocol.Location
	Query           string
	ResultID        string
	InlineMessageID string
}

// Event is one of the notification types above.
type Event any

// Bus fans events out to subscribers over bounded channels.
type Bus struct {
	mu     sync.Mutex
	subs   []chan Event
	logger *slog.Logger
}

// NewBus creates an event bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger.With("component", "events")}
}

// Subscribe registers a subscriber with the given buffer size and returns
// its channel. There is no unsubscribe; subscribers live as long as the bus.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers an event to every subscriber without blocking. Events to
// full subscribers are dropped.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Debug("dropping event for slow subscriber", "event", ev)
		}
	}
}
