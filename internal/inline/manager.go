// Package inline implements the consumer- and producer-side orchestration of
// Telegram inline queries: outbound query dispatch with rate limiting and
// supersession, a fingerprint-keyed result cache, translation of raw bot
// answers into typed results, the per-result send payload registry and the
// persisted recently-used-bot list.
package inline

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/madved/inlineq/internal/catalog"
	"github.com/madved/inlineq/internal/directory"
	"github.com/madved/inlineq/internal/events"
	"github.com/madved/inlineq/internal/protocol"
	"github.com/madved/inlineq/internal/storage"
	"github.com/madved/inlineq/internal/transport"
)

// Manager owns all inline query state. All public methods are safe for
// concurrent use; internal collaborator callbacks re-acquire the same lock.
type Manager struct {
	mu       sync.Mutex
	cache    *resultCache
	slot     dispatchSlot
	registry *contentRegistry
	recent   *recentBots

	messenger transport.Messenger
	directory directory.Service
	store     storage.Store
	files     catalog.FileRegistry
	media     catalog.MediaCatalog
	bus       *events.Bus
	logger    *slog.Logger

	interQueryDelay time.Duration

	// Test seams. Production values are time.Now and time.AfterFunc.
	now       func() time.Time
	afterFunc func(d time.Duration, f func()) *time.Timer
}

// Option adjusts optional Manager behavior.
type Option func(*Manager)

// WithInterQueryDelay overrides the minimum spacing between outbound inline
// queries. Zero or negative keeps the default.
func WithInterQueryDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.interQueryDelay = d
		}
	}
}

// New wires a Manager from its collaborators. The bus may be nil when nobody
// consumes inbound notifications.
func New(
	messenger transport.Messenger,
	dir directory.Service,
	store storage.Store,
	files catalog.FileRegistry,
	media catalog.MediaCatalog,
	bus *events.Bus,
	logger *slog.Logger,
	opts ...Option,
) *Manager {
	m := &Manager{
		messenger:       messenger,
		directory:       dir,
		store:           store,
		files:           files,
		media:           media,
		bus:             bus,
		logger:          logger.With("component", "inline"),
		interQueryDelay: defaultInterQueryDelay,
		now:             time.Now,
		afterFunc:       time.AfterFunc,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cache = newResultCache(func() time.Time { return m.now() }, m.logger)
	m.cache.armEvict = m.armEviction
	m.registry = newContentRegistry(m.logger)
	m.recent = newRecentBots(store, dir, m.logger)
	m.recent.reenter = m.runLocked
	return m
}

// runLocked runs fn holding the manager lock. Collaborator completions that
// may arrive on foreign goroutines route through it.
func (m *Manager) runLocked(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

// RequestResults asks the target bot for inline results. It validates the
// target synchronously, returns the fingerprint identifying the request, and
// invokes done once the request settles: nil on results available, the
// failure otherwise. Every call whose done fired must be balanced by exactly
// one ConsumeResults call with the returned fingerprint.
//
// done may run before RequestResults returns (cache hit) and always runs on
// the Manager's internal execution path; it must not call back into the
// Manager.
func (m *Manager) RequestResults(botID, dialogID int64, loc *protocol.Location, query, offset string, done func(error)) (uint64, error) {
	bot, ok := m.directory.Bot(botID)
	if !ok {
		return 0, ErrBotNotFound
	}
	if !bot.IsInline {
		return 0, ErrNotInlineBot
	}

	query = strings.TrimSpace(query)
	fp := Fingerprint(botID, query, offset, bot.NeedsLocation, loc)

	m.mu.Lock()
	defer m.mu.Unlock()

	res := m.cache.reserve(fp)
	switch {
	case res.fresh:
		m.logger.Debug("inline query served from cache", "fingerprint", fp, "bot_id", botID)
		done(nil)
	case res.awaiting:
		// A request for this exact fingerprint is already queued or in
		// flight; attach instead of sending again.
		m.cache.addWaiter(fp, done)
	default:
		m.cache.markAwaiting(fp)
		m.cache.addWaiter(fp, done)
		m.enqueue(&pendingQuery{
			fingerprint: fp,
			bot:         bot,
			dialogID:    dialogID,
			location:    loc,
			query:       query,
			offset:      offset,
		})
	}
	return fp, nil
}

// ConsumeResults releases the reference taken by a completed RequestResults
// call and returns the caller's snapshot, nil when the request failed.
func (m *Manager) ConsumeResults(fp uint64) *Results {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache.release(fp)
}

// LookupSendPayload returns the message content registered for a chosen
// result. A hit also counts as usage of the owning bot.
func (m *Manager) LookupSendPayload(queryID int64, resultID string) (*SendPayload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	payload, ok := m.registry.lookup(queryID, resultID)
	if !ok {
		return nil, false
	}
	if botID, known := m.registry.queryBot(queryID); known {
		m.recent.markUsed(context.Background(), botID)
	}
	return &payload, true
}

// RecentBots returns the recently used inline bots, most recent first,
// triggering the lazy load from storage when needed. When the list is not
// loaded yet the returned slice reflects only what is restored so far and
// done fires once loading settles; done is subject to the same callback
// rules as RequestResults.
func (m *Manager) RecentBots(done func(error)) []int64 {
	settled := func() {
		if done != nil {
			done(nil)
		}
	}

	m.mu.Lock()
	start, loaded := m.recent.ensureLoaded(settled)
	list := m.recent.list()
	m.mu.Unlock()

	// The load runs outside the lock: a synchronous directory completes
	// resolutions before start returns and they re-acquire the lock.
	switch {
	case loaded:
		settled()
	case start != nil:
		start(context.Background())
		m.mu.Lock()
		list = m.recent.list()
		m.mu.Unlock()
	}
	return list
}

// ForgetRecentBot removes a bot from the recently used list.
func (m *Manager) ForgetRecentBot(botID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recent.forget(context.Background(), botID)
}

// HandleNewQuery is the producer-side entry point for an inline query
// addressed to a locally operated bot. It is published to subscribers
// best-effort.
func (m *Manager) HandleNewQuery(queryID, senderID int64, loc *protocol.Location, query, offset string) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.NewInlineQuery{
		QueryID:  queryID,
		SenderID: senderID,
		Location: loc,
		Query:    query,
		Offset:   offset,
	})
}

// HandleChosenResult is the producer-side notification that a user picked
// one of the bot's results.
func (m *Manager) HandleChosenResult(userID int64, loc *protocol.Location, query, resultID, inlineMessageID string) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.ChosenResult{
		UserID:          userID,
		Location:        loc,
		Query:           query,
		ResultID:        resultID,
		InlineMessageID: inlineMessageID,
	})
}

// CachedQueryCount reports live cache entries, exposed for periodic
// observability logging.
func (m *Manager) CachedQueryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache.len()
}

// armEviction schedules the TTL eviction check for fp. Caller holds the
// lock; the fired callback re-acquires it.
func (m *Manager) armEviction(fp uint64, at time.Time) {
	d := at.Sub(m.now())
	if d < 0 {
		d = 0
	}
	m.afterFunc(d, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.cache.dropExpired(fp)
	})
}
