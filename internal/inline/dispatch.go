package inline

import (
	"context"
	"time"

	"github.com/madved/inlineq/internal/directory"
	"github.com/madved/inlineq/internal/protocol"
	"github.com/madved/inlineq/internal/transport"
)

// defaultInterQueryDelay is the minimum spacing between outbound inline
// queries.
const defaultInterQueryDelay = 3000 * time.Millisecond

// pendingQuery is a query waiting for its turn in the dispatch slot.
type pendingQuery struct {
	fingerprint uint64
	bot         directory.BotInfo
	dialogID    int64
	location    *protocol.Location
	query       string
	offset      string
}

// dispatchSlot holds at most one not-yet-sent query plus the identity of the
// currently in-flight request. Guarded by the manager's lock.
type dispatchSlot struct {
	pending     *pendingQuery
	nextAllowed time.Time
	timerArmed  bool

	// sentGen identifies the current in-flight request; completions carrying
	// an older generation are discarded.
	sentGen    uint64
	sentFp     uint64
	sentActive bool
	cancelSent context.CancelFunc
}

// enqueue installs q as the slot's pending query, cancelling any previously
// queued one, then runs the scheduling step. Caller holds the lock.
func (m *Manager) enqueue(q *pendingQuery) {
	if old := m.slot.pending; old != nil {
		m.logger.Debug("dropping superseded inline query", "fingerprint", old.fingerprint)
		m.slot.pending = nil
		m.cache.complete(old.fingerprint, nil, 0, ErrSuperseded)
	}
	m.slot.pending = q
	m.dispatchLocked()
}

// dispatchLocked is the scheduling step, invoked on enqueue and on timer
// fire. Caller holds the lock.
func (m *Manager) dispatchLocked() {
	q := m.slot.pending
	if q == nil {
		return
	}

	now := m.now()
	if now.Before(m.slot.nextAllowed) {
		if !m.slot.timerArmed {
			m.slot.timerArmed = true
			m.logger.Debug("scheduling inline query send",
				"fingerprint", q.fingerprint, "at", m.slot.nextAllowed)
			m.afterFunc(m.slot.nextAllowed.Sub(now), m.onDispatchTimer)
		}
		return
	}

	// The target may have vanished from the directory between validation and
	// dispatch; in that case the query waits for the next trigger.
	bot, ok := m.directory.Bot(q.bot.ID)
	if !ok {
		m.logger.Debug("inline bot not resolvable yet, retaining pending query", "bot_id", q.bot.ID)
		return
	}

	if m.slot.sentActive {
		m.logger.Debug("cancelling in-flight inline query", "fingerprint", m.slot.sentFp)
		m.slot.sentActive = false
		if m.slot.cancelSent != nil {
			m.slot.cancelSent()
		}
		m.cache.complete(m.slot.sentFp, nil, 0, ErrSuperseded)
	}

	m.slot.sentGen++
	gen := m.slot.sentGen
	m.slot.sentFp = q.fingerprint
	m.slot.sentActive = true

	ctx, cancel := context.WithCancel(context.Background())
	m.slot.cancelSent = cancel

	req := &transport.InlineQueryRequest{
		BotID:    bot.ID,
		Username: bot.Username,
		DialogID: q.dialogID,
		Location: q.location,
		Query:    q.query,
		Offset:   q.offset,
	}
	m.logger.Debug("sending inline query", "fingerprint", q.fingerprint, "bot_id", bot.ID)
	m.messenger.GetInlineBotResults(ctx, req, func(res *protocol.BotResults, err error) {
		m.onQueryResults(gen, q, res, err)
	})

	m.slot.nextAllowed = now.Add(m.interQueryDelay)
	m.slot.pending = nil
}

func (m *Manager) onDispatchTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slot.timerArmed = false
	m.dispatchLocked()
}

// onQueryResults is the transport completion path. Late completions of
// superseded sends are discarded.
func (m *Manager) onQueryResults(gen uint64, q *pendingQuery, res *protocol.BotResults, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.slot.sentGen || !m.slot.sentActive {
		m.logger.Debug("discarding completion of superseded inline query", "fingerprint", q.fingerprint)
		return
	}
	m.slot.sentActive = false
	if m.slot.cancelSent != nil {
		m.slot.cancelSent()
		m.slot.cancelSent = nil
	}

	if err != nil || res == nil {
		m.logger.Info("inline query failed",
			"fingerprint", q.fingerprint, "bot_id", q.bot.ID, "error", err)
		m.cache.complete(q.fingerprint, nil, 0, err)
		return
	}

	results := m.translate(q.bot.ID, res)
	m.cache.complete(q.fingerprint, results, time.Duration(res.CacheTime)*time.Second, nil)
}
