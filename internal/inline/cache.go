package inline

import (
	"log/slog"
	"time"
)

// cacheEntry tracks one fingerprint's results and the consumers referencing
// them. results == nil means no answer has been stored (request in flight or
// failed).
type cacheEntry struct {
	results  *Results
	expireAt time.Time
	pending  int

	// awaiting is set while a transport request for this fingerprint is
	// queued or in flight.
	awaiting bool
	waiters  []func(error)

	evictArmed bool
}

// resultCache is the fingerprint-keyed result cache with pending reference
// counting and deferred TTL eviction. It is not self-locking: every method
// must be called under the manager's lock.
type resultCache struct {
	entries map[uint64]*cacheEntry
	now     func() time.Time

	// armEvict schedules dropExpired(fp) to run at the given instant.
	armEvict func(fp uint64, at time.Time)

	logger *slog.Logger
}

func newResultCache(now func() time.Time, logger *slog.Logger) *resultCache {
	return &resultCache{
		entries: make(map[uint64]*cacheEntry),
		now:     now,
		logger:  logger,
	}
}

// reservation describes what reserve found for a fingerprint.
type reservation struct {
	isNew    bool
	fresh    bool
	awaiting bool
}

// reserve takes one reference on the entry for fp, creating it when absent.
func (c *resultCache) reserve(fp uint64) reservation {
	if e, ok := c.entries[fp]; ok {
		e.pending++
		return reservation{
			fresh:    e.results != nil && c.now().Before(e.expireAt),
			awaiting: e.awaiting,
		}
	}
	c.entries[fp] = &cacheEntry{pending: 1}
	return reservation{isNew: true}
}

// markAwaiting records that a transport request was queued for fp.
func (c *resultCache) markAwaiting(fp uint64) {
	if e, ok := c.entries[fp]; ok {
		e.awaiting = true
	}
}

// addWaiter attaches a completion callback to fp's outstanding request.
func (c *resultCache) addWaiter(fp uint64, done func(error)) {
	if e, ok := c.entries[fp]; ok {
		e.waiters = append(e.waiters, done)
	}
}

// complete records the outcome of fp's outstanding request and fires its
// waiters. On failure the previously stored results (if any) are kept
// untouched; a never-answered entry keeps results == nil so releases report
// the miss.
func (c *resultCache) complete(fp uint64, results *Results, cacheTime time.Duration, err error) {
	e, ok := c.entries[fp]
	if !ok {
		return
	}
	e.awaiting = false
	if results != nil {
		e.results = results
		e.expireAt = c.now().Add(cacheTime)
	}

	waiters := e.waiters
	e.waiters = nil
	for _, done := range waiters {
		done(err)
	}
}

// release drops one reference on fp and returns the caller's snapshot. The
// last holder of an expired entry gets the stored results moved out and the
// entry erased; otherwise the caller gets an independent deep copy and, when
// no holders remain, eviction is scheduled for the expiry instant.
func (c *resultCache) release(fp uint64) *Results {
	e, ok := c.entries[fp]
	if !ok {
		return nil
	}
	e.pending--
	c.logger.Debug("inline query released", "fingerprint", fp, "pending", e.pending)

	if e.pending <= 0 {
		if !c.now().Before(e.expireAt) {
			results := e.results
			delete(c.entries, fp)
			return results
		}
		if !e.evictArmed {
			e.evictArmed = true
			c.armEvict(fp, e.expireAt)
		}
	}
	return e.results.Clone()
}

// dropExpired runs when an eviction timer fires. Arming and firing are not
// atomic with later reservations or re-fetches, so current state decides:
// referenced entries stay, refreshed entries get the timer re-armed.
func (c *resultCache) dropExpired(fp uint64) {
	e, ok := c.entries[fp]
	if !ok {
		return
	}
	e.evictArmed = false
	if e.pending > 0 {
		return
	}
	if c.now().Before(e.expireAt) {
		e.evictArmed = true
		c.armEvict(fp, e.expireAt)
		return
	}
	delete(c.entries, fp)
	c.logger.Debug("dropped cached inline query results", "fingerprint", fp)
}

// len reports the number of live entries.
func (c *resultCache) len() int { return len(c.entries) }
