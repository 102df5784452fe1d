package inline

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClock is a manually advanced clock for cache tests.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache(clock *testClock) (*resultCache, *[]uint64) {
	c := newResultCache(clock.Now, discardLogger())
	armed := &[]uint64{}
	c.armEvict = func(fp uint64, at time.Time) { *armed = append(*armed, fp) }
	return c, armed
}

func twoArticles() *Results {
	return &Results{
		QueryID: 99,
		Items: []Result{
			&ArticleResult{ID: "a", Title: "first"},
			&ArticleResult{ID: "b", Title: "second"},
		},
	}
}

func TestResultCacheLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("ReservedEntrySurvivesExpiry", func(t *testing.T) {
		t.Parallel()

		clock := newTestClock()
		c, _ := newTestCache(clock)
		const fp = uint64(7)

		c.reserve(fp)
		c.complete(fp, twoArticles(), 300*time.Second, nil)
		c.reserve(fp)

		clock.Advance(time.Hour)

		if got := c.release(fp); got == nil {
			t.Fatal("first release returned nil results")
		}
		if c.len() != 1 {
			t.Fatalf("entry erased while still referenced: len = %d", c.len())
		}

		if got := c.release(fp); got == nil {
			t.Fatal("last release returned nil results")
		}
		if c.len() != 0 {
			t.Fatalf("expired unreferenced entry not erased: len = %d", c.len())
		}
	})

	t.Run("IndependentSnapshots", func(t *testing.T) {
		t.Parallel()

		clock := newTestClock()
		c, _ := newTestCache(clock)
		const fp = uint64(7)

		c.reserve(fp)
		c.reserve(fp)
		c.complete(fp, twoArticles(), 300*time.Second, nil)

		first := c.release(fp)
		second := c.release(fp)
		if first == nil || second == nil {
			t.Fatal("release returned nil for a completed entry")
		}

		first.Items[0].(*ArticleResult).Title = "mutated"
		if got := second.Items[0].(*ArticleResult).Title; got != "first" {
			t.Errorf("snapshots are aliased: second holder sees %q", got)
		}
	})

	t.Run("EvictionArmedOnceOnLastRelease", func(t *testing.T) {
		t.Parallel()

		clock := newTestClock()
		c, armed := newTestCache(clock)
		const fp = uint64(7)

		c.reserve(fp)
		c.complete(fp, twoArticles(), 300*time.Second, nil)
		c.release(fp)
		if len(*armed) != 1 {
			t.Fatalf("eviction timers armed = %d, want 1", len(*armed))
		}

		// A later reserve/release cycle on the still-armed entry must not
		// arm a second timer.
		c.reserve(fp)
		c.release(fp)
		if len(*armed) != 1 {
			t.Fatalf("eviction timer re-armed while armed: %d", len(*armed))
		}
	})

	t.Run("DropExpiredChecksState", func(t *testing.T) {
		t.Parallel()

		clock := newTestClock()
		c, armed := newTestCache(clock)
		const fp = uint64(7)

		c.reserve(fp)
		c.complete(fp, twoArticles(), 300*time.Second, nil)
		c.release(fp)

		// Re-referenced before the timer fired: entry stays.
		c.reserve(fp)
		c.dropExpired(fp)
		if c.len() != 1 {
			t.Fatal("fired eviction erased a referenced entry")
		}
		c.release(fp)

		// Still fresh when the timer fires: re-armed instead of dropped.
		*armed = (*armed)[:0]
		c.dropExpired(fp)
		if c.len() != 1 {
			t.Fatal("fired eviction erased a fresh entry")
		}
		if len(*armed) != 1 {
			t.Fatalf("fresh entry not re-armed: %d", len(*armed))
		}

		clock.Advance(time.Hour)
		c.dropExpired(fp)
		if c.len() != 0 {
			t.Fatal("expired unreferenced entry survived eviction")
		}
	})

	t.Run("FailedRequestLeavesMiss", func(t *testing.T) {
		t.Parallel()

		clock := newTestClock()
		c, _ := newTestCache(clock)
		const fp = uint64(7)

		var gotErr error
		c.reserve(fp)
		c.markAwaiting(fp)
		c.addWaiter(fp, func(err error) { gotErr = err })
		c.complete(fp, nil, 0, ErrSuperseded)

		if gotErr != ErrSuperseded {
			t.Fatalf("waiter error = %v, want ErrSuperseded", gotErr)
		}
		if got := c.release(fp); got != nil {
			t.Fatalf("release after failure returned results: %+v", got)
		}
		if c.len() != 0 {
			t.Fatal("failed entry not erased on last release")
		}
	})
}
