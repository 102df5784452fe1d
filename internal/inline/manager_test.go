package inline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/madved/inlineq/internal/catalog"
	"github.com/madved/inlineq/internal/directory"
	"github.com/madved/inlineq/internal/protocol"
	"github.com/madved/inlineq/internal/storage"
	"github.com/madved/inlineq/internal/transport"
)

// fakeMessenger records outbound traffic. Completion callbacks are captured
// and fired by the test, honoring the contract that done never runs before
// GetInlineBotResults returns.
type fakeMessenger struct {
	sent    []sentQuery
	answers []*protocol.Answer
}

type sentQuery struct {
	req  *transport.InlineQueryRequest
	done func(*protocol.BotResults, error)
}

func (f *fakeMessenger) GetInlineBotResults(_ context.Context, req *transport.InlineQueryRequest, done func(*protocol.BotResults, error)) {
	f.sent = append(f.sent, sentQuery{req: req, done: done})
}

func (f *fakeMessenger) SetInlineBotResults(_ context.Context, answer *protocol.Answer) error {
	f.answers = append(f.answers, answer)
	return nil
}

// testTimers captures AfterFunc callbacks for manual firing.
type testTimers struct {
	durations []time.Duration
	fns       []func()
}

func (tt *testTimers) afterFunc(d time.Duration, f func()) *time.Timer {
	tt.durations = append(tt.durations, d)
	tt.fns = append(tt.fns, f)
	return nil
}

// fire runs and removes the oldest captured timer.
func (tt *testTimers) fire(t *testing.T) {
	t.Helper()
	if len(tt.fns) == 0 {
		t.Fatal("no timer armed")
	}
	f := tt.fns[0]
	tt.fns = tt.fns[1:]
	tt.durations = tt.durations[1:]
	f()
}

type managerHarness struct {
	m         *Manager
	messenger *fakeMessenger
	clock     *testClock
	timers    *testTimers
	dir       *directory.Memory
	store     *storage.MemoryStore
}

func newTestManager(t *testing.T, opts ...Option) *managerHarness {
	t.Helper()

	dir := directory.NewMemory()
	dir.Add(directory.BotInfo{ID: 42, Username: "pizzabot", IsInline: true})
	dir.Add(directory.BotInfo{ID: 43, Username: "plainbot"})
	dir.Add(directory.BotInfo{ID: 44, Username: "geobot", IsInline: true, NeedsLocation: true})

	h := &managerHarness{
		messenger: &fakeMessenger{},
		clock:     newTestClock(),
		timers:    &testTimers{},
		dir:       dir,
		store:     storage.NewMemoryStore(),
	}

	files := catalog.NewMemoryFileRegistry()
	h.m = New(h.messenger, dir, h.store, files, catalog.NewMemoryMediaCatalog(files), nil, discardLogger(), opts...)
	h.m.now = h.clock.Now
	h.m.afterFunc = h.timers.afterFunc
	return h
}

func textArticle(id string) protocol.Result {
	return protocol.Result{
		ID:    id,
		Type:  "article",
		Title: "title " + id,
		SendMessage: &protocol.SendMessage{
			Kind: protocol.SendText,
			Text: "text " + id,
		},
	}
}

func TestRequestResultsValidation(t *testing.T) {
	t.Parallel()
	h := newTestManager(t)

	if _, err := h.m.RequestResults(7777, 1, nil, "q", "", func(error) {}); !errors.Is(err, ErrBotNotFound) {
		t.Errorf("unknown bot: err = %v, want ErrBotNotFound", err)
	}
	if _, err := h.m.RequestResults(43, 1, nil, "q", "", func(error) {}); !errors.Is(err, ErrNotInlineBot) {
		t.Errorf("non-inline bot: err = %v, want ErrNotInlineBot", err)
	}
	if len(h.messenger.sent) != 0 {
		t.Errorf("rejected requests reached the transport: %d", len(h.messenger.sent))
	}
}

func TestRequestResultsRoundTrip(t *testing.T) {
	t.Parallel()
	h := newTestManager(t)

	var doneErr error
	doneFired := false
	fp, err := h.m.RequestResults(42, 1, nil, "piz", "", func(err error) {
		doneFired = true
		doneErr = err
	})
	if err != nil {
		t.Fatalf("RequestResults: %v", err)
	}

	if len(h.messenger.sent) != 1 {
		t.Fatalf("transport sends = %d, want 1", len(h.messenger.sent))
	}
	req := h.messenger.sent[0].req
	if req.BotID != 42 || req.Query != "piz" || req.Offset != "" {
		t.Fatalf("unexpected outbound request: %+v", req)
	}

	h.messenger.sent[0].done(&protocol.BotResults{
		QueryID:   99,
		CacheTime: 300,
		Results:   []protocol.Result{textArticle("a"), textArticle("b")},
	}, nil)

	if !doneFired || doneErr != nil {
		t.Fatalf("completion: fired = %v, err = %v", doneFired, doneErr)
	}

	results := h.m.ConsumeResults(fp)
	if results == nil {
		t.Fatal("ConsumeResults returned nil after success")
	}
	if len(results.Items) != 2 {
		t.Fatalf("results = %d, want 2", len(results.Items))
	}
	if h.m.CachedQueryCount() != 1 {
		t.Fatalf("cached queries = %d, want 1", h.m.CachedQueryCount())
	}

	// The last reference is gone, so eviction is scheduled one TTL out.
	if n := len(h.timers.durations); n == 0 {
		t.Fatal("no eviction timer armed")
	} else if d := h.timers.durations[n-1]; d != 300*time.Second {
		t.Fatalf("eviction delay = %v, want 300s", d)
	}
}

func TestIdenticalRequestsCoalesce(t *testing.T) {
	t.Parallel()
	h := newTestManager(t)

	var errs []error
	done := func(err error) { errs = append(errs, err) }

	fp1, err := h.m.RequestResults(42, 1, nil, "piz", "", done)
	if err != nil {
		t.Fatalf("first RequestResults: %v", err)
	}
	fp2, err := h.m.RequestResults(42, 1, nil, "piz", "", done)
	if err != nil {
		t.Fatalf("second RequestResults: %v", err)
	}
	if fp1 != fp2 {
		t.Fatalf("identical requests got different fingerprints: %d vs %d", fp1, fp2)
	}
	if len(h.messenger.sent) != 1 {
		t.Fatalf("transport sends = %d, want 1", len(h.messenger.sent))
	}

	h.messenger.sent[0].done(&protocol.BotResults{
		QueryID:   99,
		CacheTime: 300,
		Results:   []protocol.Result{textArticle("a")},
	}, nil)

	if len(errs) != 2 || errs[0] != nil || errs[1] != nil {
		t.Fatalf("completions = %v, want two nils", errs)
	}

	first := h.m.ConsumeResults(fp1)
	second := h.m.ConsumeResults(fp2)
	if first == nil || second == nil {
		t.Fatal("a coalesced caller got nil results")
	}
	if len(first.Items) != 1 || len(second.Items) != 1 {
		t.Fatalf("result counts = %d, %d, want 1, 1", len(first.Items), len(second.Items))
	}
}

func TestSupersededQueries(t *testing.T) {
	t.Parallel()
	h := newTestManager(t)

	var err1, err2, err3 error
	fp1, _ := h.m.RequestResults(42, 1, nil, "p", "", func(err error) { err1 = err })
	if len(h.messenger.sent) != 1 {
		t.Fatalf("first query not dispatched immediately: sends = %d", len(h.messenger.sent))
	}

	// Inside the inter-query delay: queued, not sent.
	h.m.RequestResults(42, 1, nil, "pi", "", func(err error) { err2 = err })
	if len(h.messenger.sent) != 1 {
		t.Fatalf("queued query was sent early: sends = %d", len(h.messenger.sent))
	}

	// Replacing the queued query cancels it.
	fp3, _ := h.m.RequestResults(42, 1, nil, "piz", "", func(err error) { err3 = err })
	if !errors.Is(err2, ErrSuperseded) {
		t.Fatalf("replaced pending query err = %v, want ErrSuperseded", err2)
	}

	// Delay elapses: the in-flight first send is cancelled, the third goes out.
	h.clock.Advance(defaultInterQueryDelay)
	h.timers.fire(t)
	if !errors.Is(err1, ErrSuperseded) {
		t.Fatalf("cancelled in-flight query err = %v, want ErrSuperseded", err1)
	}
	if len(h.messenger.sent) != 2 {
		t.Fatalf("sends = %d, want 2", len(h.messenger.sent))
	}

	// The late completion of the superseded send must be discarded.
	h.messenger.sent[0].done(&protocol.BotResults{
		QueryID: 98, CacheTime: 300,
		Results: []protocol.Result{textArticle("stale")},
	}, nil)
	if got := h.m.ConsumeResults(fp1); got != nil {
		t.Fatalf("superseded fingerprint resurrected: %+v", got)
	}

	h.messenger.sent[1].done(&protocol.BotResults{
		QueryID: 99, CacheTime: 300,
		Results: []protocol.Result{textArticle("a")},
	}, nil)
	if err3 != nil {
		t.Fatalf("final query err = %v", err3)
	}
	if got := h.m.ConsumeResults(fp3); got == nil || len(got.Items) != 1 {
		t.Fatalf("final query results = %+v, want 1 item", got)
	}
}

func TestTransportFailureYieldsMiss(t *testing.T) {
	t.Parallel()
	h := newTestManager(t)

	var doneErr error
	fp, _ := h.m.RequestResults(42, 1, nil, "piz", "", func(err error) { doneErr = err })

	wantErr := errors.New("FLOOD_WAIT")
	h.messenger.sent[0].done(nil, wantErr)

	if !errors.Is(doneErr, wantErr) {
		t.Fatalf("completion err = %v, want %v", doneErr, wantErr)
	}
	if got := h.m.ConsumeResults(fp); got != nil {
		t.Fatalf("failed request produced results: %+v", got)
	}
	if h.m.CachedQueryCount() != 0 {
		t.Fatalf("failed entry retained: %d", h.m.CachedQueryCount())
	}
}

func TestLookupSendPayload(t *testing.T) {
	t.Parallel()
	h := newTestManager(t)

	fp, _ := h.m.RequestResults(42, 1, nil, "piz", "", func(error) {})
	h.messenger.sent[0].done(&protocol.BotResults{
		QueryID: 99, CacheTime: 300,
		Results: []protocol.Result{textArticle("a")},
	}, nil)
	h.m.ConsumeResults(fp)

	payload, ok := h.m.LookupSendPayload(99, "a")
	if !ok {
		t.Fatal("registered payload not found")
	}
	text, ok := payload.Content.(TextContent)
	if !ok || text.Text != "text a" {
		t.Fatalf("payload content = %#v, want text", payload.Content)
	}

	if _, ok := h.m.LookupSendPayload(99, "zzz"); ok {
		t.Fatal("lookup of unregistered result succeeded")
	}
	if _, ok := h.m.LookupSendPayload(12345, "a"); ok {
		t.Fatal("lookup under wrong query id succeeded")
	}

	// A hit counts as usage of the owning bot.
	bots := h.m.RecentBots(nil)
	if len(bots) != 1 || bots[0] != 42 {
		t.Fatalf("recent bots after lookup = %v, want [42]", bots)
	}

	// Usage of the bot already at the front writes nothing.
	writes := h.store.Writes
	if _, ok := h.m.LookupSendPayload(99, "a"); !ok {
		t.Fatal("second lookup failed")
	}
	if h.store.Writes != writes {
		t.Fatalf("front-of-list usage persisted: writes %d -> %d", writes, h.store.Writes)
	}
}

func TestConfiguredInterQueryDelay(t *testing.T) {
	t.Parallel()
	h := newTestManager(t, WithInterQueryDelay(10*time.Second))

	h.m.RequestResults(42, 1, nil, "p", "", func(error) {})
	h.m.RequestResults(42, 1, nil, "pi", "", func(error) {})

	// The second query waits out the configured spacing, not the default.
	if n := len(h.timers.durations); n == 0 {
		t.Fatal("no dispatch timer armed")
	} else if d := h.timers.durations[n-1]; d != 10*time.Second {
		t.Fatalf("dispatch delay = %v, want 10s", d)
	}
}

func TestInterQueryDelayZeroKeepsDefault(t *testing.T) {
	t.Parallel()
	h := newTestManager(t, WithInterQueryDelay(0))

	if h.m.interQueryDelay != defaultInterQueryDelay {
		t.Fatalf("delay = %v, want default %v", h.m.interQueryDelay, defaultInterQueryDelay)
	}
}
