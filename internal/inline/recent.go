package inline

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/madved/inlineq/internal/directory"
	"github.com/madved/inlineq/internal/storage"
)

const (
	recentBotsCapacity = 5

	recentBotsKey         = "recently_used_inline_bots"
	recentBotUsernamesKey = "recently_used_inline_bot_usernames"
)

// recentBots tracks the short list of inline bots the user queried last,
// most recent first, persisted to the key-value store across restarts.
//
// The persisted list is loaded lazily on first access. Loading resolves every
// saved bot through the directory, so it is asynchronous; callers queue up on
// the same resolution round and are replayed once it settles. The directory
// may complete resolutions from another goroutine, so every completion routes
// its state mutation through reenter rather than touching fields directly.
type recentBots struct {
	state   recentLoadState
	ids     []int64
	waiters []func()

	store  storage.Store
	dir    directory.Service
	logger *slog.Logger

	// reenter runs fn under the same lock that guards all other resolver
	// mutations. The manager points it at its own lock after construction.
	reenter func(fn func())
}

type recentLoadState int

const (
	recentNotLoaded recentLoadState = iota
	recentLoading
	recentLoaded
)

func newRecentBots(store storage.Store, dir directory.Service, logger *slog.Logger) *recentBots {
	return &recentBots{
		store:   store,
		dir:     dir,
		logger:  logger,
		reenter: func(fn func()) { fn() },
	}
}

// ensureLoaded arranges for done to run once the persisted list has been
// restored. It returns loaded=true when the list is already available and
// done was not queued. When a load is needed it returns the start function
// instead; the caller must run it after releasing the manager lock, since a
// synchronous directory completes resolutions before start returns and the
// completions re-acquire the lock through reenter. Caller holds the manager
// lock; queued done callbacks run under it too.
func (r *recentBots) ensureLoaded(done func()) (start func(context.Context), loaded bool) {
	switch r.state {
	case recentLoaded:
		return nil, true
	case recentLoading:
		r.waiters = append(r.waiters, done)
		return nil, false
	}

	r.state = recentLoading
	r.waiters = append(r.waiters, done)
	return r.load, false
}

// load restores the saved list, preferring the ID form and falling back to
// usernames saved by older versions. It runs without the manager lock. Bots
// the directory no longer knows are silently dropped.
func (r *recentBots) load(ctx context.Context) {
	raw, err := r.store.Get(ctx, recentBotsKey)
	if err == nil && raw != "" {
		r.resolveSaved(strings.Split(raw, ","), func(ref string, done func(directory.BotInfo, error)) {
			id, convErr := strconv.ParseInt(ref, 10, 64)
			if convErr != nil {
				done(directory.BotInfo{}, convErr)
				return
			}
			r.dir.ResolveBot(id, done)
		})
		return
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		r.logger.Warn("failed to load recent inline bots", "error", err)
	}

	raw, err = r.store.Get(ctx, recentBotUsernamesKey)
	if err != nil || raw == "" {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("failed to load recent inline bot usernames", "error", err)
		}
		r.reenter(r.settle)
		return
	}
	r.resolveSaved(strings.Split(raw, ","), r.dir.ResolveUsername)
}

// resolveSaved resolves each saved reference and replays the survivors oldest
// to newest, so the most recently used bot ends up at the front again.
// remaining and resolved are touched only inside reenter, which serializes
// completions arriving from directory goroutines.
func (r *recentBots) resolveSaved(refs []string, resolve func(string, func(directory.BotInfo, error))) {
	if len(refs) == 0 {
		r.reenter(r.settle)
		return
	}

	remaining := len(refs)
	resolved := make([]*directory.BotInfo, len(refs))
	for i, ref := range refs {
		i, ref := i, ref
		resolve(ref, func(info directory.BotInfo, err error) {
			r.reenter(func() {
				if err != nil {
					r.logger.Debug("dropping stale recent inline bot", "ref", ref, "error", err)
				} else {
					resolved[i] = &info
				}
				remaining--
				if remaining > 0 {
					return
				}
				for j := len(resolved) - 1; j >= 0; j-- {
					if resolved[j] != nil {
						r.promote(resolved[j].ID)
					}
				}
				r.settle()
			})
		})
	}
}

func (r *recentBots) settle() {
	r.state = recentLoaded
	waiters := r.waiters
	r.waiters = nil
	for _, w := range waiters {
		w()
	}
}

// promote moves a bot to the front without persisting, used during replay.
func (r *recentBots) promote(botID int64) {
	for i, id := range r.ids {
		if id == botID {
			copy(r.ids[1:i+1], r.ids[:i])
			r.ids[0] = botID
			return
		}
	}
	r.ids = append(r.ids, 0)
	copy(r.ids[1:], r.ids)
	r.ids[0] = botID
	if len(r.ids) > recentBotsCapacity {
		r.ids = r.ids[:recentBotsCapacity]
	}
}

// markUsed promotes a bot to the front and reports whether the list changed.
// A bot already at the front is a no-op and nothing is persisted. Unknown
// bots, bots without inline support, and bots without a username are never
// inserted.
func (r *recentBots) markUsed(ctx context.Context, botID int64) bool {
	info, ok := r.dir.Bot(botID)
	if !ok || !info.IsInline || info.Username == "" {
		return false
	}
	if len(r.ids) > 0 && r.ids[0] == botID {
		return false
	}
	r.promote(botID)
	r.persist(ctx)
	return true
}

// forget removes a bot from the list, persisting when it was present.
func (r *recentBots) forget(ctx context.Context, botID int64) bool {
	for i, id := range r.ids {
		if id == botID {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			r.persist(ctx)
			return true
		}
	}
	return false
}

func (r *recentBots) list() []int64 {
	out := make([]int64, len(r.ids))
	copy(out, r.ids)
	return out
}

// persist saves both the ID list and the username list, most recent first.
func (r *recentBots) persist(ctx context.Context) {
	ids := make([]string, 0, len(r.ids))
	usernames := make([]string, 0, len(r.ids))
	for _, id := range r.ids {
		ids = append(ids, strconv.FormatInt(id, 10))
		if info, ok := r.dir.Bot(id); ok && info.Username != "" {
			usernames = append(usernames, info.Username)
		}
	}

	if err := r.store.Set(ctx, recentBotsKey, strings.Join(ids, ",")); err != nil {
		r.logger.Warn("failed to save recent inline bots", "error", err)
	}
	if err := r.store.Set(ctx, recentBotUsernamesKey, strings.Join(usernames, ",")); err != nil {
		r.logger.Warn("failed to save recent inline bot usernames", "error", err)
	}
}
