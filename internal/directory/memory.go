package directory

import "sync"

// Memory is an in-process directory, used by tests and as the default wiring
// until a real identity source is attached.
type Memory struct {
	mu         sync.RWMutex
	byID       map[int64]BotInfo
	byUsername map[string]BotInfo
}

// NewMemory creates an empty in-process directory.
func NewMemory() *Memory {
	return &Memory{
		byID:       make(map[int64]BotInfo),
		byUsername: make(map[string]BotInfo),
	}
}

// Add registers or replaces a bot identity.
func (m *Memory) Add(info BotInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID[info.ID] = info
	if info.Username != "" {
		m.byUsername[info.Username] = info
	}
}

// Bot answers from local knowledge only.
func (m *Memory) Bot(id int64) (BotInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.byID[id]
	return info, ok
}

// ResolveBot completes synchronously against local knowledge.
func (m *Memory) ResolveBot(id int64, done func(BotInfo, error)) {
	if info, ok := m.Bot(id); ok {
		done(info, nil)
		return
	}
	done(BotInfo{}, ErrUnknownBot)
}

// ResolveUsername completes synchronously against local knowledge.
func (m *Memory) ResolveUsername(username string, done func(BotInfo, error)) {
	m.mu.RLock()
	info, ok := m.byUsername[username]
	m.mu.RUnlock()

	if ok {
		done(info, nil)
		return
	}
	done(BotInfo{}, ErrUnknownBot)
}
