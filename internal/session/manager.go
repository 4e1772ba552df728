// Package session keeps one session-scoped key-value store per browser session.
// A session's store disappears when the session is ended or has been idle for
// longer than the manager's TTL.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atinyakov/DayKeeper/internal/kv"
)

type entry struct {
	store    *kv.MemoryStore
	lastSeen time.Time
}

// Manager maps session ids to their stores.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

// NewManager returns a Manager expiring sessions idle for longer than ttl.
// A zero ttl keeps sessions until they are ended explicitly.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// New starts a session and returns its id and empty store.
func (m *Manager) New() (string, kv.Store) {
	id := uuid.NewString()
	e := &entry{store: kv.NewMemoryStore(), lastSeen: m.now()}

	m.mu.Lock()
	m.sessions[id] = e
	m.mu.Unlock()

	return id, e.store
}

// Get returns the store of session id and marks the session as active.
func (m *Manager) Get(id string) (kv.Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if m.expired(e, m.now()) {
		delete(m.sessions, id)
		return nil, false
	}
	e.lastSeen = m.now()
	return e.store, true
}

// End drops session id and everything in its store.
func (m *Manager) End(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Sweep drops every session idle for longer than the TTL and reports how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.sessions {
		if m.expired(e, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) expired(e *entry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.lastSeen) > m.ttl
}
