package agent

import "sync"

// SessionState identifies one agent conversation. It is immutable after
// creation; Reset replaces it wholesale rather than mutating it.
type SessionState struct {
	// ActivityID ties a sequence of turns together from the agent's
	// perspective. Stable until the session is reset.
	ActivityID string
}

// sessionTable maps conversation keys to session state. Reads are
// lock-free in the common case; only creation and removal take the write
// lock. Sessions are never evicted; growth is bounded by the number of
// distinct conversations in the process lifetime.
type sessionTable struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

func newSessionTable() *sessionTable {
	return &sessionTable{sessions: make(map[string]*SessionState)}
}

// ensure returns the session for key, creating it if needed. Creation is
// double-checked so concurrent first use produces exactly one winner.
func (t *sessionTable) ensure(key string) *SessionState {
	t.mu.RLock()
	s, ok := t.sessions[key]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[key]; ok {
		return s
	}
	s = &SessionState{ActivityID: newID()}
	t.sessions[key] = s
	return s
}

// remove drops the session for key. No-op if absent.
func (t *sessionTable) remove(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, key)
}

// get returns the session for key without creating it.
func (t *sessionTable) get(key string) (*SessionState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[key]
	return s, ok
}
