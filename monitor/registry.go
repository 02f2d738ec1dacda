package monitor

import "sync"

// Registry hands out one Session per tab or client ID. A session lives until
// Close is called for its ID, which the HTTP API does on DELETE.
type Registry struct {
	ev *Evaluator

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(ev *Evaluator) *Registry {
	return &Registry{ev: ev, sessions: make(map[string]*Session)}
}

// Session returns the session for id, creating it on first use.
func (r *Registry) Session(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		s = NewSession(r.ev)
		r.sessions[id] = s
	}
	return s
}

// Lookup returns the session for id without creating it.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close drops the session for id, as when a tab is closed.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
