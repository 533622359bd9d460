package session

import (
	"errors"
	"sync"
)

// ErrSessionNotFound indicates no live session exists for the requested id.
var ErrSessionNotFound = errors.New("ERR_WAPP_SESSION_NOT_FOUND")

// ErrNoDefaultSession indicates the company has no default connection online.
var ErrNoDefaultSession = errors.New("ERR_NO_DEF_WAPP_FOUND")

// Registry owns every live Session, keyed by connection id. It is a plain
// constructed dependency; callers receive the one instance built at wiring
// time.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session for the connection id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Default returns the company's default connection session.
func (r *Registry) Default(companyID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sess := range r.sessions {
		if sess.CompanyID == companyID && sess.IsDefault {
			return sess, nil
		}
	}
	return nil, ErrNoDefaultSession
}

// Put registers the session, replacing any previous entry for the same id.
func (r *Registry) Put(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = sess
}

// remove drops the session for the id, returning it when present.
func (r *Registry) remove(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil
	}
	delete(r.sessions, id)
	return sess
}

// List returns a snapshot of all registered sessions.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, sess)
	}
	return out
}

// Len reports the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
