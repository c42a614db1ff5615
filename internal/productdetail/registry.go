package productdetail

import (
	"sync"
	"time"

	"github.com/angelmondragon/pim-console/internal/workflow"
)

type sessionKey struct {
	owner     string
	productID int
}

// Registry holds the open sessions, one per console session and product.
type Registry struct {
	mu       sync.Mutex
	sessions map[sessionKey]*Session
	deps     Deps
	idleTTL  time.Duration
}

// NewRegistry builds a registry creating sessions from deps. The backend
// is supplied per Open, since each console session has its own gateway.
// Sessions idle for longer than idleTTL are closed by Sweep; zero disables
// eviction.
func NewRegistry(deps Deps, idleTTL time.Duration) (*Registry, error) {
	if err := deps.validateShared(); err != nil {
		return nil, err
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Registry{
		sessions: make(map[sessionKey]*Session),
		deps:     deps,
		idleTTL:  idleTTL,
	}, nil
}

// Open returns the session of owner for productID, creating it when absent.
// A session opened for a different actor (e.g. after a role change) is
// closed and replaced. The bool reports whether a new session was created.
func (r *Registry) Open(owner string, productID int, actor workflow.Actor, backend Backend) (*Session, bool, error) {
	key := sessionKey{owner: owner, productID: productID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[key]; ok {
		if existing.Actor() == actor && !existing.Closed() {
			return existing, false, nil
		}
		existing.Close()
		delete(r.sessions, key)
	}
	deps := r.deps
	deps.Backend = backend
	s, err := NewSession(productID, actor, deps)
	if err != nil {
		return nil, false, err
	}
	r.sessions[key] = s
	return s, true, nil
}

func (r *Registry) Get(owner string, productID int) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionKey{owner: owner, productID: productID}]
	return s, ok
}

// Close closes and forgets one session.
func (r *Registry) Close(owner string, productID int) bool {
	key := sessionKey{owner: owner, productID: productID}
	r.mu.Lock()
	s, ok := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

// CloseOwner closes every session of owner and returns how many were open.
func (r *Registry) CloseOwner(owner string) int {
	var closing []*Session
	r.mu.Lock()
	for key, s := range r.sessions {
		if key.owner == owner {
			closing = append(closing, s)
			delete(r.sessions, key)
		}
	}
	r.mu.Unlock()
	for _, s := range closing {
		s.Close()
	}
	return len(closing)
}

// Sweep closes sessions idle for longer than the registry TTL.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.deps.Now().Add(-r.idleTTL)
	var closing []*Session
	r.mu.Lock()
	for key, s := range r.sessions {
		if s.LastUsed().Before(cutoff) {
			closing = append(closing, s)
			delete(r.sessions, key)
		}
	}
	r.mu.Unlock()
	for _, s := range closing {
		s.Close()
	}
	return len(closing)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
