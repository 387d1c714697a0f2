// Package session holds the per-client state of the chart pages: the latest
// pending load of each selection control and payloads already fetched.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSuperseded is returned when a newer selection on the same control replaced
// the request before it completed.
var ErrSuperseded = errors.New("request superseded by a newer selection")

const (
	// DefaultTTL is how long an idle session survives.
	DefaultTTL = 30 * time.Minute
	// DefaultMaxSessions caps the registry; the least recently used session goes first.
	DefaultMaxSessions = 1000
	// maxCached caps the payloads one session remembers.
	maxCached = 64
)

// Ticket identifies one pending load of a control.
type Ticket struct {
	ID      string
	Control string
}

type pending struct {
	id     string
	cancel context.CancelFunc
}

// Session is owned by one client. It is safe for concurrent use.
type Session struct {
	ID string

	mu      sync.Mutex
	pending map[string]pending
	cache   map[string][]byte

	// guarded by Registry.mu
	lastUsed time.Time
}

// New creates a session; an empty id gets a fresh uuid.
func New(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		ID:      id,
		pending: make(map[string]pending),
		cache:   make(map[string][]byte),
	}
}

// Begin starts a load for control, cancelling the one it replaces. The returned
// context is cancelled when a later Begin on the same control arrives.
func (s *Session) Begin(ctx context.Context, control string) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(ctx)
	t := Ticket{ID: uuid.NewString(), Control: control}

	s.mu.Lock()
	if prev, ok := s.pending[control]; ok {
		prev.cancel()
	}
	s.pending[control] = pending{id: t.ID, cancel: cancel}
	s.mu.Unlock()

	return ctx, t
}

// Current reports whether t is still the latest ticket of its control.
func (s *Session) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[t.Control]
	return ok && p.id == t.ID
}

// Done releases t. Releasing a superseded ticket leaves the newer one alone.
func (s *Session) Done(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pending[t.Control]; ok && p.id == t.ID {
		p.cancel()
		delete(s.pending, t.Control)
	}
}

// Run executes load as the latest request of control. The result is discarded
// with ErrSuperseded when another Begin on control happened meanwhile.
func (s *Session) Run(ctx context.Context, control string, load func(context.Context) error) error {
	ctx, t := s.Begin(ctx, control)
	defer s.Done(t)

	err := load(ctx)
	if !s.Current(t) {
		return ErrSuperseded
	}
	return err
}

// Remember stores a fetched payload under key. A full cache is emptied before a
// new key is added.
func (s *Session) Remember(key string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cache[key]; !ok && len(s.cache) >= maxCached {
		s.cache = make(map[string][]byte)
	}
	s.cache[key] = payload
}

// Recall returns the payload stored under key.
func (s *Session) Recall(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.cache[key]
	return p, ok
}

// Forget drops every remembered payload and cancels pending loads.
func (s *Session) Forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for control, p := range s.pending {
		p.cancel()
		delete(s.pending, control)
	}
	s.cache = make(map[string][]byte)
}

// Registry maps session ids to sessions. Sessions idle for longer than the TTL
// are expired on the next Get, and the registry never holds more than its
// maximum; expired and evicted sessions are forgotten.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
}

// NewRegistry returns an empty registry with DefaultTTL and DefaultMaxSessions.
func NewRegistry() *Registry {
	return NewRegistryWithLimits(DefaultTTL, DefaultMaxSessions)
}

// NewRegistryWithLimits returns an empty registry. A non-positive ttl or
// maxSessions falls back to the default.
func NewRegistryWithLimits(ttl time.Duration, maxSessions int) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Registry{
		sessions:    make(map[string]*Session),
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// Get returns the session for id, creating it when needed. An empty id always
// creates a new session.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	now := r.now()
	stale := r.sweepLocked(now)

	s, ok := r.sessions[id]
	if !ok || id == "" {
		if len(r.sessions) >= r.maxSessions {
			stale = append(stale, r.evictOldestLocked())
		}
		s = New(id)
		r.sessions[s.ID] = s
	}
	s.lastUsed = now
	r.mu.Unlock()

	for _, old := range stale {
		old.Forget()
	}
	return s
}

// sweepLocked removes the sessions idle for longer than the TTL.
func (r *Registry) sweepLocked(now time.Time) []*Session {
	var stale []*Session
	for id, s := range r.sessions {
		if now.Sub(s.lastUsed) > r.ttl {
			delete(r.sessions, id)
			stale = append(stale, s)
		}
	}
	return stale
}

func (r *Registry) evictOldestLocked() *Session {
	var oldest *Session
	for _, s := range r.sessions {
		if oldest == nil || s.lastUsed.Before(oldest.lastUsed) {
			oldest = s
		}
	}
	delete(r.sessions, oldest.ID)
	return oldest
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Drop forgets the session with id.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Forget()
	}
}
