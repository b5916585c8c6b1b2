package live

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Info summarizes a session for listings.
type Info struct {
	ID          SessionID `json:"id"`
	Name        string    `json:"name"`
	MemberCount int       `json:"member_count"`
	StartedAt   time.Time `json:"started_at"`
}

// Registry tracks every open live session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[SessionID]*Session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[SessionID]*Session),
		now:      time.Now,
	}
}

// Open creates a fresh session. Unlike folders, sessions are never reused by
// name: every capture hand-off gets its own.
func (r *Registry) Open(name string) *Session {
	s := &Session{
		id:        SessionID(uuid.NewString()),
		name:      name,
		startedAt: r.now(),
		members:   make(map[MemberID]*member),
	}
	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
	log.Info().Str("module", "live.registry").Str("session", string(s.id)).Str("name", name).Msg("session opened")
	return s
}

func (r *Registry) Get(id SessionID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, Info{ID: s.id, Name: s.name, MemberCount: s.MemberCount(), StartedAt: s.startedAt})
	}
	return out
}

func (r *Registry) Close(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	log.Info().Str("module", "live.registry").Str("session", string(id)).Msg("session closed")
}

// Sweep closes the session if its last member has left. Called after every
// member disconnect so sessions do not outlive their use.
func (r *Registry) Sweep(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.MemberCount() > 0 {
		return
	}
	delete(r.sessions, id)
	log.Info().Str("module", "live.registry").Str("session", string(id)).Msg("empty session swept")
}
