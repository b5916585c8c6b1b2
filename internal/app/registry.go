package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ianderson/ClerkBot/internal/core"
	"github.com/ianderson/ClerkBot/internal/domain"
	"github.com/ianderson/ClerkBot/internal/live"
)

// Flows is everything in flight for one client token.
type Flows struct {
	Capture *CaptureWorkflow
	Connect *ConnectFlow
}

// Registry tracks per-client capture state. A browser session gets exactly
// one capture workflow and one connect flow; the machines themselves reject
// overlapping starts.
type Registry struct {
	library  core.Library
	user     *domain.Participant
	sessions *live.Registry
	clock    Clock
	sched    StageSchedule
	delay    time.Duration

	mu       sync.RWMutex
	byClient map[string]*Flows
}

func NewRegistry(library core.Library, user *domain.Participant, sessions *live.Registry, clock Clock, sched StageSchedule, connectDelay time.Duration) *Registry {
	return &Registry{
		library:  library,
		user:     user,
		sessions: sessions,
		clock:    clock,
		sched:    sched,
		delay:    connectDelay,
		byClient: make(map[string]*Flows),
	}
}

// For returns the client's flows, creating them on first use.
func (r *Registry) For(clientToken string) *Flows {
	r.mu.RLock()
	f, ok := r.byClient[clientToken]
	r.mu.RUnlock()
	if ok {
		return f
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok = r.byClient[clientToken]; ok {
		return f
	}
	f = &Flows{
		Capture: NewCaptureWorkflow(r.library, r.user, r.clock, r.sched),
		Connect: NewConnectFlow(r.sessions, r.clock, r.delay),
	}
	r.byClient[clientToken] = f
	log.Info().Str("module", "app.registry").Str("client", clientToken).Msg("created client flows")
	return f
}
