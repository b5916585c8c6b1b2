// Package live hosts in-progress sessions that record and URL-join captures
// hand off to. It carries signaling and captions only, never media frames.
package live

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type (
	SessionID string
	MemberID  string
)

// Conn abstracts a member's messaging transport.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	TrySend([]byte) error
	Close()
}

// MemberInfo is a read-only view for APIs (no transport fields).
type MemberInfo struct {
	ID   MemberID `json:"id"`
	Name string   `json:"name"`
}

// PublishResult reports delivery stats/backpressure to the caller.
type PublishResult struct {
	SentTo  int
	Dropped []MemberID
}

type member struct {
	name string
	conn Conn
}

// Session is a threadsafe in-memory live session.
// It never closes adapter-owned connections.
type Session struct {
	id        SessionID
	name      string
	startedAt time.Time

	mu      sync.RWMutex
	members map[MemberID]*member
}

func (s *Session) ID() SessionID      { return s.id }
func (s *Session) Name() string       { return s.name }
func (s *Session) Started() time.Time { return s.startedAt }

func (s *Session) MemberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

func (s *Session) Join(id MemberID, name string, conn Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[id] = &member{name: name, conn: conn}
	log.Info().Str("module", "live.session").Str("session", string(s.id)).Str("member", string(id)).Msg("member joined")
}

func (s *Session) Leave(id MemberID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, id)
	log.Info().Str("module", "live.session").Str("session", string(s.id)).Str("member", string(id)).Msg("member left")
}

// Broadcast fans a payload out to every member except the sender. Members
// whose send buffer is full are reported as dropped, not blocked on.
func (s *Session) Broadcast(from MemberID, payload []byte) PublishResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := PublishResult{}
	for id, m := range s.members {
		if id == from {
			continue
		}
		if err := m.conn.TrySend(payload); err != nil {
			res.Dropped = append(res.Dropped, id)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "live.session").Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (s *Session) Members() []MemberInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MemberInfo, 0, len(s.members))
	for id, m := range s.members {
		out = append(out, MemberInfo{ID: id, Name: m.name})
	}
	return out
}
