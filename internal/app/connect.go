package app

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ianderson/ClerkBot/internal/live"
)

var (
	ErrConnectBusy = errors.New("already connecting to a meeting")
	ErrEmptyURL    = errors.New("meeting url is empty")
)

// ConnectStage is the state of the URL-join flow. It is a much simpler
// machine than the capture pipeline: a fixed connecting delay, then a
// hand-off to a live session. No meeting is created.
type ConnectStage string

const (
	ConnectIdle    ConnectStage = "IDLE"
	Connecting     ConnectStage = "CONNECTING"
	ConnectedStage ConnectStage = "CONNECTED"
)

// ConnectSnapshot is the status view of one connect flow.
type ConnectSnapshot struct {
	Stage   ConnectStage   `json:"stage"`
	URL     string         `json:"url,omitempty"`
	Session live.SessionID `json:"session,omitempty"`
}

// ConnectFlow joins an external meeting by URL.
type ConnectFlow struct {
	sessions *live.Registry
	clock    Clock
	delay    time.Duration

	mu      sync.Mutex
	stage   ConnectStage
	url     string
	session live.SessionID
	gen     int
	timer   Timer
}

func NewConnectFlow(sessions *live.Registry, clock Clock, delay time.Duration) *ConnectFlow {
	return &ConnectFlow{
		sessions: sessions,
		clock:    clock,
		delay:    delay,
		stage:    ConnectIdle,
	}
}

// Start begins connecting to the given meeting URL.
func (f *ConnectFlow) Start(url string) error {
	if strings.TrimSpace(url) == "" {
		return ErrEmptyURL
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stage == Connecting {
		return ErrConnectBusy
	}

	f.stage = Connecting
	f.url = url
	f.session = ""
	f.gen++
	g := f.gen
	f.timer = f.clock.AfterFunc(f.delay, func() { f.connected(g) })
	log.Info().Str("module", "app.connect").Str("url", url).Msg("connecting to meeting")
	return nil
}

func (f *ConnectFlow) connected(gen int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen || f.stage != Connecting {
		return
	}
	sess := f.sessions.Open("Joined meeting")
	f.stage = ConnectedStage
	f.session = sess.ID()
	log.Info().Str("module", "app.connect").Str("session", string(sess.ID())).Msg("connected")
}

// Claim hands the connected session to the caller and resets the flow, so a
// later connect starts clean.
func (f *ConnectFlow) Claim() (live.SessionID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stage != ConnectedStage {
		return "", false
	}
	id := f.session
	f.resetLocked()
	return id, true
}

// Cancel aborts an in-flight connect.
func (f *ConnectFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

func (f *ConnectFlow) Snapshot() ConnectSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ConnectSnapshot{Stage: f.stage, URL: f.url, Session: f.session}
}

func (f *ConnectFlow) resetLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.gen++
	f.stage = ConnectIdle
	f.url = ""
	f.session = ""
}
