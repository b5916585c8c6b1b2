package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn wraps a websocket with a bounded send buffer so one slow member
// cannot stall a broadcast.
type wsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// Controller attaches websocket members to live sessions.
type Controller struct {
	Sessions  *Registry
	Limiter   *JoinLimiter
	ReadLimit int64
}

// caption is the only payload members exchange: a line of live transcript.
type caption struct {
	Type    string `json:"type"`
	Speaker string `json:"speaker,omitempty"`
	Text    string `json:"text,omitempty"`
	Time    string `json:"time,omitempty"`
}

// Handle upgrades the request and binds the member to the session named in
// the query string.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	sessionID := SessionID(c.Query("session"))
	sess, ok := ctl.Sessions.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(token) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many join attempts"})
		return
	}

	name := c.Query("name")
	if name == "" {
		name = "guest"
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "live.ws").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan []byte, 32),
	}
	memberID := MemberID(uuid.NewString())
	sess.Join(memberID, name, conn)
	log.Info().Str("module", "live.ws").Str("session", string(sessionID)).Str("member", string(memberID)).Msg("new WS member")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, sess, memberID, name, conn)
	}()
}

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "live.ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "live.ws").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, sess *Session, id MemberID, name string, c *wsConn) {
	defer func() {
		sess.Leave(id)
		c.Close()
		ctl.Sessions.Sweep(sess.ID())
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "live.ws").Str("member", string(id)).Msg("readPump closing")
				return
			}
			ctl.handleMessage(sess, id, name, c, data)
		}
	}
}

func (ctl *Controller) handleMessage(sess *Session, id MemberID, name string, c *wsConn, data []byte) {
	var msg caption
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Error().Err(err).Str("module", "live.ws").Msg("bad json")
		return
	}

	switch msg.Type {
	case "caption":
		if msg.Speaker == "" {
			msg.Speaker = name
		}
		out, err := json.Marshal(msg)
		if err != nil {
			return
		}
		sess.Broadcast(id, out)
	case "ping":
		pong, _ := json.Marshal(caption{Type: "pong"})
		_ = c.TrySend(pong)
	case "leave":
		sess.Leave(id)
	default:
		log.Warn().Str("module", "live.ws").Str("type", msg.Type).Msg("unknown message")
	}
}
