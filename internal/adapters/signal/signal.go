package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Arena/internal/app"
	"github.com/dkeye/Arena/internal/app/orch"
	"github.com/dkeye/Arena/internal/core"
)

type Options struct {
	ReadLimit        int64
	PingPeriod       time.Duration
	PongWait         time.Duration
	WriteWait        time.Duration
	SendBuffer       int
	FrameRateLimit   int
	CredentialCookie string
}

type SignalWSController struct {
	Orch   *orch.Orchestrator
	opts   Options
	frames *app.RateLimiter[core.SessionID]
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	return &SignalWSController{
		Orch:   o,
		opts:   opts,
		frames: app.NewRateLimiter[core.SessionID](opts.FrameRateLimit, time.Second),
	}
}

// WsSignalConn is the core.SignalConnection of one websocket. Writes go
// through a bounded buffer drained by writePump.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
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

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and serves it in namespace ns until the
// client goes away or ctx ends. The credential is resolved once, here.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context, ns core.Namespace) {
	identity := ResolveIdentity(c, ctl.opts.CredentialCookie)
	sid := core.SessionID(uuid.NewString())

	entry := log.Info().Str("module", "signal").Str("sid", string(sid)).Str("ns", string(ns))
	if identity != nil {
		entry = entry.Str("user", string(identity.ID))
	}
	entry.Bool("authenticated", identity != nil).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendBuffer),
	}

	sess := core.NewSession(sid, ns, identity, conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Connect(sess, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sess, conn)
}
