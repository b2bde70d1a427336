// Package signal is the WebSocket adapter: it upgrades connections,
// decodes inbound events, and hands them to the session coordinator.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/verbyflow/signaling/internal/config"
	"github.com/verbyflow/signaling/internal/core"
	"github.com/verbyflow/signaling/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Coord   *core.Coordinator
	cfg     *config.Config
	limiter *SignalRateLimiter
}

func NewController(cfg *config.Config, coord *core.Coordinator) *Controller {
	return &Controller{
		Coord:   coord,
		cfg:     cfg,
		limiter: NewSignalRateLimiter(cfg.SignalRateLimit, cfg.SignalRateWindow),
	}
}

// wsConn is one live WebSocket connection. It implements core.Conn so
// the registry can hand it to the coordinator as an opaque handle.
type wsConn struct {
	id   string
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool

	// identity is set by register_user and read on disconnect.
	// Only the read pump touches it.
	identity domain.Identity
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
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

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &wsConn{
		id:   uuid.NewString(),
		conn: ws,
		send: make(chan core.Frame, ctl.cfg.SendBuffer),
	}
	ws.SetReadLimit(ctl.cfg.ReadLimit)
	log.Info().Str("module", "signal").Str("conn", conn.id).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, conn)
	}()
}
