// Package signal is the websocket control-plane adapter: it owns the
// transport endpoints and feeds decoded events to the coordinator.
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

	"github.com/hward/huddle/internal/app"
	"github.com/hward/huddle/internal/auth"
	"github.com/hward/huddle/internal/config"
	"github.com/hward/huddle/internal/core"
	"github.com/hward/huddle/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Coord   *app.Coordinator
	Limiter *EventRateLimiter
	Cfg     *config.Config
}

func NewController(coord *app.Coordinator, cfg *config.Config) *Controller {
	return &Controller{
		Coord:   coord,
		Limiter: NewEventRateLimiter(cfg.EventRateLimit, cfg.EventRateWindow),
		Cfg:     cfg,
	}
}

// wsConn wraps one websocket with a bounded send buffer. It implements
// core.SignalConnection.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWSConn(conn *websocket.Conn, buffer int) *wsConn {
	return &wsConn{conn: conn, send: make(chan core.Frame, buffer)}
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

// HandleSignal upgrades an authenticated request to a signal connection.
// The auth middleware has already verified the bearer credential and put
// the identity on the gin context; an unauthenticated request never
// reaches this point.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	idVal, ok := c.Get("identity")
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	ident := idVal.(auth.Identity)
	connID := domain.ConnID(uuid.NewString())

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	sess, err := domain.NewSession(connID, ident.UserID, ident.UserName, ident.Role)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad identity")
		_ = ws.Close()
		return
	}

	conn := newWSConn(ws, ctl.Cfg.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)

	if err := ctl.Coord.Connect(ctx, sess, conn, cancel); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("connection refused")
		cancel()
		conn.Close()
		return
	}

	log.Info().Str("module", "signal").
		Str("conn", string(connID)).
		Str("user", string(ident.UserID)).
		Msg("new signal connection")

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, connID, conn)
}
