package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/hward/huddle/internal/domain"
	"github.com/hward/huddle/internal/metrics"
	"github.com/hward/huddle/internal/protocol"
)

const writeDeadline = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	defer c.Close()
	for {
		select {
		case <-ctx.Done():
			// Drain what is already queued so a kicked notice reaches
			// the peer before the socket goes away.
			for {
				select {
				case data, ok := <-c.send:
					if !ok {
						return
					}
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
					if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
						return
					}
				default:
					return
				}
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, connID domain.ConnID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(connID)).Msg("readPump closing")
		ctl.Coord.Disconnect(ctx, connID)
		ctl.Limiter.Forget(connID)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("readPump read error")
				return
			}
			ctl.handle(ctx, connID, c, data)
		}
	}
}

// handle decodes, rate-limits and dispatches one inbound frame. Every
// failure is converted to an error event; nothing here may take the
// coordinator down.
func (ctl *Controller) handle(ctx context.Context, connID domain.ConnID, c *wsConn, data []byte) {
	if !ctl.Limiter.Allow(connID) {
		ctl.sendError(c, "rate limit exceeded")
		return
	}

	msg, err := protocol.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("bad inbound frame")
		ctl.sendError(c, "malformed message")
		return
	}

	switch m := msg.(type) {
	case *protocol.JoinRoom:
		metrics.EventsIn.WithLabelValues("room:join").Inc()
		err = ctl.Coord.Join(ctx, connID, domain.RoomID(m.RoomID), m.UserName)
	case *protocol.LeaveRoom:
		metrics.EventsIn.WithLabelValues("room:leave").Inc()
		err = ctl.Coord.Leave(ctx, connID)
	case *protocol.RoomStateRequest:
		metrics.EventsIn.WithLabelValues("room:state").Inc()
		err = ctl.Coord.RoomState(connID)
	case *protocol.AudioToggle:
		metrics.EventsIn.WithLabelValues("audio:toggle").Inc()
		err = ctl.Coord.ToggleAudio(connID, m.IsMuted)
	case *protocol.AdminKick:
		metrics.EventsIn.WithLabelValues("admin:kick").Inc()
		err = ctl.Coord.Kick(ctx, connID, domain.ConnID(m.TargetConnID), m.Reason)
	case *protocol.AdminMute:
		metrics.EventsIn.WithLabelValues("admin:mute").Inc()
		err = ctl.Coord.Mute(connID, domain.ConnID(m.TargetConnID))
	case *protocol.EmergencyRaise:
		metrics.EventsIn.WithLabelValues("emergency:alert").Inc()
		_, err = ctl.Coord.RaiseEmergency(ctx, connID, m.Location, m.Message)
	case *protocol.Ping:
		metrics.EventsIn.WithLabelValues("ping").Inc()
		ctl.Coord.Heartbeat(connID)
	}

	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("event rejected")
		ctl.sendError(c, err.Error())
	}
}

func (ctl *Controller) sendError(c *wsConn, msg string) {
	_ = c.TrySend(protocol.Encode(protocol.NewError(msg)))
}
