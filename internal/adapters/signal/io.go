package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/dkeye/Arena/internal/protocol"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			c.Close()
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping failed")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sess core.Session, c *WsSignalConn) {
	sid := sess.ID()
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.frames.Forget(sid)
		ctl.Orch.Disconnect(sid)
	}()

	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			if !ctl.frames.Allow(sid) {
				ctl.sendError(c, "", domain.ErrRateLimited)
				continue
			}
			ctl.handleSignal(sess, c, data)
		}
	}
}

// handleSignal answers connection control frames itself and hands every
// other event to the dispatcher.
func (ctl *SignalWSController) handleSignal(sess core.Session, c *WsSignalConn, data []byte) {
	in, err := protocol.ParseInbound(data)
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sess.ID())).Msg("bad frame")
		ctl.sendError(c, "", err)
		return
	}

	switch in.Type {
	case protocol.EventPing:
		ctl.handlePing(c)
	case protocol.EventWhoAmI:
		ctl.handleWhoAmI(sess, c)
	default:
		ctl.Orch.DispatchInbound(sess.ID(), in)
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, ev protocol.EventType, v any) {
	b, err := protocol.Encode(ev, v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, ev protocol.EventType, err error) {
	_ = c.TrySend(protocol.EncodeError(ev, err))
}
