package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", c.id).Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", c.id).Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Str("conn", c.id).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout)); err != nil {
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

// readPump owns the connection's inbound side. When it returns the
// connection is closed and the coordinator is told about the disconnect
// exactly once.
func (ctl *Controller) readPump(ctx context.Context, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", c.id).Msg("readPump closing")
		c.Close()
		if c.identity != "" {
			ctl.Coord.HandleDisconnect(c.identity)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", c.id).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("conn", c.id).Msg("readPump read error")
				return
			}
			ctl.handleMessage(c, data)
		}
	}
}

// ackEvents maps acknowledging ops to their reply event, so a recovered
// panic can still produce a failure ack for them.
var ackEvents = map[string]string{
	"register_user":  "register_user_result",
	"create_meeting": "create_meeting_result",
	"join_meeting":   "join_meeting_result",
	"end_meeting":    "end_meeting_result",
}

func (ctl *Controller) handleMessage(c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("module", "signal").Str("type", env.Type).Msg("handler panic")
			if ack, ok := ackEvents[env.Type]; ok {
				ctl.sendJSON(c, map[string]any{
					"type":    ack,
					"success": false,
					"error":   "internal server error",
				})
			}
		}
	}()

	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "ping":
		ctl.handlePing(c)
	case "register_user":
		ctl.handleRegisterUser(c, data)
	case "create_meeting":
		ctl.handleCreateMeeting(c, data)
	case "join_meeting":
		ctl.handleJoinMeeting(c, data)
	case "webrtc_offer":
		ctl.handleSignalRelay(c, data)
	case "webrtc_answer":
		ctl.handleSignalRelay(c, data)
	case "ice_candidate":
		ctl.handleSignalRelay(c, data)
	case "end_meeting":
		ctl.handleEndMeeting(c, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *Controller) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
