package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/verbyflow/signaling/internal/core"
	"github.com/verbyflow/signaling/internal/domain"
)

func (ctl *Controller) handlePing(c *wsConn) {
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{Type: "pong"})
}

func (ctl *Controller) handleRegisterUser(c *wsConn, data []byte) {
	type payload struct {
		Type     string          `json:"type"`
		Identity domain.Identity `json:"identity"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil || p.Identity == "" {
		ctl.sendJSON(c, map[string]any{
			"type":    "register_user_result",
			"success": false,
			"error":   "identity is required",
		})
		return
	}

	ctl.Coord.Registry().Register(p.Identity, c)
	c.identity = p.Identity

	log.Info().Str("module", "signal").Str("conn", c.id).Str("identity", string(p.Identity)).Msg("user registered")
	ctl.sendJSON(c, map[string]any{
		"type":    "register_user_result",
		"success": true,
	})
}

func (ctl *Controller) handleCreateMeeting(c *wsConn, data []byte) {
	type payload struct {
		Type      string           `json:"type"`
		MeetingID domain.MeetingID `json:"meetingId"`
		Identity  domain.Identity  `json:"identity"`
		Language  string           `json:"language"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad create_meeting payload")
		ctl.sendJSON(c, map[string]any{
			"type":    "create_meeting_result",
			"success": false,
			"error":   domain.ErrInvalidRequest.Error(),
		})
		return
	}

	res, err := ctl.Coord.CreateMeeting(p.MeetingID, p.Identity, p.Language)
	if err != nil {
		ctl.sendJSON(c, map[string]any{
			"type":    "create_meeting_result",
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	ctl.sendJSON(c, struct {
		Type      string           `json:"type"`
		Success   bool             `json:"success"`
		MeetingID domain.MeetingID `json:"meetingId"`
		IsHost    bool             `json:"isHost"`
	}{
		Type:      "create_meeting_result",
		Success:   true,
		MeetingID: p.MeetingID,
		IsHost:    res.IsHost,
	})
}

func (ctl *Controller) handleJoinMeeting(c *wsConn, data []byte) {
	type payload struct {
		Type      string           `json:"type"`
		MeetingID domain.MeetingID `json:"meetingId"`
		Identity  domain.Identity  `json:"identity"`
		Language  string           `json:"language"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join_meeting payload")
		ctl.sendJSON(c, map[string]any{
			"type":    "join_meeting_result",
			"success": false,
			"error":   domain.ErrInvalidRequest.Error(),
		})
		return
	}

	res, err := ctl.Coord.JoinMeeting(p.MeetingID, p.Identity, p.Language)
	if err != nil {
		ctl.sendJSON(c, map[string]any{
			"type":    "join_meeting_result",
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	ctl.sendJSON(c, struct {
		Type           string           `json:"type"`
		Success        bool             `json:"success"`
		MeetingID      domain.MeetingID `json:"meetingId"`
		IsHost         bool             `json:"isHost"`
		HostIdentity   domain.Identity  `json:"hostIdentity"`
		SourceLanguage string           `json:"sourceLanguage"`
	}{
		Type:           "join_meeting_result",
		Success:        true,
		MeetingID:      p.MeetingID,
		IsHost:         res.IsHost,
		HostIdentity:   res.Host,
		SourceLanguage: res.SourceLanguage,
	})
}

// handleSignalRelay serves webrtc_offer, webrtc_answer and ice_candidate.
// These are fire-and-forget: nothing is ever replied to the sender.
func (ctl *Controller) handleSignalRelay(c *wsConn, data []byte) {
	type payload struct {
		Type      string           `json:"type"`
		MeetingID domain.MeetingID `json:"meetingId"`
		To        domain.Identity  `json:"toIdentity"`
		Offer     json.RawMessage  `json:"offer"`
		Answer    json.RawMessage  `json:"answer"`
		Candidate json.RawMessage  `json:"candidate"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad signal payload")
		return
	}

	key := string(c.identity)
	if key == "" {
		key = c.id
	}
	if !ctl.limiter.Allow(key) {
		log.Warn().Str("module", "signal").Str("conn", c.id).Str("type", p.Type).Msg("signal rate limited, dropping")
		return
	}

	var kind core.SignalKind
	var body json.RawMessage
	switch p.Type {
	case "webrtc_offer":
		kind, body = core.SignalOffer, p.Offer
	case "webrtc_answer":
		kind, body = core.SignalAnswer, p.Answer
	case "ice_candidate":
		kind, body = core.SignalCandidate, p.Candidate
	default:
		return
	}
	ctl.Coord.RouteSignal(kind, p.MeetingID, c.identity, p.To, body)
}

func (ctl *Controller) handleEndMeeting(c *wsConn, data []byte) {
	type payload struct {
		Type      string           `json:"type"`
		MeetingID domain.MeetingID `json:"meetingId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad end_meeting payload")
		ctl.sendJSON(c, map[string]any{
			"type":    "end_meeting_result",
			"success": false,
			"error":   domain.ErrInvalidRequest.Error(),
		})
		return
	}

	if err := ctl.Coord.EndMeeting(p.MeetingID, c.identity); err != nil {
		ctl.sendJSON(c, map[string]any{
			"type":    "end_meeting_result",
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	ctl.sendJSON(c, map[string]any{
		"type":    "end_meeting_result",
		"success": true,
	})
}
