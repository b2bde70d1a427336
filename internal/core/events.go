package core

import (
	"encoding/json"
	"time"

	"github.com/verbyflow/signaling/internal/domain"
)

// Frame is a raw encoded message ready for the transport.
type Frame []byte

// Conn abstracts one live transport connection.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	TrySend(Frame) error
	Close()
}

// SignalKind names a relayed negotiation message. The value doubles as
// the outbound event type on the wire.
type SignalKind string

const (
	SignalOffer     SignalKind = "webrtc_offer"
	SignalAnswer    SignalKind = "webrtc_answer"
	SignalCandidate SignalKind = "ice_candidate"
)

// payloadKey is the wire field carrying the opaque payload for this kind.
func (k SignalKind) payloadKey() string {
	switch k {
	case SignalOffer:
		return "offer"
	case SignalAnswer:
		return "answer"
	default:
		return "candidate"
	}
}

func signalEvent(kind SignalKind, meetingID domain.MeetingID, from domain.Identity, payload json.RawMessage) map[string]any {
	return map[string]any{
		"type":           string(kind),
		"meetingId":      meetingID,
		"fromIdentity":   from,
		kind.payloadKey(): payload,
	}
}

type ParticipantJoined struct {
	Type      string           `json:"type"`
	MeetingID domain.MeetingID `json:"meetingId"`
	Identity  domain.Identity  `json:"identity"`
	Language  string           `json:"language"`
}

type ParticipantLeft struct {
	Type      string           `json:"type"`
	MeetingID domain.MeetingID `json:"meetingId"`
	Identity  domain.Identity  `json:"identity"`
}

type MeetingEnded struct {
	Type      string           `json:"type"`
	MeetingID domain.MeetingID `json:"meetingId"`
	Reason    string           `json:"reason"`
}

const (
	EvtParticipantJoined = "participant_joined"
	EvtParticipantLeft   = "participant_left"
	EvtMeetingEnded      = "meeting_ended"
)

// MeetingInfo is a read-only view for APIs (no transport fields).
type MeetingInfo struct {
	ID               domain.MeetingID `json:"meetingId"`
	Host             domain.Identity  `json:"host"`
	ParticipantCount int              `json:"participantCount"`
	Status           domain.Status    `json:"status"`
	CreatedAt        time.Time        `json:"createdAt"`
}
