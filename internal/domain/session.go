// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidRequest  = errors.New("invalid request data")
	ErrMeetingExists   = errors.New("meeting ID already exists")
	ErrMeetingNotFound = errors.New("meeting not found")
)

// Identity is a stable application-level participant name,
// independent of any one network connection.
type Identity string

type MeetingID string

type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusConnecting Status = "connecting"
	StatusConnected  Status = "connected"
)

// Session pairs a host with zero or more joiners for the purpose of
// negotiating a direct peer connection. Status reflects negotiation
// progress but never gates an operation.
type Session struct {
	ID             MeetingID
	Host           Identity
	Participants   []Identity
	Status         Status
	SourceLanguage string
	TargetLanguage string
	CreatedAt      time.Time
}

func NewSession(id MeetingID, host Identity, sourceLanguage string) *Session {
	return &Session{
		ID:             id,
		Host:           host,
		Participants:   []Identity{host},
		Status:         StatusWaiting,
		SourceLanguage: sourceLanguage,
		CreatedAt:      time.Now(),
	}
}

// AddParticipant keeps set semantics over the ordered slice:
// adding an existing member is a no-op.
func (s *Session) AddParticipant(id Identity) {
	for _, p := range s.Participants {
		if p == id {
			return
		}
	}
	s.Participants = append(s.Participants, id)
}

func (s *Session) RemoveParticipant(id Identity) {
	kept := s.Participants[:0]
	for _, p := range s.Participants {
		if p != id {
			kept = append(kept, p)
		}
	}
	s.Participants = kept
}

func (s *Session) HasParticipant(id Identity) bool {
	for _, p := range s.Participants {
		if p == id {
			return true
		}
	}
	return false
}
