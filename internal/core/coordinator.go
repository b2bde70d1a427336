package core

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/verbyflow/signaling/internal/domain"
)

const (
	ReasonHostEnded        = "Host ended the meeting"
	ReasonHostDisconnected = "Host disconnected"
)

// Coordinator owns the table of active meetings and routes signaling
// events between participants. All mutation goes through its operations;
// the table lives for the lifetime of the process.
type Coordinator struct {
	registry *ConnRegistry

	mu       sync.RWMutex
	sessions map[domain.MeetingID]*domain.Session
}

func NewCoordinator(registry *ConnRegistry) *Coordinator {
	return &Coordinator{
		registry: registry,
		sessions: make(map[domain.MeetingID]*domain.Session),
	}
}

func (c *Coordinator) Registry() *ConnRegistry { return c.registry }

type CreateResult struct {
	IsHost bool
}

func (c *Coordinator) CreateMeeting(id domain.MeetingID, host domain.Identity, language string) (CreateResult, error) {
	if id == "" || host == "" {
		return CreateResult{}, domain.ErrInvalidRequest
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[id]; ok {
		return CreateResult{}, domain.ErrMeetingExists
	}
	c.sessions[id] = domain.NewSession(id, host, language)
	log.Info().Str("module", "core.coordinator").Str("meeting", string(id)).Str("host", string(host)).Msg("meeting created")
	return CreateResult{IsHost: true}, nil
}

type JoinResult struct {
	IsHost         bool
	Host           domain.Identity
	SourceLanguage string
}

func (c *Coordinator) JoinMeeting(id domain.MeetingID, joiner domain.Identity, language string) (JoinResult, error) {
	if id == "" || joiner == "" {
		return JoinResult{}, domain.ErrInvalidRequest
	}
	c.mu.Lock()
	s, ok := c.sessions[id]
	if !ok {
		c.mu.Unlock()
		return JoinResult{}, domain.ErrMeetingNotFound
	}
	s.AddParticipant(joiner)
	s.TargetLanguage = language
	s.Status = domain.StatusConnecting
	host := s.Host
	source := s.SourceLanguage
	c.mu.Unlock()

	log.Info().Str("module", "core.coordinator").Str("meeting", string(id)).Str("identity", string(joiner)).Msg("participant joined")
	c.notify(host, ParticipantJoined{
		Type:      EvtParticipantJoined,
		MeetingID: id,
		Identity:  joiner,
		Language:  language,
	})
	return JoinResult{Host: host, SourceLanguage: source}, nil
}

// RouteSignal forwards an opaque negotiation payload to one recipient.
// Fire-and-forget: every failure is logged and dropped, never reported
// to the sender. Offer and answer require an active meeting; candidate
// relay does not (kept as the observed behavior).
func (c *Coordinator) RouteSignal(kind SignalKind, id domain.MeetingID, from, to domain.Identity, payload json.RawMessage) {
	if id == "" || to == "" || len(payload) == 0 {
		log.Error().Str("module", "core.coordinator").Str("kind", string(kind)).Msg("invalid signal payload")
		return
	}
	if kind != SignalCandidate {
		c.mu.RLock()
		_, ok := c.sessions[id]
		c.mu.RUnlock()
		if !ok {
			log.Error().Str("module", "core.coordinator").Str("kind", string(kind)).Str("meeting", string(id)).Msg("meeting not found for signal")
			return
		}
	}
	conn, ok := c.registry.Resolve(to)
	if !ok {
		log.Warn().Str("module", "core.coordinator").Str("kind", string(kind)).Str("to", string(to)).Msg("recipient unreachable, dropping signal")
		return
	}
	c.send(conn, signalEvent(kind, id, from, payload))

	if kind == SignalAnswer {
		c.mu.Lock()
		if s, ok := c.sessions[id]; ok {
			s.Status = domain.StatusConnected
		}
		c.mu.Unlock()
	}
	log.Debug().Str("module", "core.coordinator").Str("kind", string(kind)).Str("meeting", string(id)).Str("to", string(to)).Msg("signal forwarded")
}

// EndMeeting destroys the meeting when the requester is its host, and
// only removes the requester from it otherwise.
func (c *Coordinator) EndMeeting(id domain.MeetingID, requester domain.Identity) error {
	if id == "" {
		return domain.ErrInvalidRequest
	}
	c.mu.Lock()
	s, ok := c.sessions[id]
	if !ok {
		c.mu.Unlock()
		return domain.ErrMeetingNotFound
	}
	if requester == s.Host {
		members := append([]domain.Identity(nil), s.Participants...)
		delete(c.sessions, id)
		c.mu.Unlock()
		c.broadcast(members, MeetingEnded{Type: EvtMeetingEnded, MeetingID: id, Reason: ReasonHostEnded})
		log.Info().Str("module", "core.coordinator").Str("meeting", string(id)).Str("host", string(requester)).Msg("meeting ended by host")
		return nil
	}
	s.RemoveParticipant(requester)
	host := s.Host
	c.mu.Unlock()
	c.notify(host, ParticipantLeft{Type: EvtParticipantLeft, MeetingID: id, Identity: requester})
	log.Info().Str("module", "core.coordinator").Str("meeting", string(id)).Str("identity", string(requester)).Msg("participant left meeting")
	return nil
}

// HandleDisconnect performs the cleanup for a connection that went away
// without an explicit end_meeting: unregister the identity, end every
// meeting it hosted, leave every meeting it had joined.
func (c *Coordinator) HandleDisconnect(identity domain.Identity) {
	if identity == "" {
		return
	}
	c.registry.Unregister(identity)

	type endedMeeting struct {
		id      domain.MeetingID
		members []domain.Identity
	}
	var ended []endedMeeting
	var departed []ParticipantLeft
	var hosts []domain.Identity

	c.mu.Lock()
	for id, s := range c.sessions {
		if !s.HasParticipant(identity) {
			continue
		}
		if s.Host == identity {
			ended = append(ended, endedMeeting{id: id, members: append([]domain.Identity(nil), s.Participants...)})
			delete(c.sessions, id)
		} else {
			s.RemoveParticipant(identity)
			departed = append(departed, ParticipantLeft{Type: EvtParticipantLeft, MeetingID: id, Identity: identity})
			hosts = append(hosts, s.Host)
		}
	}
	c.mu.Unlock()

	for _, e := range ended {
		c.broadcast(e.members, MeetingEnded{Type: EvtMeetingEnded, MeetingID: e.id, Reason: ReasonHostDisconnected})
		log.Info().Str("module", "core.coordinator").Str("meeting", string(e.id)).Str("host", string(identity)).Msg("meeting ended, host disconnected")
	}
	for i, evt := range departed {
		c.notify(hosts[i], evt)
		log.Info().Str("module", "core.coordinator").Str("meeting", string(evt.MeetingID)).Str("identity", string(identity)).Msg("participant removed after disconnect")
	}
}

// Meetings returns a snapshot of the active session table.
func (c *Coordinator) Meetings() []MeetingInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]MeetingInfo, 0, len(c.sessions))
	for _, s := range c.sessions {
		out = append(out, MeetingInfo{
			ID:               s.ID,
			Host:             s.Host,
			ParticipantCount: len(s.Participants),
			Status:           s.Status,
			CreatedAt:        s.CreatedAt,
		})
	}
	return out
}

// notify sends one event to one identity, best effort.
func (c *Coordinator) notify(to domain.Identity, v any) {
	conn, ok := c.registry.Resolve(to)
	if !ok {
		log.Warn().Str("module", "core.coordinator").Str("to", string(to)).Msg("peer unreachable, dropping event")
		return
	}
	c.send(conn, v)
}

// broadcast fans one event out to every member currently resolvable in
// the registry. Membership follows the participants set by construction.
func (c *Coordinator) broadcast(members []domain.Identity, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core.coordinator").Msg("broadcast marshal")
		return
	}
	sent := 0
	for _, id := range members {
		conn, ok := c.registry.Resolve(id)
		if !ok {
			continue
		}
		if err := conn.TrySend(Frame(b)); err != nil {
			log.Warn().Err(err).Str("module", "core.coordinator").Str("to", string(id)).Msg("broadcast send dropped")
			continue
		}
		sent++
	}
	log.Debug().Str("module", "core.coordinator").Int("sent_to", sent).Int("members", len(members)).Msg("broadcast result")
}

func (c *Coordinator) send(conn Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core.coordinator").Msg("send marshal")
		return
	}
	if err := conn.TrySend(Frame(b)); err != nil {
		log.Warn().Err(err).Str("module", "core.coordinator").Msg("send dropped")
	}
}
