// Package client implements the in-process side of a game: the websocket
// transport to the relay server, the signaling state machine that brings
// up the peer media connection, and the move coordinator.
package client

import (
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/YoungCoderboy/chessme-copy/internal/domain"
)

// State of one negotiation. A session moves Idle → Negotiating →
// Connected and ends in Closed or Failed. Failed sessions are not
// retried automatically; a new cycle needs an external trigger,
// otherwise a renegotiation race turns into an infinite loop.
type State int

const (
	StateIdle State = iota
	StateNegotiating
	StateConnected
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNegotiating:
		return "negotiating"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// PeerLink is the negotiation/transport handle the session owns. The
// pion wrapper in client/rtc implements it; tests script it.
type PeerLink interface {
	CreateAndSetOffer() (*webrtc.SessionDescription, error)
	CreateAndSetAnswer() (*webrtc.SessionDescription, error)
	ApplyRemote(desc webrtc.SessionDescription) error
	AddICECandidate(webrtc.ICECandidateInit) error
	AddLocalTrack(track webrtc.TrackLocal) error
	OnICECandidate(func(webrtc.ICECandidateInit))
	OnTrack(func(track *webrtc.TrackRemote))
	Close()
}

// MediaSource provides the local tracks attached to every negotiation.
// Acquired once per game view; shared between preview and outgoing side.
type MediaSource interface {
	Tracks() []webrtc.TrackLocal
	Close()
}

// SignalSender relays signaling messages to the remote peer through the
// server. Delivery is best-effort; a gone target drops silently.
type SignalSender interface {
	SendOffer(target, caller domain.ConnID, sdp *webrtc.SessionDescription) error
	SendAnswer(target, caller domain.ConnID, sdp *webrtc.SessionDescription) error
	SendCandidate(target domain.ConnID, cand webrtc.ICECandidateInit) error
}

// Session drives one peer negotiation. At most one live PeerLink per
// session; a new negotiation replaces the old link rather than
// accumulating.
type Session struct {
	mu      sync.Mutex
	state   State
	self    domain.ConnID
	remote  domain.ConnID
	link    PeerLink
	media   MediaSource
	send    SignalSender
	newLink func() (PeerLink, error)
}

func NewSession(self domain.ConnID, media MediaSource, send SignalSender, newLink func() (PeerLink, error)) *Session {
	return &Session{
		state:   StateIdle,
		self:    self,
		media:   media,
		send:    send,
		newLink: newLink,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Call initiates negotiation toward the remote peer. The second joiner
// calls: it is the one that discovers an existing occupant.
func (s *Session) Call(remote domain.ConnID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return fmt.Errorf("session closed")
	}

	link, err := s.replaceLinkLocked(remote)
	if err != nil {
		return err
	}
	if err := s.attachTracksLocked(link); err != nil {
		s.failLocked(err, "attach tracks")
		return err
	}
	offer, err := link.CreateAndSetOffer()
	if err != nil {
		s.failLocked(err, "create offer")
		return err
	}
	s.state = StateNegotiating
	log.Info().Str("module", "client.signal").Str("remote", string(remote)).Msg("offer sent")
	return s.send.SendOffer(remote, s.self, offer)
}

// HandleOffer is the responder path: install the incoming description as
// remote, attach local tracks strictly after that, answer back to the
// caller.
func (s *Session) HandleOffer(caller domain.ConnID, sdp webrtc.SessionDescription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}

	link, err := s.replaceLinkLocked(caller)
	if err != nil {
		return
	}
	answer, err := s.answerLocked(link, sdp)
	if err != nil {
		s.failLocked(err, "answer offer")
		return
	}
	s.state = StateNegotiating
	log.Info().Str("module", "client.signal").Str("caller", string(caller)).Msg("answer sent")
	_ = s.send.SendAnswer(caller, s.self, answer)
}

func (s *Session) answerLocked(link PeerLink, offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	if err := link.ApplyRemote(offer); err != nil {
		return nil, err
	}
	// Local tracks must be in the connection before the answer is
	// created, or they are absent from the negotiated directions.
	if err := s.attachTracksLocked(link); err != nil {
		return nil, err
	}
	return link.CreateAndSetAnswer()
}

// HandleAnswer applies the remote answer. A rejected description (for
// example a renegotiation race) is logged, never retried here.
func (s *Session) HandleAnswer(sdp webrtc.SessionDescription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.link == nil || s.state == StateClosed {
		// Late answer for a torn-down session; the link is gone.
		return
	}
	if err := s.link.ApplyRemote(sdp); err != nil {
		s.failLocked(err, "apply answer")
	}
}

// HandleCandidate adds a remote ICE candidate immediately. Malformed or
// late candidates are tolerated and logged, not propagated.
func (s *Session) HandleCandidate(cand webrtc.ICECandidateInit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.link == nil || s.state == StateClosed {
		return
	}
	if err := s.link.AddICECandidate(cand); err != nil {
		log.Warn().Err(err).Str("module", "client.signal").Msg("add candidate")
	}
}

// Close tears the session down: the game view unmounted or the room
// closed. Idempotent; signaling arriving afterwards is ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	if s.link != nil {
		s.link.Close()
		s.link = nil
	}
	if s.media != nil {
		s.media.Close()
	}
	s.state = StateClosed
	log.Info().Str("module", "client.signal").Msg("session closed")
}

// replaceLinkLocked discards any live link and builds a fresh one wired
// with candidate relay and the connected-on-first-track observation.
func (s *Session) replaceLinkLocked(remote domain.ConnID) (PeerLink, error) {
	if s.link != nil {
		s.link.Close()
		s.link = nil
	}
	link, err := s.newLink()
	if err != nil {
		s.failLocked(err, "new peer link")
		return nil, err
	}
	s.remote = remote
	link.OnICECandidate(func(ci webrtc.ICECandidateInit) {
		_ = s.send.SendCandidate(remote, ci)
	})
	link.OnTrack(func(track *webrtc.TrackRemote) {
		s.onRemoteTrack()
	})
	s.link = link
	return link, nil
}

func (s *Session) attachTracksLocked(link PeerLink) error {
	for _, track := range s.media.Tracks() {
		if err := link.AddLocalTrack(track); err != nil {
			return err
		}
	}
	return nil
}

// onRemoteTrack marks the session connected; the transition is observed
// from media arrival, not signaled explicitly.
func (s *Session) onRemoteTrack() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateNegotiating {
		s.state = StateConnected
		log.Info().Str("module", "client.signal").Str("remote", string(s.remote)).Msg("connected")
	}
}

func (s *Session) failLocked(err error, op string) {
	s.state = StateFailed
	log.Error().Err(err).Str("module", "client.signal").Str("op", op).Msg("negotiation failed")
}
