package conversation

import (
	"errors"
	"time"

	"github.com/saigon-transit/service-route/internal/domain/place"
)

// TransportMode is the routing profile confirmed at the end of a flow.
// Only driving is computed in this version; "skip" and "car" are equivalent.
type TransportMode string

const ModeCar TransportMode = "car"

var (
	// ErrInvalidTransition signals an operation that is not legal in the
	// session's current state.
	ErrInvalidTransition = errors.New("invalid flow transition")
	// ErrStaleSelection signals a candidate index that does not resolve
	// against the currently stored candidate list.
	ErrStaleSelection = errors.New("selection does not match current candidates")
)

// RouteResult is the cached outcome of a successful route computation.
type RouteResult struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
	Link            string  `json:"link"`
}

// Session is the aggregate root for one in-progress conversation flow.
// All mutation goes through behavior methods so that a point and its label
// are always set (and cleared) together, candidate indices are validated
// against the list they reference, and the mode is set exactly once.
type Session struct {
	chatID int64
	state  FlowState

	originText       string
	originCandidates []place.Candidate
	originPoint      *place.Point
	originLabel      string

	destText       string
	destCandidates []place.Candidate
	destPoint      *place.Point
	destLabel      string

	mode       TransportMode
	lastResult *RouteResult

	startedAt time.Time
	updatedAt time.Time
}

// NewSession creates a fresh session at the start of a flow.
func NewSession(chatID int64) *Session {
	now := time.Now().UTC()
	return &Session{
		chatID:    chatID,
		state:     StateAwaitingOriginText,
		startedAt: now,
		updatedAt: now,
	}
}

// --- Getters ---

// ChatID returns the conversation this session belongs to.
func (s *Session) ChatID() int64 { return s.chatID }

// State returns the session's current flow state.
func (s *Session) State() FlowState { return s.state }

// OriginText returns the last raw text entered for the origin.
func (s *Session) OriginText() string { return s.originText }

// OriginCandidates returns the result of the most recent origin geocode.
func (s *Session) OriginCandidates() []place.Candidate { return s.originCandidates }

// OriginPoint returns the chosen origin coordinate, or nil before selection.
func (s *Session) OriginPoint() *place.Point { return s.originPoint }

// OriginLabel returns the chosen origin candidate's display label.
func (s *Session) OriginLabel() string { return s.originLabel }

// DestText returns the last raw text entered for the destination.
func (s *Session) DestText() string { return s.destText }

// DestCandidates returns the result of the most recent destination geocode.
func (s *Session) DestCandidates() []place.Candidate { return s.destCandidates }

// DestPoint returns the chosen destination coordinate, or nil before selection.
func (s *Session) DestPoint() *place.Point { return s.destPoint }

// DestLabel returns the chosen destination candidate's display label.
func (s *Session) DestLabel() string { return s.destLabel }

// Mode returns the confirmed transport mode, or "" before confirmation.
func (s *Session) Mode() TransportMode { return s.mode }

// LastResult returns the cached route result, or nil if none was produced.
func (s *Session) LastResult() *RouteResult { return s.lastResult }

// StartedAt returns when the flow was entered.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// UpdatedAt returns the last mutation timestamp.
func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

// --- Behavior ---

// RecordOriginSearch stores the raw origin text and the candidates the
// geocoder produced for it. With zero candidates the session stays in
// the text-awaiting state (unlimited retries); otherwise it advances to
// origin selection.
func (s *Session) RecordOriginSearch(text string, candidates []place.Candidate) error {
	if s.state != StateAwaitingOriginText {
		return ErrInvalidTransition
	}
	s.originText = text
	s.originCandidates = candidates
	if len(candidates) > 0 {
		s.state = StateChoosingOrigin
	}
	s.touch()
	return nil
}

// ChooseOrigin resolves index i against the currently stored origin
// candidates and fixes the origin point and label together.
func (s *Session) ChooseOrigin(i int) (place.Candidate, error) {
	if s.state != StateChoosingOrigin {
		return place.Candidate{}, ErrInvalidTransition
	}
	if i < 0 || i >= len(s.originCandidates) {
		return place.Candidate{}, ErrStaleSelection
	}
	chosen := s.originCandidates[i]
	point := chosen.Point
	s.originPoint = &point
	s.originLabel = chosen.Label
	s.state = StateAwaitingDestText
	s.touch()
	return chosen, nil
}

// ResetOrigin clears all origin fields and returns to origin text entry.
func (s *Session) ResetOrigin() error {
	if s.state != StateChoosingOrigin {
		return ErrInvalidTransition
	}
	s.originText = ""
	s.originCandidates = nil
	s.originPoint = nil
	s.originLabel = ""
	s.state = StateAwaitingOriginText
	s.touch()
	return nil
}

// RecordDestSearch mirrors RecordOriginSearch for the destination side.
func (s *Session) RecordDestSearch(text string, candidates []place.Candidate) error {
	if s.state != StateAwaitingDestText {
		return ErrInvalidTransition
	}
	s.destText = text
	s.destCandidates = candidates
	if len(candidates) > 0 {
		s.state = StateChoosingDest
	}
	s.touch()
	return nil
}

// ChooseDest resolves index i against the currently stored destination
// candidates and fixes the destination point and label together.
func (s *Session) ChooseDest(i int) (place.Candidate, error) {
	if s.state != StateChoosingDest {
		return place.Candidate{}, ErrInvalidTransition
	}
	if i < 0 || i >= len(s.destCandidates) {
		return place.Candidate{}, ErrStaleSelection
	}
	chosen := s.destCandidates[i]
	point := chosen.Point
	s.destPoint = &point
	s.destLabel = chosen.Label
	s.state = StateChoosingMode
	s.touch()
	return chosen, nil
}

// ResetDest clears all destination fields and returns to destination
// text entry.
func (s *Session) ResetDest() error {
	if s.state != StateChoosingDest {
		return ErrInvalidTransition
	}
	s.destText = ""
	s.destCandidates = nil
	s.destPoint = nil
	s.destLabel = ""
	s.state = StateAwaitingDestText
	s.touch()
	return nil
}

// ConfirmMode fixes the transport mode. This is the only place the mode is
// ever set; the session stays in mode selection until the route computation
// outcome lands via Complete or FailRouting.
func (s *Session) ConfirmMode(mode TransportMode) error {
	if s.state != StateChoosingMode {
		return ErrInvalidTransition
	}
	if s.mode != "" {
		return ErrInvalidTransition
	}
	s.mode = mode
	s.touch()
	return nil
}

// Complete caches a successful route result and ends the flow.
func (s *Session) Complete(result RouteResult) error {
	if !s.state.CanTransitionTo(StateCompleted) || s.mode == "" {
		return ErrInvalidTransition
	}
	s.lastResult = &result
	s.state = StateCompleted
	s.touch()
	return nil
}

// FailRouting ends the flow without a cached result after the routing
// gateway yields no usable route. The user must restart with a fresh flow.
func (s *Session) FailRouting() error {
	if !s.state.CanTransitionTo(StateCompleted) || s.mode == "" {
		return ErrInvalidTransition
	}
	s.lastResult = nil
	s.state = StateCompleted
	s.touch()
	return nil
}

func (s *Session) touch() {
	s.updatedAt = time.Now().UTC()
}
