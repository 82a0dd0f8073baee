package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/saigon-transit/service-route/internal/domain/conversation"
	"github.com/saigon-transit/service-route/internal/domain/place"
	"github.com/saigon-transit/service-route/internal/events"
	"github.com/saigon-transit/service-route/internal/kafka"
	"go.uber.org/zap"
)

// eventSource identifies this service on the event bus.
const eventSource = "service-route"

// Geocoder resolves free-text place queries to raw matches.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]place.RawMatch, error)
}

// RouteFinder computes a driving estimate between two points. It returns
// place.ErrNoRoute when the engine yields no usable route.
type RouteFinder interface {
	Route(ctx context.Context, from, to place.Point) (place.RouteEstimate, error)
}

// DirectionsLinker builds a shareable deep link for a route.
type DirectionsLinker interface {
	DirectionsLink(from, to place.Point) string
}

// EventPublisher pushes observability events onto the bus. Publishing is
// best-effort; failures are logged, never surfaced to the user.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// NopPublisher discards events; wired when no brokers are configured.
type NopPublisher struct{}

// PublishEvent drops the event.
func (NopPublisher) PublishEvent(context.Context, string, kafka.CloudEvent) error { return nil }

// FlowService orchestrates the conversation flow: it owns the session
// store, drives the state machine and talks to the geocoding and routing
// gateways. One instance serves all chats; callers must deliver the events
// of a single chat sequentially.
type FlowService struct {
	sessions  conversation.SessionRepository
	geocoder  Geocoder
	router    RouteFinder
	links     DirectionsLinker
	publisher EventPublisher
	logger    *zap.Logger
}

// NewFlowService creates a FlowService.
func NewFlowService(
	sessions conversation.SessionRepository,
	geocoder Geocoder,
	router RouteFinder,
	links DirectionsLinker,
	publisher EventPublisher,
	logger *zap.Logger,
) *FlowService {
	return &FlowService{
		sessions:  sessions,
		geocoder:  geocoder,
		router:    router,
		links:     links,
		publisher: publisher,
		logger:    logger,
	}
}

// Greet handles the start command outside the flow.
func (s *FlowService) Greet() Reply {
	return Reply{Messages: []Message{{Text: msgStart, Markdown: true}}}
}

// Help handles the help command outside the flow.
func (s *FlowService) Help() Reply {
	return Reply{Messages: []Message{{Text: msgHelp, Markdown: true}}}
}

// UnknownCommand handles any command the bot does not recognize.
func (s *FlowService) UnknownCommand() Reply {
	return textReply(msgOutsideFlow)
}

// StartFlow enters a fresh flow for the chat. A flow already in progress
// cannot be restarted without an explicit cancel or completion first.
func (s *FlowService) StartFlow(ctx context.Context, chatID int64) Reply {
	if existing, err := s.sessions.Find(chatID); err == nil && !existing.State().IsTerminal() {
		return textReply(msgFlowActive)
	}

	session := conversation.NewSession(chatID)
	if err := s.sessions.Save(session); err != nil {
		s.logger.Error("failed to save session", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	s.publishEvent(ctx, events.FlowStarted, chatID, events.FlowEvent{
		ChatID:     chatID,
		State:      session.State().String(),
		OccurredAt: time.Now().UTC(),
	})
	return textReply(msgFlowEntry)
}

// Cancel resets the chat to idle from any state.
func (s *FlowService) Cancel(ctx context.Context, chatID int64) Reply {
	if err := s.sessions.Delete(chatID); err != nil {
		s.logger.Error("failed to delete session", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	s.publishEvent(ctx, events.FlowCancelled, chatID, events.FlowEvent{
		ChatID:     chatID,
		OccurredAt: time.Now().UTC(),
	})
	return textReply(msgCancelled)
}

// HandleText processes a free-text message for the chat's current state.
func (s *FlowService) HandleText(ctx context.Context, chatID int64, text string) Reply {
	session, err := s.sessions.Find(chatID)
	if err != nil || session.State().IsTerminal() {
		return textReply(msgOutsideFlow)
	}

	switch session.State() {
	case conversation.StateAwaitingOriginText:
		return s.handleOriginText(ctx, session, text)
	case conversation.StateAwaitingDestText:
		return s.handleDestText(ctx, session, text)
	case conversation.StateChoosingOrigin, conversation.StateChoosingDest:
		return textReply(msgUseButtons)
	case conversation.StateChoosingMode:
		return textReply(msgUseModeKeys)
	default:
		return textReply(msgOutsideFlow)
	}
}

// HandleNonText processes a non-text message (photo, sticker, location, …).
func (s *FlowService) HandleNonText(ctx context.Context, chatID int64) Reply {
	session, err := s.sessions.Find(chatID)
	if err != nil || session.State().IsTerminal() {
		return textReply(msgOutsideFlow)
	}

	switch session.State() {
	case conversation.StateAwaitingOriginText:
		return textReply(fmt.Sprintf(msgTextOnly, "xuất phát"))
	case conversation.StateAwaitingDestText:
		return textReply(fmt.Sprintf(msgTextOnly, "đến"))
	case conversation.StateChoosingOrigin, conversation.StateChoosingDest:
		return textReply(msgUseButtons)
	case conversation.StateChoosingMode:
		return textReply(msgUseModeKeys)
	default:
		return textReply(msgOutsideFlow)
	}
}

// HandleSelection processes a decoded button press for the chat's current
// state. Anything that does not resolve cleanly leaves the session
// untouched and reprompts.
func (s *FlowService) HandleSelection(ctx context.Context, chatID int64, sel conversation.Selection) Reply {
	session, err := s.sessions.Find(chatID)
	if err != nil || session.State().IsTerminal() {
		return Reply{Notice: msgInvalidNotice, Messages: []Message{{Text: msgOutsideFlow}}}
	}

	switch sel.Kind {
	case conversation.SelectOrigin:
		return s.chooseOrigin(session, sel.Index)
	case conversation.BackOrigin:
		return s.resetOrigin(session)
	case conversation.SelectDest:
		return s.chooseDest(session, sel.Index)
	case conversation.BackDest:
		return s.resetDest(session)
	case conversation.ModeConfirm:
		return s.confirmMode(ctx, session, ackModeCar)
	case conversation.ModeSkip:
		return s.confirmMode(ctx, session, ackModeSkipped)
	default:
		return s.invalidSelection(session)
	}
}

// ActiveSessions reports the number of live sessions for the ops surface.
func (s *FlowService) ActiveSessions() int {
	return s.sessions.Count()
}

// --- Text transitions ---

func (s *FlowService) handleOriginText(ctx context.Context, session *conversation.Session, text string) Reply {
	candidates := s.geocode(ctx, session.ChatID(), text)

	if err := session.RecordOriginSearch(text, candidates); err != nil {
		s.logger.Error("origin search rejected", zap.Int64("chat_id", session.ChatID()), zap.Error(err))
		return textReply(msgUseButtons)
	}
	s.save(session)

	if len(candidates) == 0 {
		return textReply(msgNoResults)
	}
	return Reply{Messages: []Message{{
		Text:     msgPickOrigin,
		Keyboard: candidateKeyboard(candidates, conversation.SelectOrigin, conversation.BackOrigin),
	}}}
}

func (s *FlowService) handleDestText(ctx context.Context, session *conversation.Session, text string) Reply {
	candidates := s.geocode(ctx, session.ChatID(), text)

	if err := session.RecordDestSearch(text, candidates); err != nil {
		s.logger.Error("destination search rejected", zap.Int64("chat_id", session.ChatID()), zap.Error(err))
		return textReply(msgUseButtons)
	}
	s.save(session)

	if len(candidates) == 0 {
		return textReply(msgNoResults)
	}
	return Reply{Messages: []Message{{
		Text:     msgPickDest,
		Keyboard: candidateKeyboard(candidates, conversation.SelectDest, conversation.BackDest),
	}}}
}

// geocode collapses gateway failures to an empty result for the user while
// keeping the empty/failed distinction on the event bus.
func (s *FlowService) geocode(ctx context.Context, chatID int64, query string) []place.Candidate {
	now := time.Now().UTC()
	matches, err := s.geocoder.Search(ctx, query)
	if err != nil {
		s.logger.Warn("geocoding failed",
			zap.Int64("chat_id", chatID),
			zap.String("query", query),
			zap.Error(err),
		)
		s.publishEvent(ctx, events.GeocodeFailed, chatID, events.GeocodeEvent{
			ChatID: chatID, Query: query, Error: err.Error(), OccurredAt: now,
		})
		return nil
	}

	candidates := place.Normalize(matches)
	if len(candidates) == 0 {
		// Matches keeps the raw provider count: nonzero here means every
		// hit was dropped during normalization.
		s.publishEvent(ctx, events.GeocodeEmpty, chatID, events.GeocodeEvent{
			ChatID: chatID, Query: query, Matches: len(matches), OccurredAt: now,
		})
	}
	return candidates
}

// --- Selection transitions ---

func (s *FlowService) chooseOrigin(session *conversation.Session, index int) Reply {
	chosen, err := session.ChooseOrigin(index)
	if err != nil {
		return s.invalidSelection(session)
	}
	s.save(session)

	return Reply{
		Ack:      fmt.Sprintf(ackOriginChosen, chosen.Label),
		Messages: []Message{{Text: msgAskDest}},
	}
}

func (s *FlowService) resetOrigin(session *conversation.Session) Reply {
	if err := session.ResetOrigin(); err != nil {
		return s.invalidSelection(session)
	}
	s.save(session)

	return Reply{
		Ack:      ackOriginReset,
		Messages: []Message{{Text: msgAskOrigin}},
	}
}

func (s *FlowService) chooseDest(session *conversation.Session, index int) Reply {
	chosen, err := session.ChooseDest(index)
	if err != nil {
		return s.invalidSelection(session)
	}
	s.save(session)

	return Reply{
		Ack:      fmt.Sprintf(ackDestChosen, chosen.Label),
		Messages: []Message{{Text: msgPickMode, Keyboard: modeKeyboard()}},
	}
}

func (s *FlowService) resetDest(session *conversation.Session) Reply {
	if err := session.ResetDest(); err != nil {
		return s.invalidSelection(session)
	}
	s.save(session)

	return Reply{
		Ack:      ackDestReset,
		Messages: []Message{{Text: msgAskDest}},
	}
}

// confirmMode fixes mode=car (both buttons map to car in this version),
// computes the route and ends the flow either way.
func (s *FlowService) confirmMode(ctx context.Context, session *conversation.Session, ack string) Reply {
	if err := session.ConfirmMode(conversation.ModeCar); err != nil {
		return s.invalidSelection(session)
	}

	chatID := session.ChatID()
	from := *session.OriginPoint()
	to := *session.DestPoint()
	now := time.Now().UTC()

	estimate, err := s.router.Route(ctx, from, to)
	if err != nil {
		eventType := events.RouteFailed
		if errors.Is(err, place.ErrNoRoute) {
			eventType = events.RouteUnavailable
		} else {
			s.logger.Warn("routing failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		s.publishEvent(ctx, eventType, chatID, events.RouteEvent{
			ChatID:     chatID,
			Error:      err.Error(),
			OccurredAt: now,
		})

		if err := session.FailRouting(); err != nil {
			s.logger.Error("failed to close session", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		s.save(session)
		return Reply{Ack: ack, Messages: []Message{{Text: msgRouteFailed}}}
	}

	result := conversation.RouteResult{
		DistanceMeters:  estimate.DistanceMeters,
		DurationSeconds: estimate.DurationSeconds,
		Link:            s.links.DirectionsLink(from, to),
	}
	if err := session.Complete(result); err != nil {
		s.logger.Error("failed to complete session", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	s.save(session)

	s.publishEvent(ctx, events.RouteComputed, chatID, events.RouteEvent{
		ChatID:          chatID,
		OriginLabel:     session.OriginLabel(),
		DestLabel:       session.DestLabel(),
		DistanceMeters:  result.DistanceMeters,
		DurationSeconds: result.DurationSeconds,
		Link:            result.Link,
		OccurredAt:      now,
	})

	return Reply{
		Ack: ack,
		Messages: []Message{{
			Text:               formatResult(session.OriginLabel(), session.DestLabel(), result),
			Markdown:           true,
			DisableLinkPreview: true,
		}},
	}
}

func (s *FlowService) invalidSelection(session *conversation.Session) Reply {
	reply := Reply{Notice: msgInvalidNotice, Messages: []Message{{Text: msgInvalidChoice}}}
	if session.State() == conversation.StateChoosingMode {
		reply.Messages = []Message{{Text: msgUseModeKeys}}
	}
	return reply
}

// --- Helpers ---

func (s *FlowService) save(session *conversation.Session) {
	if err := s.sessions.Save(session); err != nil {
		s.logger.Error("failed to save session",
			zap.Int64("chat_id", session.ChatID()),
			zap.Error(err),
		)
	}
}

func (s *FlowService) publishEvent(ctx context.Context, eventType string, chatID int64, data interface{}) {
	subject := strconv.FormatInt(chatID, 10)
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, subject, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, events.TopicRouteBotEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
