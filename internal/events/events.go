package events

import "time"

// TopicRouteBotEvents carries every observability event the bot emits.
const TopicRouteBotEvents = "routebot.events"

// Event types. User-visible behavior never depends on these; they exist so
// an observability consumer can tell a genuinely empty result apart from a
// gateway transport failure.
const (
	FlowStarted      = "flow.started"
	FlowCancelled    = "flow.cancelled"
	GeocodeEmpty     = "geocode.empty"
	GeocodeFailed    = "geocode.failed"
	RouteComputed    = "route.computed"
	RouteUnavailable = "route.unavailable"
	RouteFailed      = "route.failed"
)

// FlowEvent marks a flow lifecycle change for one conversation.
type FlowEvent struct {
	ChatID     int64     `json:"chat_id"`
	State      string    `json:"state,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// GeocodeEvent records the outcome of one geocoding call.
type GeocodeEvent struct {
	ChatID     int64     `json:"chat_id"`
	Query      string    `json:"query"`
	Matches    int       `json:"matches"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RouteEvent records the outcome of one route computation.
type RouteEvent struct {
	ChatID          int64     `json:"chat_id"`
	OriginLabel     string    `json:"origin_label,omitempty"`
	DestLabel       string    `json:"dest_label,omitempty"`
	DistanceMeters  float64   `json:"distance_meters,omitempty"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	Link            string    `json:"link,omitempty"`
	Error           string    `json:"error,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
