package place

import "errors"

// ErrNoRoute means the routing engine produced no usable route between two
// points. It is terminal for the flow that asked.
var ErrNoRoute = errors.New("no usable route")

// RouteEstimate is a value object holding the driving estimate between
// two points.
type RouteEstimate struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}
