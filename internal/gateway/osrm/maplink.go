package osrm

import (
	"fmt"

	"github.com/saigon-transit/service-route/internal/config"
	"github.com/saigon-transit/service-route/internal/domain/place"
)

// LinkBuilder produces deep links into a third-party directions viewer.
type LinkBuilder struct {
	baseURL string
	engine  string
}

// NewLinkBuilder creates a LinkBuilder.
func NewLinkBuilder(cfg config.MapLinkConfig) LinkBuilder {
	return LinkBuilder{baseURL: cfg.BaseURL, engine: cfg.Engine}
}

// DirectionsLink builds a directions URL for the two points, formatted as
// lat,lon pairs at 6 decimal places, joined by ";".
func (b LinkBuilder) DirectionsLink(from, to place.Point) string {
	return fmt.Sprintf("%s?engine=%s&route=%.6f,%.6f;%.6f,%.6f",
		b.baseURL, b.engine, from.Lat, from.Lon, to.Lat, to.Lon)
}
