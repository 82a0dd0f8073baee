package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/saigon-transit/service-route/internal/config"
	"github.com/saigon-transit/service-route/internal/domain/place"
	"go.uber.org/zap"
)

// Client is the routing gateway. Only the driving profile is requested and
// no path geometry is fetched.
type Client struct {
	httpClient *http.Client
	cfg        config.RouterConfig
	logger     *zap.Logger
}

// NewClient creates a routing client.
func NewClient(cfg config.RouterConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

type routeResponse struct {
	Routes []struct {
		Distance *float64 `json:"distance"`
		Duration *float64 `json:"duration"`
	} `json:"routes"`
}

// Route returns the distance and duration of the best driving route between
// two points. place.ErrNoRoute means a clean "no path" answer; any other error is
// a transport failure. Callers treat both the same for the user.
func (c *Client) Route(ctx context.Context, from, to place.Point) (place.RouteEstimate, error) {
	// OSRM takes lon,lat pairs.
	url := fmt.Sprintf("%s/%.6f,%.6f;%.6f,%.6f?overview=false",
		c.cfg.URL, from.Lon, from.Lat, to.Lon, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return place.RouteEstimate{}, fmt.Errorf("failed to build route request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return place.RouteEstimate{}, fmt.Errorf("route request failed: %w", err)
	}
	defer resp.Body.Close()

	// OSRM answers 400 with code "NoRoute" when no path exists.
	if resp.StatusCode == http.StatusBadRequest {
		return place.RouteEstimate{}, place.ErrNoRoute
	}
	if resp.StatusCode != http.StatusOK {
		return place.RouteEstimate{}, fmt.Errorf("router returned status %d", resp.StatusCode)
	}

	var parsed routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return place.RouteEstimate{}, fmt.Errorf("failed to decode router response: %w", err)
	}

	if len(parsed.Routes) == 0 {
		return place.RouteEstimate{}, place.ErrNoRoute
	}
	best := parsed.Routes[0]
	if best.Distance == nil || best.Duration == nil {
		return place.RouteEstimate{}, place.ErrNoRoute
	}

	return place.RouteEstimate{
		DistanceMeters:  *best.Distance,
		DurationSeconds: *best.Duration,
	}, nil
}
