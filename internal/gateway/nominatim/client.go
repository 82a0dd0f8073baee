package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/saigon-transit/service-route/internal/config"
	"github.com/saigon-transit/service-route/internal/domain/place"
	"go.uber.org/zap"
)

// Client is the geocoding gateway. Every query is bounded to the configured
// viewbox, capped to the configured result count and localized to the
// configured language.
type Client struct {
	httpClient *http.Client
	cfg        config.GeocoderConfig
	logger     *zap.Logger
}

// NewClient creates a geocoding client.
func NewClient(cfg config.GeocoderConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// Search resolves a free-text place query to an ordered list of raw matches.
// A blank query yields an empty list. Transport and decoding failures are
// returned as errors; callers collapse them to an empty result for the user
// and keep the distinction for observability.
func (c *Client) Search(ctx context.Context, query string) ([]place.RawMatch, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(c.cfg.Limit))
	params.Set("addressdetails", "1")
	params.Set("countrycodes", c.cfg.CountryCodes)
	params.Set("accept-language", c.cfg.AcceptLanguage)
	params.Set("viewbox", c.cfg.Viewbox)
	params.Set("bounded", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}
	// Required by the Nominatim usage policy.
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// 429 happens on the public instance under load.
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var items []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}

	matches := make([]place.RawMatch, 0, len(items))
	for _, item := range items {
		var m place.RawMatch
		if err := json.Unmarshal(item, &m); err != nil {
			// A non-object entry drops alone, never the batch.
			c.logger.Warn("skipping malformed geocoder entry", zap.Error(err))
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}
