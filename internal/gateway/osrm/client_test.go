package osrm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/saigon-transit/service-route/internal/config"
	"github.com/saigon-transit/service-route/internal/domain/place"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	benThanh = place.Point{Lat: 10.772112, Lon: 106.698387}
	thaoDien = place.Point{Lat: 10.803, Lon: 106.733}
)

func testClient(serverURL string) *Client {
	return NewClient(config.RouterConfig{
		URL:       serverURL,
		UserAgent: "route-bot-test/1.0",
		Timeout:   5 * time.Second,
	}, zap.NewNop())
}

func TestRoute_RequestShape(t *testing.T) {
	var gotPath, gotRawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRawQuery = r.URL.RawQuery
		w.Write([]byte(`{"routes":[{"distance":4200.5,"duration":540.2}]}`))
	}))
	defer server.Close()

	estimate, err := testClient(server.URL).Route(context.Background(), benThanh, thaoDien)
	require.NoError(t, err)

	// lon,lat order, six decimals.
	assert.Equal(t, "/106.698387,10.772112;106.733000,10.803000", gotPath)
	assert.Equal(t, "overview=false", gotRawQuery)
	assert.Equal(t, 4200.5, estimate.DistanceMeters)
	assert.Equal(t, 540.2, estimate.DurationSeconds)
}

func TestRoute_FirstRouteWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"routes":[{"distance":1000,"duration":100},{"distance":2000,"duration":200}]}`))
	}))
	defer server.Close()

	estimate, err := testClient(server.URL).Route(context.Background(), benThanh, thaoDien)
	require.NoError(t, err)
	assert.Equal(t, float64(1000), estimate.DistanceMeters)
}

func TestRoute_NoRouteStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"NoRoute"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Route(context.Background(), benThanh, thaoDien)
	assert.ErrorIs(t, err, place.ErrNoRoute)
}

func TestRoute_EmptyRoutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"routes":[]}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Route(context.Background(), benThanh, thaoDien)
	assert.ErrorIs(t, err, place.ErrNoRoute)
}

func TestRoute_MissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"routes":[{"distance":4200.5}]}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Route(context.Background(), benThanh, thaoDien)
	assert.ErrorIs(t, err, place.ErrNoRoute)
}

func TestRoute_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Route(context.Background(), benThanh, thaoDien)
	require.Error(t, err)
	assert.NotErrorIs(t, err, place.ErrNoRoute)
}

func TestDirectionsLink(t *testing.T) {
	builder := NewLinkBuilder(config.MapLinkConfig{
		BaseURL: "https://www.openstreetmap.org/directions",
		Engine:  "fossgis_osrm_car",
	})

	link := builder.DirectionsLink(benThanh, thaoDien)
	// lat,lon order here, unlike the router path.
	assert.Equal(t,
		"https://www.openstreetmap.org/directions?engine=fossgis_osrm_car&route=10.772112,106.698387;10.803000,106.733000",
		link,
	)
}
