package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/saigon-transit/service-route/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(serverURL string) config.GeocoderConfig {
	return config.GeocoderConfig{
		URL:            serverURL,
		Viewbox:        "106.3567007,10.1399458,107.0276712,11.1603083",
		CountryCodes:   "vn",
		Limit:          3,
		AcceptLanguage: "vi",
		UserAgent:      "route-bot-test/1.0",
		Timeout:        5 * time.Second,
	}
}

func TestSearch_RequestShape(t *testing.T) {
	var gotQuery url.Values
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	_, err := client.Search(context.Background(), "  chợ bến thành  ")
	require.NoError(t, err)

	assert.Equal(t, "chợ bến thành", gotQuery.Get("q"))
	assert.Equal(t, "jsonv2", gotQuery.Get("format"))
	assert.Equal(t, "3", gotQuery.Get("limit"))
	assert.Equal(t, "1", gotQuery.Get("addressdetails"))
	assert.Equal(t, "vn", gotQuery.Get("countrycodes"))
	assert.Equal(t, "vi", gotQuery.Get("accept-language"))
	assert.Equal(t, "106.3567007,10.1399458,107.0276712,11.1603083", gotQuery.Get("viewbox"))
	assert.Equal(t, "1", gotQuery.Get("bounded"))
	assert.Equal(t, "route-bot-test/1.0", gotUserAgent)
}

func TestSearch_BlankQuerySkipsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for a blank query")
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	matches, err := client.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearch_DecodesMatches(t *testing.T) {
	body := `[
		{"name":"Chợ Bến Thành","display_name":"Chợ Bến Thành, Quận 1","lat":"10.772","lon":"106.698",
		 "address":{"road":"Lê Lợi","suburb":"Quận 1"}},
		{"display_name":"Bến Thành, TP.HCM","lat":"10.770","lon":"106.695"}
	]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	matches, err := client.Search(context.Background(), "chợ bến thành")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Chợ Bến Thành", matches[0].Name)
	assert.Equal(t, "10.772", matches[0].Lat)
	assert.Equal(t, "Lê Lợi", matches[0].Address.Road)
	assert.Empty(t, matches[1].Name)
	assert.Equal(t, "Bến Thành, TP.HCM", matches[1].DisplayName)
}

func TestSearch_MalformedEntryDropsAlone(t *testing.T) {
	// The second element is not an object; it must not kill the batch.
	body := `[
		{"name":"A","lat":"10.7","lon":"106.6"},
		"not an object",
		{"name":"B","lat":"10.8","lon":"106.7"}
	]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	matches, err := client.Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "A", matches[0].Name)
	assert.Equal(t, "B", matches[1].Name)
}

func TestSearch_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	_, err := client.Search(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSearch_BodyNotAnArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"oops"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	_, err := client.Search(context.Background(), "q")
	require.Error(t, err)
}
