package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywatch/orbitrack/pkg/logger"
)

const validBody = `{
	"name": "iss",
	"id": 25544,
	"latitude": 47.61,
	"longitude": -122.33,
	"altitude": 421.37,
	"velocity": 27571.25,
	"visibility": "daylight",
	"timestamp": 1700000000,
	"footprint": 4514.6,
	"units": "kilometers"
}`

func newTestClient(url string, timeout time.Duration) *Client {
	return NewClient(url, timeout, logger.NewNop())
}

func TestClientFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(validBody))
	}))
	defer server.Close()

	sample, err := newTestClient(server.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 47.61, sample.Latitude)
	assert.Equal(t, -122.33, sample.Longitude)
	assert.Equal(t, 421.37, sample.Altitude)
	assert.Equal(t, 27571.25, sample.Velocity)
	assert.Equal(t, VisibilityDaylight, sample.Visibility)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), sample.ObservedAt)
}

func TestClientFetchUnknownVisibility(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latitude": 1, "longitude": 2, "altitude": 3, "velocity": 4, "visibility": "penumbral"}`))
	}))
	defer server.Close()

	sample, err := newTestClient(server.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, VisibilityUnknown, sample.Visibility)
}

func TestClientFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, time.Second).Fetch(context.Background())
	require.Error(t, err)

	kind, ok := ErrorKind(err)
	require.True(t, ok)
	assert.Equal(t, KindHTTP, kind)
}

func TestClientFetchMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latitude": not-json`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, time.Second).Fetch(context.Background())
	require.Error(t, err)

	kind, ok := ErrorKind(err)
	require.True(t, ok)
	assert.Equal(t, KindParse, kind)
}

func TestClientFetchMissingFields(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing latitude", `{"longitude": 2, "altitude": 3, "velocity": 4, "visibility": "visible"}`},
		{"missing longitude", `{"latitude": 1, "altitude": 3, "velocity": 4, "visibility": "visible"}`},
		{"missing altitude", `{"latitude": 1, "longitude": 2, "velocity": 4, "visibility": "visible"}`},
		{"missing velocity", `{"latitude": 1, "longitude": 2, "altitude": 3, "visibility": "visible"}`},
		{"missing visibility", `{"latitude": 1, "longitude": 2, "altitude": 3, "velocity": 4}`},
		{"non-numeric latitude", `{"latitude": "north", "longitude": 2, "altitude": 3, "velocity": 4, "visibility": "visible"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL, time.Second).Fetch(context.Background())
			require.Error(t, err)

			kind, ok := ErrorKind(err)
			require.True(t, ok)
			assert.Equal(t, KindParse, kind)
		})
	}
}

func TestClientFetchConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url, time.Second).Fetch(context.Background())
	require.Error(t, err)

	kind, ok := ErrorKind(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, kind)
}

func TestClientFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(validBody))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 50*time.Millisecond).Fetch(context.Background())
	require.Error(t, err)

	kind, ok := ErrorKind(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, kind)
}

func TestClientFetchObservedAtFallback(t *testing.T) {
	// Without a source timestamp, ObservedAt comes from the local clock
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latitude": 1, "longitude": 2, "altitude": 3, "velocity": 4, "visibility": "eclipsed"}`))
	}))
	defer server.Close()

	before := time.Now().UTC()
	sample, err := newTestClient(server.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	after := time.Now().UTC()

	assert.False(t, sample.ObservedAt.Before(before))
	assert.False(t, sample.ObservedAt.After(after))
}
