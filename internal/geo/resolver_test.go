package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skywatch/orbitrack/pkg/logger"
)

func newTestResolver(serverURL string, timeout time.Duration) *Resolver {
	return NewResolver(serverURL+"/coordinates/%f,%f", timeout, logger.NewNop())
}

func TestResolveCountry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latitude": 48.85, "longitude": 2.35, "country_code": "FR"}`))
	}))
	defer server.Close()

	loc := newTestResolver(server.URL, time.Second).Resolve(context.Background(), 48.85, 2.35)
	assert.Equal(t, ResolvedLocation{Label: "France", ColorHint: "red"}, loc)
}

func TestResolveLowercaseCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"country_code": "jp"}`))
	}))
	defer server.Close()

	loc := newTestResolver(server.URL, time.Second).Resolve(context.Background(), 35.68, 139.69)
	assert.Equal(t, "Japan", loc.Label)
}

func TestResolveUnknownCodeFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"country_code": "??"}`))
	}))
	defer server.Close()

	loc := newTestResolver(server.URL, time.Second).Resolve(context.Background(), 0, -160)
	assert.Equal(t, FallbackLocation, loc)
}

func TestResolveUnmappedCodeFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"country_code": "ZZ"}`))
	}))
	defer server.Close()

	loc := newTestResolver(server.URL, time.Second).Resolve(context.Background(), 0, 0)
	assert.Equal(t, FallbackLocation, loc)
}

func TestResolveMissingCodeFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latitude": 0, "longitude": -160}`))
	}))
	defer server.Close()

	loc := newTestResolver(server.URL, time.Second).Resolve(context.Background(), 0, -160)
	assert.Equal(t, FallbackLocation, loc)
}

func TestResolveHTTPErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	loc := newTestResolver(server.URL, time.Second).Resolve(context.Background(), 10, 10)
	assert.Equal(t, FallbackLocation, loc)
}

func TestResolveMalformedBodyFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	loc := newTestResolver(server.URL, time.Second).Resolve(context.Background(), 10, 10)
	assert.Equal(t, FallbackLocation, loc)
}

func TestResolveTimeoutFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"country_code": "US"}`))
	}))
	defer server.Close()

	loc := newTestResolver(server.URL, 50*time.Millisecond).Resolve(context.Background(), 40, -100)
	assert.Equal(t, FallbackLocation, loc)
}

func TestResolveConnectionRefusedFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	loc := newTestResolver(url, time.Second).Resolve(context.Background(), 40, -100)
	assert.Equal(t, FallbackLocation, loc)
}

func TestCountryName(t *testing.T) {
	name, ok := CountryName("CA")
	assert.True(t, ok)
	assert.Equal(t, "Canada", name)

	name, ok = CountryName("br")
	assert.True(t, ok)
	assert.Equal(t, "Brazil", name)

	_, ok = CountryName("XX")
	assert.False(t, ok)

	_, ok = CountryName("")
	assert.False(t, ok)
}
