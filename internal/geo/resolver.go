package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skywatch/orbitrack/pkg/logger"
)

// ResolvedLocation is the human-readable place label for a coordinate,
// recomputed every tick and never persisted.
type ResolvedLocation struct {
	Label     string `json:"label"`
	ColorHint string `json:"color_hint"`
}

// FallbackLocation is returned whenever the reverse-geocode lookup cannot
// produce a country: over open water, on any fetch or parse error, or for
// an unknown country code.
var FallbackLocation = ResolvedLocation{Label: "Ocean", ColorHint: "red"}

// Resolver resolves a coordinate to a country label via the reverse-geocode
// endpoint. Resolve is total: it degrades to FallbackLocation on any internal
// failure and never returns an error to the caller. The lookup is a secondary
// enrichment, so it runs with a shorter timeout than the telemetry fetch.
type Resolver struct {
	sourceURL  string // URL template with two %f placeholders (lat, lon)
	httpClient *http.Client
	logger     *logger.Logger
}

// coordinateResponse mirrors the reverse-geocode endpoint's JSON response.
// country_code is ISO 3166-1 alpha-2, or "??" / absent when unknown.
type coordinateResponse struct {
	CountryCode string `json:"country_code"`
}

// NewResolver creates a new location resolver
func NewResolver(sourceURL string, timeout time.Duration, log *logger.Logger) *Resolver {
	return &Resolver{
		sourceURL: sourceURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.Named("geo-resolver"),
	}
}

// Resolve returns the place label for the given coordinate
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64) ResolvedLocation {
	urlStr := fmt.Sprintf(r.sourceURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		r.logger.Warn("Failed to create geocode request", logger.Error(err))
		return FallbackLocation
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Debug("Geocode request failed, using fallback",
			logger.Error(err),
			logger.Float64("lat", lat),
			logger.Float64("lon", lon))
		return FallbackLocation
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Debug("Geocode returned non-OK status, using fallback",
			logger.Int("status_code", resp.StatusCode))
		return FallbackLocation
	}

	var coord coordinateResponse
	if err := json.NewDecoder(resp.Body).Decode(&coord); err != nil {
		r.logger.Debug("Failed to decode geocode response, using fallback", logger.Error(err))
		return FallbackLocation
	}

	if coord.CountryCode == "" || coord.CountryCode == "??" {
		return FallbackLocation
	}

	name, ok := CountryName(coord.CountryCode)
	if !ok {
		r.logger.Debug("Unknown country code, using fallback",
			logger.String("country_code", coord.CountryCode))
		return FallbackLocation
	}

	return ResolvedLocation{Label: name, ColorHint: "red"}
}
