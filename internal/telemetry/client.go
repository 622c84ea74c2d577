package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/skywatch/orbitrack/pkg/logger"
)

// Client fetches telemetry for the tracked object from the remote endpoint.
// It is stateless beyond its HTTP client; every call issues one GET with a
// bounded timeout and either returns a fully validated Sample or a
// *FetchError. It never panics into the caller.
type Client struct {
	sourceURL  string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new telemetry client
func NewClient(sourceURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		sourceURL: sourceURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.Named("telemetry-client"),
	}
}

// Fetch fetches and normalizes the current telemetry
func (c *Client) Fetch(ctx context.Context) (*Sample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sourceURL, nil)
	if err != nil {
		return nil, newFetchError(KindNetwork, "failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Fetching telemetry", logger.String("url", c.sourceURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newFetchError(KindNetwork, "failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newFetchError(KindHTTP, "unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newFetchError(KindNetwork, "failed to read response body: %w", err)
	}

	var raw rawSample
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, newFetchError(KindParse, "failed to parse JSON: %w", err)
	}

	sample, err := raw.toSample()
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Successfully fetched telemetry",
		logger.Float64("latitude", sample.Latitude),
		logger.Float64("longitude", sample.Longitude),
		logger.String("visibility", string(sample.Visibility)),
	)

	return sample, nil
}

// toSample validates the raw response and builds an immutable Sample.
// All four numeric fields and the visibility field are required.
func (r *rawSample) toSample() (*Sample, error) {
	switch {
	case r.Latitude == nil:
		return nil, newFetchError(KindParse, "response missing required field: latitude")
	case r.Longitude == nil:
		return nil, newFetchError(KindParse, "response missing required field: longitude")
	case r.Altitude == nil:
		return nil, newFetchError(KindParse, "response missing required field: altitude")
	case r.Velocity == nil:
		return nil, newFetchError(KindParse, "response missing required field: velocity")
	case r.Visibility == nil:
		return nil, newFetchError(KindParse, "response missing required field: visibility")
	}

	observedAt := time.Now().UTC()
	if r.Timestamp != nil {
		observedAt = time.Unix(*r.Timestamp, 0).UTC()
	}

	return &Sample{
		Latitude:   *r.Latitude,
		Longitude:  *r.Longitude,
		Altitude:   *r.Altitude,
		Velocity:   *r.Velocity,
		Visibility: ParseVisibility(*r.Visibility),
		ObservedAt: observedAt,
	}, nil
}
