package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/skywatch/orbitrack/internal/config"
	"github.com/skywatch/orbitrack/internal/render"
	"github.com/skywatch/orbitrack/internal/tracker"
	"github.com/skywatch/orbitrack/pkg/logger"
)

// Handler contains the API handlers
type Handler struct {
	service   *tracker.Service
	config    *config.Config
	logger    *logger.Logger
	startedAt time.Time
}

// NewHandler creates a new API handler
func NewHandler(service *tracker.Service, cfg *config.Config, log *logger.Logger) *Handler {
	return &Handler{
		service:   service,
		config:    cfg,
		logger:    log.Named("api-handler"),
		startedAt: time.Now().UTC(),
	}
}

// GetState returns the per-tick scalar output contract: the four
// 2-decimal readouts plus the current sample, resolved location and
// fetch status. Until the first successful tick there is no state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	readouts, ok := h.service.CurrentReadouts()
	if !ok {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no telemetry received yet",
		})
		return
	}

	sample, _ := h.service.CurrentSample()
	WriteJSON(w, http.StatusOK, map[string]any{
		"readouts": readouts,
		"sample":   sample,
		"location": h.service.CurrentLocation(),
		"status":   h.service.Status(),
	})
}

// GetTrack returns the track buffer snapshot as parallel arrays
// {lat, lon, vis}, the interop shape for stateless rendering boundaries
func (h *Handler) GetTrack(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.service.TrackState())
}

// GetTrackGeoJSON returns the segmented track as a GeoJSON
// FeatureCollection: one LineString feature per visibility segment plus
// a Point feature at the current position
func (h *Handler) GetTrackGeoJSON(w http.ResponseWriter, r *http.Request) {
	fc := geojson.NewFeatureCollection()

	colors := render.StyleColors()
	for _, seg := range h.service.Segments() {
		line := make(orb.LineString, 0, len(seg.Samples))
		for _, s := range seg.Samples {
			line = append(line, orb.Point{s.Longitude, s.Latitude})
		}

		feature := geojson.NewFeature(line)
		feature.Properties["visibility"] = string(seg.Visibility)
		if color, ok := colors[string(seg.Visibility)]; ok {
			feature.Properties["color"] = color
		}
		fc.Append(feature)
	}

	if sample, ok := h.service.CurrentSample(); ok {
		point := geojson.NewFeature(orb.Point{sample.Longitude, sample.Latitude})
		point.Properties["kind"] = "current_position"
		point.Properties["visibility"] = string(sample.Visibility)
		fc.Append(point)
	}

	WriteJSON(w, http.StatusOK, fc)
}

// GetScene returns the render-ready scene from the last successful tick
func (h *Handler) GetScene(w http.ResponseWriter, r *http.Request) {
	scene := h.service.CurrentScene()
	if scene == nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no scene composed yet",
		})
		return
	}
	WriteJSON(w, http.StatusOK, scene)
}

// GetHealth returns service liveness and the last fetch outcome
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := h.service.Status()
	payload := map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"last_fetch_at":  status.LastFetchAt,
		"last_fetch_ok":  status.LastFetchOK,
		"tick_count":     status.TickCount,
		"track_len":      h.service.TrackLen(),
		"track_capacity": h.service.TrackCapacity(),
	}
	if n, ok := h.service.RecordedCount(); ok {
		payload["recorded_samples"] = n
	}
	WriteJSON(w, http.StatusOK, payload)
}

// GetConfig returns the sanitized client-facing configuration
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"fetch_interval_seconds": h.config.Telemetry.FetchIntervalSecs,
		"track_capacity":         h.config.Track.Capacity,
		"marker_icon":            h.config.Render.MarkerIcon,
		"style_colors":           render.StyleColors(),
	})
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
