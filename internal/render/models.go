package render

import (
	"github.com/paulmach/orb"

	"github.com/skywatch/orbitrack/internal/telemetry"
)

// LineLayer is one styled polyline of the track, covering a single
// visibility segment.
type LineLayer struct {
	Geometry   orb.LineString       `json:"geometry"` // [lon, lat] pairs
	Color      string               `json:"color"`
	Width      float64              `json:"width"`
	Visibility telemetry.Visibility `json:"visibility"`
}

// Marker is a current-position marker. The main marker is iconographic
// (Icon set, Color empty); the inset marker is a colored dot (Color set,
// Icon empty).
type Marker struct {
	Position orb.Point `json:"position"` // [lon, lat]
	Icon     string    `json:"icon,omitempty"`
	Color    string    `json:"color,omitempty"`
	Size     float64   `json:"size"`
}

// Annotations are the scene's four text readouts
type Annotations struct {
	TimeText     string `json:"time_text"`     // current UTC time, "YYYY-MM-DD HH:MM:SS UTC"
	HeaderText   string `json:"header_text"`   // static "Currently over:" caption
	LocationText string `json:"location_text"` // resolved place label
	LegendText   string `json:"legend_text"`   // static visibility legend
}

// Scene is the render-ready description handed to the drawing layer.
// It is created fresh every tick and owned solely by the caller of
// Compose.
type Scene struct {
	LineLayers  []LineLayer `json:"line_layers"`
	MainMarker  Marker      `json:"main_marker"`
	InsetMarker Marker      `json:"inset_marker"`
	Annotations Annotations `json:"annotations"`
	ComposedAt  string      `json:"composed_at"`
}
