package telemetry

import (
	"time"
)

// Visibility classifies whether the tracked object is in direct sunlight,
// observable from the ground at night, or in the Earth's shadow.
type Visibility string

const (
	VisibilityDaylight Visibility = "daylight"
	VisibilityVisible  Visibility = "visible"
	VisibilityEclipsed Visibility = "eclipsed"
	VisibilityUnknown  Visibility = "unknown"
)

// ParseVisibility maps a raw visibility string from the telemetry source
// to one of the known classifications. Anything unrecognized maps to
// VisibilityUnknown rather than failing.
func ParseVisibility(s string) Visibility {
	switch Visibility(s) {
	case VisibilityDaylight, VisibilityVisible, VisibilityEclipsed:
		return Visibility(s)
	default:
		return VisibilityUnknown
	}
}

// Sample is a single normalized telemetry observation. It is immutable
// once constructed.
type Sample struct {
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Altitude   float64    `json:"altitude"` // km
	Velocity   float64    `json:"velocity"` // km/h
	Visibility Visibility `json:"visibility"`
	ObservedAt time.Time  `json:"observed_at"`
}

// rawSample mirrors the telemetry endpoint's JSON response. Required
// fields are pointers so that absence is distinguishable from zero;
// extra fields in the response are ignored.
type rawSample struct {
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Altitude   *float64 `json:"altitude"`
	Velocity   *float64 `json:"velocity"`
	Visibility *string  `json:"visibility"`
	Timestamp  *int64   `json:"timestamp"`
}
