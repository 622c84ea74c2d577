package track

import (
	"github.com/skywatch/orbitrack/internal/telemetry"
)

// Segment is a maximal contiguous run of samples sharing one visibility
// value. Samples is a sub-slice of the segmented input.
type Segment struct {
	Visibility telemetry.Visibility `json:"visibility"`
	Samples    []telemetry.Sample   `json:"samples"`
}

// Segments partitions the input into maximal contiguous runs by
// visibility, preserving order. The concatenation of all returned
// segments' samples reproduces the input exactly; adjacent segments
// always differ in visibility; every segment is non-empty. An empty
// input yields a nil result. Pure function: identical input always
// yields identical boundaries.
func Segments(samples []telemetry.Sample) []Segment {
	if len(samples) == 0 {
		return nil
	}

	var segments []Segment
	start := 0
	for i := 1; i < len(samples); i++ {
		if samples[i].Visibility != samples[i-1].Visibility {
			segments = append(segments, Segment{
				Visibility: samples[start].Visibility,
				Samples:    samples[start:i],
			})
			start = i
		}
	}
	segments = append(segments, Segment{
		Visibility: samples[start].Visibility,
		Samples:    samples[start:],
	})

	return segments
}
