package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywatch/orbitrack/internal/telemetry"
)

func mkSequence(visibilities ...telemetry.Visibility) []telemetry.Sample {
	samples := make([]telemetry.Sample, len(visibilities))
	for i, vis := range visibilities {
		samples[i] = mkSample(i, vis)
	}
	return samples
}

// assertPartitionLaw checks that the segments reproduce the input
// exactly, every segment is non-empty and visibility-homogeneous, and
// adjacent segments differ in visibility.
func assertPartitionLaw(t *testing.T, input []telemetry.Sample, segments []Segment) {
	t.Helper()

	var rebuilt []telemetry.Sample
	for i, seg := range segments {
		require.NotEmpty(t, seg.Samples, "segment %d is empty", i)
		for _, s := range seg.Samples {
			assert.Equal(t, seg.Visibility, s.Visibility, "segment %d mixes visibilities", i)
		}
		if i > 0 {
			assert.NotEqual(t, segments[i-1].Visibility, seg.Visibility,
				"adjacent segments %d and %d share a visibility", i-1, i)
		}
		rebuilt = append(rebuilt, seg.Samples...)
	}
	assert.Equal(t, input, rebuilt, "concatenated segments must reproduce the input")
}

func TestSegmentsEmptyInput(t *testing.T) {
	assert.Nil(t, Segments(nil))
	assert.Nil(t, Segments([]telemetry.Sample{}))
}

func TestSegmentsSingleRun(t *testing.T) {
	input := mkSequence(
		telemetry.VisibilityEclipsed,
		telemetry.VisibilityEclipsed,
		telemetry.VisibilityEclipsed,
	)

	segments := Segments(input)
	require.Len(t, segments, 1)
	assert.Equal(t, telemetry.VisibilityEclipsed, segments[0].Visibility)
	assertPartitionLaw(t, input, segments)
}

func TestSegmentsBoundaries(t *testing.T) {
	input := mkSequence(
		telemetry.VisibilityDaylight,
		telemetry.VisibilityDaylight,
		telemetry.VisibilityVisible,
		telemetry.VisibilityEclipsed,
		telemetry.VisibilityEclipsed,
		telemetry.VisibilityDaylight,
	)

	segments := Segments(input)
	require.Len(t, segments, 4)
	assert.Equal(t, telemetry.VisibilityDaylight, segments[0].Visibility)
	assert.Len(t, segments[0].Samples, 2)
	assert.Equal(t, telemetry.VisibilityVisible, segments[1].Visibility)
	assert.Len(t, segments[1].Samples, 1)
	assert.Equal(t, telemetry.VisibilityEclipsed, segments[2].Visibility)
	assert.Len(t, segments[2].Samples, 2)
	assert.Equal(t, telemetry.VisibilityDaylight, segments[3].Visibility)
	assert.Len(t, segments[3].Samples, 1)
	assertPartitionLaw(t, input, segments)
}

func TestSegmentsUnknownVisibilityKept(t *testing.T) {
	// Unknown visibility still forms its own segment; dropping from the
	// rendered line layers is the composer's decision, not the
	// segmenter's
	input := mkSequence(
		telemetry.VisibilityDaylight,
		telemetry.VisibilityUnknown,
		telemetry.VisibilityDaylight,
	)

	segments := Segments(input)
	require.Len(t, segments, 3)
	assert.Equal(t, telemetry.VisibilityUnknown, segments[1].Visibility)
	assertPartitionLaw(t, input, segments)
}

func TestSegmentsDeterminism(t *testing.T) {
	input := mkSequence(
		telemetry.VisibilityVisible,
		telemetry.VisibilityVisible,
		telemetry.VisibilityEclipsed,
		telemetry.VisibilityDaylight,
		telemetry.VisibilityDaylight,
		telemetry.VisibilityDaylight,
		telemetry.VisibilityEclipsed,
	)

	assert.Equal(t, Segments(input), Segments(input))
}

func TestSegmentsAfterEviction(t *testing.T) {
	// Scenario from the tracking pipeline: capacity 3, appends
	// [daylight, daylight, visible] then a fourth eclipsed sample
	b := NewBuffer(3)
	b.Append(mkSample(0, telemetry.VisibilityDaylight))
	b.Append(mkSample(1, telemetry.VisibilityDaylight))
	b.Append(mkSample(2, telemetry.VisibilityVisible))

	segments := Segments(b.Snapshot())
	require.Len(t, segments, 2)
	assert.Equal(t, telemetry.VisibilityDaylight, segments[0].Visibility)
	assert.Len(t, segments[0].Samples, 2)
	assert.Equal(t, telemetry.VisibilityVisible, segments[1].Visibility)
	assert.Len(t, segments[1].Samples, 1)

	// Appending a fourth sample evicts s0; each remaining sample now
	// forms its own segment
	b.Append(mkSample(3, telemetry.VisibilityEclipsed))

	snapshot := b.Snapshot()
	segments = Segments(snapshot)
	require.Len(t, segments, 3)
	assert.Equal(t, telemetry.VisibilityDaylight, segments[0].Visibility)
	assert.Equal(t, float64(1), segments[0].Samples[0].Latitude)
	assert.Equal(t, telemetry.VisibilityVisible, segments[1].Visibility)
	assert.Equal(t, float64(2), segments[1].Samples[0].Latitude)
	assert.Equal(t, telemetry.VisibilityEclipsed, segments[2].Visibility)
	assert.Equal(t, float64(3), segments[2].Samples[0].Latitude)
	assertPartitionLaw(t, snapshot, segments)
}
