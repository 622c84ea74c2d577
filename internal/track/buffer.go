package track

import (
	"github.com/skywatch/orbitrack/internal/telemetry"
)

// DefaultCapacity keeps roughly two orbital periods of history at the
// default 10s fetch cadence. The buffer is bounded by count, not by age.
const DefaultCapacity = 1080

// Buffer is a fixed-capacity, insertion-ordered history of telemetry
// samples. When full, appending evicts the single oldest sample (strict
// FIFO). It is the pipeline's only mutable shared state and expects a
// single writer: readers must use Snapshot or State, never the live
// structure.
type Buffer struct {
	samples []telemetry.Sample // ring storage, len == capacity
	head    int                // index of the oldest sample
	size    int
}

// NewBuffer creates a buffer with the given capacity. A non-positive
// capacity falls back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		samples: make([]telemetry.Sample, capacity),
	}
}

// Append inserts a sample, evicting the oldest one first if the buffer
// is at capacity. It never blocks and never fails.
func (b *Buffer) Append(sample telemetry.Sample) {
	if b.size == len(b.samples) {
		// Overwrite the oldest slot and advance the head
		b.samples[b.head] = sample
		b.head = (b.head + 1) % len(b.samples)
		return
	}
	b.samples[(b.head+b.size)%len(b.samples)] = sample
	b.size++
}

// Len returns the number of buffered samples
func (b *Buffer) Len() int {
	return b.size
}

// Capacity returns the fixed capacity chosen at construction
func (b *Buffer) Capacity() int {
	return len(b.samples)
}

// Snapshot returns a point-in-time copy of the buffer contents in
// arrival order, oldest first. The copy is independent of the buffer so
// segmentation and rendering cannot race with later appends.
func (b *Buffer) Snapshot() []telemetry.Sample {
	out := make([]telemetry.Sample, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.samples[(b.head+i)%len(b.samples)]
	}
	return out
}

// State is the parallel-array interop form of a buffer snapshot, used
// at the stateless rendering boundary. The three slices always have
// equal length, at most the buffer capacity.
type State struct {
	Lat []float64 `json:"lat"`
	Lon []float64 `json:"lon"`
	Vis []string  `json:"vis"`
}

// State returns the buffer contents as parallel arrays in arrival order
func (b *Buffer) State() State {
	state := State{
		Lat: make([]float64, b.size),
		Lon: make([]float64, b.size),
		Vis: make([]string, b.size),
	}
	for i := 0; i < b.size; i++ {
		s := b.samples[(b.head+i)%len(b.samples)]
		state.Lat[i] = s.Latitude
		state.Lon[i] = s.Longitude
		state.Vis[i] = string(s.Visibility)
	}
	return state
}
