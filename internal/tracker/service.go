package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skywatch/orbitrack/internal/geo"
	"github.com/skywatch/orbitrack/internal/render"
	"github.com/skywatch/orbitrack/internal/telemetry"
	"github.com/skywatch/orbitrack/internal/track"
	"github.com/skywatch/orbitrack/internal/websocket"
	"github.com/skywatch/orbitrack/pkg/logger"
)

// Fetcher fetches current telemetry for the tracked object
type Fetcher interface {
	Fetch(ctx context.Context) (*telemetry.Sample, error)
}

// Resolver resolves a coordinate to a place label. Implementations must
// be total: they degrade internally instead of returning errors.
type Resolver interface {
	Resolve(ctx context.Context, lat, lon float64) geo.ResolvedLocation
}

// Storage records appended samples for the current session. Recorder
// failures are logged and never abort a tick.
type Storage interface {
	RecordSample(sample telemetry.Sample, location string) error
	Count() (int, error)
}

// Publisher pushes per-tick updates to connected UI clients
type Publisher interface {
	Broadcast(message *websocket.Message)
}

// Readouts are the four scalar displays, formatted to two decimal places
type Readouts struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Altitude  string `json:"altitude"`
	Velocity  string `json:"velocity"`
}

// Status reports the outcome of the most recent tick
type Status struct {
	LastFetchAt time.Time `json:"last_fetch_at"`
	LastFetchOK bool      `json:"last_fetch_ok"`
	TickCount   int64     `json:"tick_count"`
}

// Service owns the acquisition-and-track-maintenance pipeline. A single
// goroutine runs ticks serially at a fixed cadence, so ticks never
// overlap and the track buffer has exactly one accessor; the API and
// WebSocket layers only ever read the per-tick copies cached under mu.
type Service struct {
	fetcher       Fetcher
	resolver      Resolver
	storage       Storage // may be nil when recording is disabled
	buffer        *track.Buffer
	composer      *render.Composer
	publisher     Publisher // may be nil (e.g., in tests)
	fetchInterval time.Duration
	logger        *logger.Logger

	mu         sync.RWMutex
	scene      *render.Scene
	readouts   *Readouts
	current    *telemetry.Sample
	location   geo.ResolvedLocation
	segments   []track.Segment
	trackState track.State
	status     Status

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewService creates the pipeline service
func NewService(
	fetcher Fetcher,
	resolver Resolver,
	buffer *track.Buffer,
	composer *render.Composer,
	storage Storage,
	publisher Publisher,
	fetchInterval time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		fetcher:       fetcher,
		resolver:      resolver,
		buffer:        buffer,
		composer:      composer,
		storage:       storage,
		publisher:     publisher,
		fetchInterval: fetchInterval,
		logger:        log.Named("tracker-service"),
		stopCh:        make(chan struct{}),
	}
}

// Start runs an initial tick and begins the background fetch loop
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting tracker service",
		logger.Duration("fetch_interval", s.fetchInterval),
		logger.Int("track_capacity", s.buffer.Capacity()),
	)

	if _, err := s.Tick(ctx); err != nil {
		// A failed first tick is not fatal; the loop self-heals
		s.logger.Warn("Initial telemetry fetch failed", logger.Error(err))
	}

	s.wg.Add(1)
	go s.fetchLoop(ctx)

	return nil
}

// Stop stops the background fetch loop
func (s *Service) Stop() {
	s.logger.Info("Stopping tracker service")
	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("Tracker service stopped")
}

// fetchLoop runs one tick per interval until stopped
func (s *Service) fetchLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.fetchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				s.logger.Warn("Tick skipped", logger.Error(err))
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Tick runs one pass of the pipeline: fetch, resolve, append, segment,
// compose, record, broadcast. If the telemetry fetch fails the tick
// aborts with an error and leaves all state untouched — no scene is
// produced and the caller's visible output does not change. Geocode
// failures never abort: the resolver degrades to its fallback label.
func (s *Service) Tick(ctx context.Context) (*render.Scene, error) {
	sample, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.setFetchStatus(false)
		if kind, ok := telemetry.ErrorKind(err); ok {
			s.logger.Warn("Telemetry fetch failed, skipping tick",
				logger.String("kind", string(kind)),
				logger.Error(err))
		} else {
			s.logger.Warn("Telemetry fetch failed, skipping tick", logger.Error(err))
		}
		return nil, err
	}

	location := s.resolver.Resolve(ctx, sample.Latitude, sample.Longitude)

	s.buffer.Append(*sample)
	snapshot := s.buffer.Snapshot()
	segments := track.Segments(snapshot)

	now := time.Now().UTC()
	scene := s.composer.Compose(*sample, location, segments, now)
	readouts := formatReadouts(sample)
	state := s.buffer.State()

	s.mu.Lock()
	s.scene = scene
	s.readouts = readouts
	s.current = sample
	s.location = location
	s.segments = segments
	s.trackState = state
	s.status.LastFetchAt = now
	s.status.LastFetchOK = true
	s.status.TickCount++
	s.mu.Unlock()

	if s.storage != nil {
		if err := s.storage.RecordSample(*sample, location.Label); err != nil {
			s.logger.Error("Failed to record sample", logger.Error(err))
		}
	}

	if s.publisher != nil {
		s.publisher.Broadcast(&websocket.Message{
			Type: websocket.MessageTypeSceneUpdate,
			Data: map[string]any{
				"scene":    scene,
				"readouts": readouts,
				"track":    state,
				"location": location,
			},
		})
	}

	s.logger.Debug("Tick completed",
		logger.Float64("latitude", sample.Latitude),
		logger.Float64("longitude", sample.Longitude),
		logger.String("visibility", string(sample.Visibility)),
		logger.String("location", location.Label),
		logger.Int("track_len", s.buffer.Len()),
		logger.Int("segments", len(segments)),
	)

	return scene, nil
}

// formatReadouts renders the four scalar displays to two decimal places
func formatReadouts(sample *telemetry.Sample) *Readouts {
	return &Readouts{
		Latitude:  fmt.Sprintf("%.2f", sample.Latitude),
		Longitude: fmt.Sprintf("%.2f", sample.Longitude),
		Altitude:  fmt.Sprintf("%.2f", sample.Altitude),
		Velocity:  fmt.Sprintf("%.2f", sample.Velocity),
	}
}

func (s *Service) setFetchStatus(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastFetchAt = time.Now().UTC()
	s.status.LastFetchOK = ok
}

// CurrentScene returns the scene from the last successful tick, or nil
// if no tick has succeeded yet
func (s *Service) CurrentScene() *render.Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene
}

// CurrentReadouts returns the readouts from the last successful tick
func (s *Service) CurrentReadouts() (*Readouts, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readouts, s.readouts != nil
}

// CurrentSample returns the most recent telemetry sample
func (s *Service) CurrentSample() (*telemetry.Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// CurrentLocation returns the most recent resolved location
func (s *Service) CurrentLocation() geo.ResolvedLocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location
}

// Segments returns the segment partition from the last successful tick
func (s *Service) Segments() []track.Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.segments
}

// TrackState returns the parallel-array track snapshot from the last
// successful tick
func (s *Service) TrackState() track.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trackState
}

// Status returns the outcome of the most recent tick
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// RecordedCount returns the number of samples written to the session
// recorder. The second return value is false when recording is disabled
// or the recorder cannot be read.
func (s *Service) RecordedCount() (int, bool) {
	if s.storage == nil {
		return 0, false
	}
	n, err := s.storage.Count()
	if err != nil {
		s.logger.Error("Failed to count recorded samples", logger.Error(err))
		return 0, false
	}
	return n, true
}

// TrackCapacity returns the fixed capacity of the track buffer
func (s *Service) TrackCapacity() int {
	return s.buffer.Capacity()
}

// TrackLen returns the current number of buffered samples
func (s *Service) TrackLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trackState.Lat)
}
