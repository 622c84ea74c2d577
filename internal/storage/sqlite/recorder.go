package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/skywatch/orbitrack/internal/telemetry"
	"github.com/skywatch/orbitrack/pkg/logger"
)

// SampleRecorder is a SQLite-backed, insert-only log of the samples
// appended during this run. It exists for export and inspection: the
// database is created fresh per run and is never read back into the
// pipeline, so no track state survives a restart.
type SampleRecorder struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewSampleRecorder creates a new recorder writing to dbPath
func NewSampleRecorder(dbPath string, log *logger.Logger) (*SampleRecorder, error) {
	recorderLogger := log.Named("sqlite")

	recorderLogger.Info("Initializing SQLite sample recorder",
		logger.String("path", dbPath))

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SampleRecorder{
		db:     db,
		logger: recorderLogger,
	}, nil
}

// initSchema creates the samples table
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			observed_at TIMESTAMP NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			altitude REAL NOT NULL,
			velocity REAL NOT NULL,
			visibility TEXT NOT NULL,
			location TEXT,
			recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create samples table: %w", err)
	}
	return nil
}

// RecordSample appends one sample to the session log
func (r *SampleRecorder) RecordSample(sample telemetry.Sample, location string) error {
	_, err := r.db.Exec(`
		INSERT INTO samples (observed_at, latitude, longitude, altitude, velocity, visibility, location)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sample.ObservedAt.UTC(),
		sample.Latitude,
		sample.Longitude,
		sample.Altitude,
		sample.Velocity,
		string(sample.Visibility),
		location,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}

	r.logger.Debug("Recorded sample",
		logger.Time("observed_at", sample.ObservedAt),
		logger.String("visibility", string(sample.Visibility)))

	return nil
}

// Count returns the number of recorded samples
func (r *SampleRecorder) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM samples").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return n, nil
}

// Close closes the database connection
func (r *SampleRecorder) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
