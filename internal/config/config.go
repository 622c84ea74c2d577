package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server    ServerConfig    `toml:"server"`    // HTTP server settings
	Telemetry TelemetryConfig `toml:"telemetry"` // Telemetry data source settings
	Geocode   GeocodeConfig   `toml:"geocode"`   // Reverse-geocode enrichment settings
	Track     TrackConfig     `toml:"track"`     // Track history buffer settings
	Render    RenderConfig    `toml:"render"`    // Scene composition settings
	Storage   StorageConfig   `toml:"storage"`   // Session recording settings
	Logging   LoggingConfig   `toml:"logging"`   // Application logging settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
	StaticFilesDir     string   `toml:"static_files_dir"`      // Directory to serve static files from (e.g., "www"); empty disables static serving
}

// TelemetryConfig contains the telemetry data source configuration
type TelemetryConfig struct {
	SourceURL          string `toml:"source_url"`              // URL of the telemetry endpoint
	FetchIntervalSecs  int    `toml:"fetch_interval_seconds"`  // How often to fetch new telemetry (in seconds)
	RequestTimeoutSecs int    `toml:"request_timeout_seconds"` // HTTP timeout for telemetry requests in seconds
}

// GeocodeConfig contains the reverse-geocode enrichment configuration.
// The geocode call is a secondary enrichment, so its timeout should be
// shorter than the telemetry timeout.
type GeocodeConfig struct {
	SourceURL          string `toml:"source_url"`              // URL template for the reverse-geocode endpoint with two %f placeholders (lat, lon)
	RequestTimeoutSecs int    `toml:"request_timeout_seconds"` // HTTP timeout for geocode requests in seconds
}

// TrackConfig contains track history buffer configuration
type TrackConfig struct {
	Capacity int `toml:"capacity"` // Maximum number of samples kept in the track buffer (bounded by count, not age)
}

// RenderConfig contains scene composition configuration
type RenderConfig struct {
	MarkerIcon      string  `toml:"marker_icon"`       // Text icon for the main current-position marker
	MarkerIconSize  float64 `toml:"marker_icon_size"`  // Font size of the main marker icon
	InsetMarkerSize float64 `toml:"inset_marker_size"` // Dot size of the inset overview marker
}

// StorageConfig contains session recording configuration
type StorageConfig struct {
	Enabled        bool   `toml:"enabled"`          // Enable sqlite session recording of appended samples
	SQLiteBasePath string `toml:"sqlite_base_path"` // Base path for SQLite database files (filename is generated per run)
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// DefaultConfig returns a configuration populated with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8080,
			Host:               "127.0.0.1",
			CORSAllowedOrigins: []string{"*"},
			ReadTimeoutSecs:    30,
			WriteTimeoutSecs:   30,
			IdleTimeoutSecs:    60,
		},
		Telemetry: TelemetryConfig{
			SourceURL:          "https://api.wheretheiss.at/v1/satellites/25544",
			FetchIntervalSecs:  10,
			RequestTimeoutSecs: 10,
		},
		Geocode: GeocodeConfig{
			SourceURL:          "https://api.wheretheiss.at/v1/coordinates/%f,%f",
			RequestTimeoutSecs: 6,
		},
		Track: TrackConfig{
			// Roughly two orbital periods at the default 10s cadence
			Capacity: 1080,
		},
		Render: RenderConfig{
			MarkerIcon:      "🛰",
			MarkerIconSize:  28,
			InsetMarkerSize: 8,
		},
		Storage: StorageConfig{
			Enabled:        false,
			SQLiteBasePath: "data",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads the configuration from the specified TOML file,
// layered on top of the defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return cfg, nil
}

// LoadWithFallback loads configuration from the given path if provided,
// otherwise searches the conventional locations. If no file is found,
// the defaults are returned.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	for _, candidate := range []string{"configs/config.toml", "config.toml"} {
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
	}

	return DefaultConfig(), nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Telemetry.SourceURL == "" {
		return fmt.Errorf("telemetry source_url cannot be empty")
	}
	if c.Telemetry.FetchIntervalSecs <= 0 {
		return fmt.Errorf("telemetry fetch_interval_seconds must be greater than 0")
	}
	if c.Telemetry.RequestTimeoutSecs <= 0 {
		return fmt.Errorf("telemetry request_timeout_seconds must be greater than 0")
	}

	if c.Geocode.SourceURL == "" {
		return fmt.Errorf("geocode source_url cannot be empty")
	}
	if c.Geocode.RequestTimeoutSecs <= 0 {
		return fmt.Errorf("geocode request_timeout_seconds must be greater than 0")
	}

	if c.Track.Capacity <= 0 {
		return fmt.Errorf("track capacity must be greater than 0, got %d", c.Track.Capacity)
	}

	if c.Storage.Enabled && c.Storage.SQLiteBasePath == "" {
		return fmt.Errorf("storage sqlite_base_path cannot be empty when storage is enabled")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}

	return nil
}
