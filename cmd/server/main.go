package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/skywatch/orbitrack/internal/api"
	"github.com/skywatch/orbitrack/internal/config"
	"github.com/skywatch/orbitrack/internal/geo"
	"github.com/skywatch/orbitrack/internal/render"
	"github.com/skywatch/orbitrack/internal/storage/sqlite"
	"github.com/skywatch/orbitrack/internal/telemetry"
	"github.com/skywatch/orbitrack/internal/track"
	"github.com/skywatch/orbitrack/internal/tracker"
	"github.com/skywatch/orbitrack/internal/websocket"
	"github.com/skywatch/orbitrack/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting orbitrack server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	// Pipeline components
	client := telemetry.NewClient(
		cfg.Telemetry.SourceURL,
		time.Duration(cfg.Telemetry.RequestTimeoutSecs)*time.Second,
		log,
	)
	resolver := geo.NewResolver(
		cfg.Geocode.SourceURL,
		time.Duration(cfg.Geocode.RequestTimeoutSecs)*time.Second,
		log,
	)
	buffer := track.NewBuffer(cfg.Track.Capacity)
	composer := render.NewComposer(
		cfg.Render.MarkerIcon,
		cfg.Render.MarkerIconSize,
		cfg.Render.InsetMarkerSize,
		log,
	)

	// Optional session recorder; one fresh database per run, never read
	// back at startup
	var storage tracker.Storage
	var recorder *sqlite.SampleRecorder
	if cfg.Storage.Enabled {
		if err := os.MkdirAll(cfg.Storage.SQLiteBasePath, 0755); err != nil {
			log.Error("Failed to create database directory", logger.Error(err), logger.String("path", cfg.Storage.SQLiteBasePath))
			os.Exit(1)
		}

		dbFilename := fmt.Sprintf("orbitrack-%s.db", time.Now().UTC().Format("2006-01-02-150405"))
		dbPath := filepath.Join(cfg.Storage.SQLiteBasePath, dbFilename)

		recorder, err = sqlite.NewSampleRecorder(dbPath, log)
		if err != nil {
			log.Error("Failed to create SQLite recorder", logger.Error(err))
			os.Exit(1)
		}
		defer recorder.Close()
		storage = recorder
		log.Info("Session recording enabled", logger.String("path", dbPath))
	}

	// WebSocket server
	wsServer := websocket.NewServer(log)
	go wsServer.Run()

	// Tracker service
	service := tracker.NewService(
		client,
		resolver,
		buffer,
		composer,
		storage,
		wsServer,
		time.Duration(cfg.Telemetry.FetchIntervalSecs)*time.Second,
		log,
	)

	wsHandler := tracker.NewWebSocketHandler(service, log)
	wsServer.SetMessageHandler(wsHandler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := service.Start(ctx); err != nil {
		log.Error("Failed to start telemetry service", logger.Error(err))
		os.Exit(1)
	}

	// HTTP server
	router := api.NewRouter(service, cfg, log, wsServer)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", logger.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	log.Info("Stopping telemetry service...")
	service.Stop()
	log.Info("Telemetry service stopped.")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	}

	log.Info("Server fully stopped")
}
