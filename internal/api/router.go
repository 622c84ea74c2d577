package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/skywatch/orbitrack/internal/config"
	"github.com/skywatch/orbitrack/internal/tracker"
	"github.com/skywatch/orbitrack/internal/websocket"
	"github.com/skywatch/orbitrack/pkg/logger"
)

// Router builds the HTTP routing tree
type Router struct {
	handler  *Handler
	config   *config.Config
	logger   *logger.Logger
	wsServer *websocket.Server
}

// NewRouter creates a new API router
func NewRouter(service *tracker.Service, cfg *config.Config, log *logger.Logger, wsServer *websocket.Server) *Router {
	return &Router{
		handler:  NewHandler(service, cfg, log),
		config:   cfg,
		logger:   log.Named("api-router"),
		wsServer: wsServer,
	}
}

// Routes returns the configured HTTP handler
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(rt.corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", rt.handler.GetState)
		r.Get("/track", rt.handler.GetTrack)
		r.Get("/track.geojson", rt.handler.GetTrackGeoJSON)
		r.Get("/scene", rt.handler.GetScene)
		r.Get("/health", rt.handler.GetHealth)
		r.Get("/config", rt.handler.GetConfig)
	})

	r.Get("/ws", rt.wsServer.HandleConnection)

	if rt.config.Server.StaticFilesDir != "" {
		staticHandler := NewStaticFileHandler(rt.config.Server.StaticFilesDir, rt.logger)
		r.NotFound(staticHandler.ServeHTTP)
	}

	return r
}

// corsMiddleware applies the configured CORS allowed origins
func (rt *Router) corsMiddleware(next http.Handler) http.Handler {
	origins := rt.config.Server.CORSAllowedOrigins

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			for _, allowed := range origins {
				if allowed == "*" || allowed == origin {
					w.Header().Set("Access-Control-Allow-Origin", allowed)
					break
				}
			}
		}

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
