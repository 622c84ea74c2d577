package tracker

import (
	"github.com/skywatch/orbitrack/internal/websocket"
	"github.com/skywatch/orbitrack/pkg/logger"
)

// WebSocketHandler handles incoming WebSocket messages for track data
type WebSocketHandler struct {
	service *Service
	logger  *logger.Logger
}

// NewWebSocketHandler creates a new WebSocket message handler
func NewWebSocketHandler(service *Service, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		service: service,
		logger:  log.Named("track-ws-handler"),
	}
}

// HandleMessage handles incoming WebSocket messages
func (h *WebSocketHandler) HandleMessage(client *websocket.Client, messageType string, data map[string]any) error {
	switch messageType {
	case websocket.MessageTypeTrackBulkRequest:
		return h.handleBulkRequest(client)
	default:
		h.logger.Debug("Unhandled message type", logger.String("type", messageType))
		return nil
	}
}

// handleBulkRequest sends the full track state and the latest scene to
// the requesting client. New clients use this to catch up before the
// next scene_update push.
func (h *WebSocketHandler) handleBulkRequest(client *websocket.Client) error {
	h.logger.Debug("Handling bulk track data request")

	state := h.service.TrackState()
	readouts, _ := h.service.CurrentReadouts()

	message := &websocket.Message{
		Type: websocket.MessageTypeTrackBulkResponse,
		Data: map[string]any{
			"track":    state,
			"scene":    h.service.CurrentScene(),
			"readouts": readouts,
			"count":    len(state.Lat),
		},
	}

	if !client.SendMessage(message) {
		h.logger.Warn("Client send channel full, dropping bulk response")
	}
	return nil
}
