package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"catering-dispatch/internal/adapter/logger"
	"catering-dispatch/internal/domain"
	"catering-dispatch/internal/interfaces"
)

// Handler upgrades HTTP requests to viewer sessions.
type Handler struct {
	hub          *Hub
	store        interfaces.OrderStore
	drivers      []domain.Driver
	logger       logger.Logger
	pingInterval time.Duration
	upgrader     websocket.Upgrader
}

func NewHandler(hub *Hub, store interfaces.OrderStore, drivers []domain.Driver, lgr logger.Logger, pingInterval time.Duration) *Handler {
	return &Handler{
		hub:          hub,
		store:        store,
		drivers:      drivers,
		logger:       lgr,
		pingInterval: pingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Viewers are served from a separate origin in development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the connection, registers the session and pushes the
// full snapshot before any client message is read.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("upgrade_failed", "WebSocket upgrade failed", "", nil, err)
		return
	}

	s := newSession(h.hub, conn, h.store, h.logger, h.pingInterval)
	h.hub.register <- s

	initial, err := json.Marshal(interfaces.NewInitialData(h.store.GetAll(), h.drivers))
	if err != nil {
		h.logger.Error("initial_data_failed", "Failed to marshal initial snapshot", "", nil, err)
	} else {
		s.send <- initial
	}

	go s.writePump()
	go s.readPump()
}
