// Package ws carries the viewer-facing WebSocket transport: the
// broadcast hub, the per-connection protocol session and the HTTP
// upgrade handler.
package ws

import (
	"context"
	"encoding/json"

	"catering-dispatch/internal/adapter/logger"
	"catering-dispatch/internal/interfaces"
)

// Hub owns the set of live viewer sessions and fans messages out to
// them. All registry mutations and broadcast iterations happen on the
// Run goroutine, so no session set locking is needed.
type Hub struct {
	logger logger.Logger

	register   chan *Session
	unregister chan *Session
	broadcast  chan []byte
	done       chan struct{}

	sessions map[*Session]bool
}

func NewHub(lgr logger.Logger) *Hub {
	return &Hub{
		logger:     lgr,
		register:   make(chan *Session),
		unregister: make(chan *Session),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
		sessions:   make(map[*Session]bool),
	}
}

// Run processes registry and broadcast events until the context is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for s := range h.sessions {
				close(s.send)
				delete(h.sessions, s)
			}
			return

		case s := <-h.register:
			h.sessions[s] = true
			h.logger.Info("client_connected", "Viewer connected", "", map[string]interface{}{
				"sessions": len(h.sessions),
			})

		case s := <-h.unregister:
			if _, ok := h.sessions[s]; ok {
				delete(h.sessions, s)
				close(s.send)
				h.logger.Info("client_disconnected", "Viewer disconnected", "", map[string]interface{}{
					"sessions": len(h.sessions),
				})
			}

		case msg := <-h.broadcast:
			for s := range h.sessions {
				select {
				case s.send <- msg:
				default:
					// Slow or wedged session: skip it for this message.
					// Its own pumps tear it down, not the hub.
					h.logger.Debug("broadcast_skipped", "Session send buffer full", "", nil)
				}
			}
		}
	}
}

// Broadcast marshals the message once and queues it for every live
// session. Fire-and-forget.
func (h *Hub) Broadcast(msg interfaces.Envelope) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("broadcast_marshal_failed", "Failed to marshal broadcast message", "", map[string]interface{}{
			"type": string(msg.Type),
		}, err)
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// drop unregisters a session. Safe to call after Run has exited.
func (h *Hub) drop(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}
