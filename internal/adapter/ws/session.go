package ws

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"catering-dispatch/internal/adapter/logger"
	"catering-dispatch/internal/domain"
	"catering-dispatch/internal/interfaces"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 20
	sendBufferSize = 32
)

// Session handles one viewer connection: it validates inbound update
// requests, applies them through the store as manual-origin changes and
// triggers the broadcast that converges every viewer, originator included.
type Session struct {
	hub    *Hub
	conn   *websocket.Conn
	store  interfaces.OrderStore
	logger logger.Logger

	pingInterval time.Duration
	send         chan []byte
}

func newSession(hub *Hub, conn *websocket.Conn, store interfaces.OrderStore, lgr logger.Logger, pingInterval time.Duration) *Session {
	return &Session{
		hub:          hub,
		conn:         conn,
		store:        store,
		logger:       lgr,
		pingInterval: pingInterval,
		send:         make(chan []byte, sendBufferSize),
	}
}

// pongWait is how long a connection may go without answering a probe
// before it is considered half-open and terminated.
func (s *Session) pongWait() time.Duration {
	return s.pingInterval + 10*time.Second
}

// readPump consumes inbound messages until the connection dies, then
// unregisters the session. Malformed messages are dropped, never fatal.
func (s *Session) readPump() {
	defer func() {
		s.hub.drop(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.pongWait()))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(s.pongWait()))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("read_failed", "Connection read failed", "", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return
		}
		s.handleMessage(data)
	}
}

func (s *Session) handleMessage(data []byte) {
	req, err := interfaces.DecodeInbound(data)
	if err != nil {
		s.logger.Error("message_dropped", "Dropping malformed client message", "", nil, err)
		return
	}

	order, err := s.store.ApplyUpdate(req.OrderID, req.Updates, interfaces.OriginManual)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			s.logger.Error("order_not_found", "Update for unknown order", "", map[string]interface{}{
				"order_id": req.OrderID,
			}, err)
			return
		}
		s.logger.Error("order_update_failed", "Failed to apply order update", "", map[string]interface{}{
			"order_id": req.OrderID,
		}, err)
		return
	}

	s.logger.Debug("order_updated", "Applied client order update", "", map[string]interface{}{
		"order_id": order.ID,
	})
	s.hub.Broadcast(interfaces.NewOrderUpdate(order))
}

// writePump drains the send queue and probes the peer on the configured
// interval. A failed write or missed probe ends the session.
func (s *Session) writePump() {
	ticker := time.NewTicker(s.pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
