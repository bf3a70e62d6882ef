package interfaces

import (
	"encoding/json"
	"fmt"

	"catering-dispatch/internal/domain"
)

// MessageType is the closed set of wire message kinds. Messages are
// decoded once at the transport boundary; anything outside this set is
// dropped there.
type MessageType string

const (
	MessageInitialData      MessageType = "INITIAL_DATA"
	MessageOrderUpdate      MessageType = "ORDER_UPDATE"
	MessageTravelTimeUpdate MessageType = "TRAVEL_TIME_UPDATE"
)

// Envelope is the JSON message exchanged over the WebSocket. Which fields
// are populated depends on Type and direction: ORDER_UPDATE carries
// OrderID+Updates client to server and the full Order server to client.
type Envelope struct {
	Type        MessageType         `json:"type"`
	Orders      []*domain.Order     `json:"orders,omitempty"`
	Drivers     []domain.Driver     `json:"drivers,omitempty"`
	Order       *domain.Order       `json:"order,omitempty"`
	OrderID     string              `json:"orderId,omitempty"`
	Updates     *domain.OrderUpdate `json:"updates,omitempty"`
	TravelTimes map[string]int      `json:"travelTimes,omitempty"`
}

// NewInitialData builds the full-snapshot message sent once per connection.
func NewInitialData(orders []*domain.Order, drivers []domain.Driver) Envelope {
	return Envelope{Type: MessageInitialData, Orders: orders, Drivers: drivers}
}

// NewOrderUpdate builds the single-order broadcast message.
func NewOrderUpdate(order *domain.Order) Envelope {
	return Envelope{Type: MessageOrderUpdate, Order: order}
}

// NewTravelTimeUpdate builds the batched refresh message: the minute map
// of changed orders plus the full snapshot for convenience.
func NewTravelTimeUpdate(travelTimes map[string]int, orders []*domain.Order) Envelope {
	return Envelope{Type: MessageTravelTimeUpdate, TravelTimes: travelTimes, Orders: orders}
}

// OrderUpdateRequest is the only inbound request a viewer may send.
type OrderUpdateRequest struct {
	OrderID string
	Updates domain.OrderUpdate
}

// DecodeInbound parses a raw client message. Malformed payloads and
// unknown message types are errors for the caller to log and drop; they
// must never close the connection.
func DecodeInbound(data []byte) (*OrderUpdateRequest, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}
	if env.Type != MessageOrderUpdate {
		return nil, fmt.Errorf("unexpected inbound message type %q", env.Type)
	}
	if env.OrderID == "" {
		return nil, fmt.Errorf("order update without orderId")
	}
	req := &OrderUpdateRequest{OrderID: env.OrderID}
	if env.Updates != nil {
		req.Updates = *env.Updates
	}
	return req, nil
}

// DecodeOutbound parses a server message on the viewer side.
func DecodeOutbound(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}
	switch env.Type {
	case MessageInitialData, MessageOrderUpdate, MessageTravelTimeUpdate:
		return &env, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", env.Type)
	}
}
