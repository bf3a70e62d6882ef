package http

import (
	"encoding/json"
	"net/http"

	"catering-dispatch/internal/adapter/logger"
	"catering-dispatch/internal/interfaces"
)

// OrderHandler serves the read-only HTTP convenience surface next to the
// WebSocket transport.
type OrderHandler struct {
	store       interfaces.OrderStore
	broadcaster interfaces.Broadcaster
	logger      logger.Logger
}

func NewOrderHandler(store interfaces.OrderStore, broadcaster interfaces.Broadcaster, lgr logger.Logger) *OrderHandler {
	return &OrderHandler{
		store:       store,
		broadcaster: broadcaster,
		logger:      lgr,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// GetOrders returns the current full order snapshot as a JSON array,
// mirroring the store's GetAll.
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.store.GetAll()); err != nil {
		h.logger.Error("orders_encode_failed", "Failed to encode orders", "", nil, err)
	}
}

// Broadcast relays an already-shaped outbound message to every connected
// viewer. Sibling processes (the CRUD side) use this to push changes they
// made outside of this subsystem.
func (h *OrderHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var env interfaces.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		h.respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	switch env.Type {
	case interfaces.MessageInitialData, interfaces.MessageOrderUpdate, interfaces.MessageTravelTimeUpdate:
	default:
		h.respondError(w, "Unknown message type", http.StatusBadRequest)
		return
	}

	h.broadcaster.Broadcast(env)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (h *OrderHandler) respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
