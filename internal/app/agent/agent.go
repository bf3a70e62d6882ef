// Package agent implements the viewer-side synchronization client: one
// reusable connection state machine instead of ad hoc reconnect loops
// duplicated per screen.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"catering-dispatch/internal/adapter/logger"
	"catering-dispatch/internal/domain"
	"catering-dispatch/internal/interfaces"
)

// Conn is the transport surface the agent needs from a connection.
// *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// DialFunc opens a connection to the dispatch server.
type DialFunc func(ctx context.Context, url string) (Conn, error)

// Dial is the production DialFunc.
func Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

type Config struct {
	URL         string
	MaxAttempts int
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// Agent maintains a live connection to the dispatch server and a local
// view of the order collection. On every (re)connect the server pushes
// the authoritative snapshot; the local override cache only pre-seeds
// the view until the server confirms.
type Agent struct {
	cfg       Config
	dial      DialFunc
	overrides interfaces.OverrideCache
	logger    logger.Logger
	onState   func(ConnState)

	mu            sync.Mutex
	state         ConnState
	attempts      int
	everConnected bool
	closed        bool
	conn          Conn
	orders        map[string]*domain.Order
	drivers       []domain.Driver
	estimated     map[string]int
}

// New builds an agent. onState may be nil; when set it is invoked on
// every state transition so a UI layer can surface connectivity.
func New(cfg Config, dial DialFunc, overrides interfaces.OverrideCache, lgr logger.Logger, onState func(ConnState)) *Agent {
	return &Agent{
		cfg:       cfg,
		dial:      dial,
		overrides: overrides,
		logger:    lgr,
		onState:   onState,
		state:     StateDisconnected,
		orders:    make(map[string]*domain.Order),
		estimated: make(map[string]int),
	}
}

// Run drives the connection state machine until the context is done, the
// agent is deliberately closed, or the reconnect bound is exhausted. The
// bound being exhausted is an error: no silent infinite retry.
func (a *Agent) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil || a.isClosed() {
			a.setState(StateDisconnected)
			return nil
		}

		if a.everConnectedOnce() {
			a.setState(StateReconnecting)
		} else {
			a.setState(StateConnecting)
		}

		conn, err := a.dial(ctx, a.cfg.URL)
		if err != nil {
			attempts := a.bumpAttempts()
			if attempts >= a.cfg.MaxAttempts {
				a.setState(StateDisconnected)
				return fmt.Errorf("connection failed after %d attempts: %w", attempts, err)
			}
			a.logger.Debug("reconnect_scheduled", fmt.Sprintf("Reconnect attempt %d/%d failed", attempts, a.cfg.MaxAttempts), "", map[string]interface{}{
				"error": err.Error(),
			})
			select {
			case <-ctx.Done():
			case <-time.After(a.backoff(attempts)):
			}
			continue
		}

		a.adoptConn(conn)
		a.setState(StateConnected)
		a.logger.Info("agent_connected", "Connected to dispatch server", "", nil)

		a.readLoop(conn)
		conn.Close()
		a.dropConn()

		if ctx.Err() != nil || a.isClosed() {
			a.setState(StateDisconnected)
			return nil
		}
		a.logger.Info("agent_connection_lost", "Connection to dispatch server lost", "", nil)
	}
}

// Close deliberately stops the agent; Run returns without reconnecting.
func (a *Agent) Close() {
	a.mu.Lock()
	a.closed = true
	conn := a.conn
	a.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// backoff grows linearly with the attempt count, capped.
func (a *Agent) backoff(attempt int) time.Duration {
	d := time.Duration(attempt) * a.cfg.BackoffBase
	if d > a.cfg.BackoffCap {
		d = a.cfg.BackoffCap
	}
	return d
}

func (a *Agent) readLoop(conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		a.handleMessage(data)
	}
}

func (a *Agent) handleMessage(data []byte) {
	env, err := interfaces.DecodeOutbound(data)
	if err != nil {
		a.logger.Error("message_dropped", "Dropping malformed server message", "", nil, err)
		return
	}

	switch env.Type {
	case interfaces.MessageInitialData:
		a.applyInitialData(env)
	case interfaces.MessageOrderUpdate:
		a.applyOrderUpdate(env.Order)
	case interfaces.MessageTravelTimeUpdate:
		a.applyTravelTimes(env.TravelTimes)
	}
}

// applyInitialData replaces the whole local snapshot, then overlays the
// cached manual overrides the server has not confirmed yet. Entries the
// server did confirm are pruned from the cache.
func (a *Agent) applyInitialData(env *interfaces.Envelope) {
	cached, err := a.overrides.Load()
	if err != nil {
		a.logger.Error("override_cache_load_failed", "Failed to load override cache", "", nil, err)
		cached = map[string]int{}
	}

	a.mu.Lock()
	a.orders = make(map[string]*domain.Order, len(env.Orders))
	for _, o := range env.Orders {
		a.orders[o.ID] = o.Clone()
	}
	a.drivers = append([]domain.Driver(nil), env.Drivers...)

	pruned := false
	for id, minutes := range cached {
		o, ok := a.orders[id]
		if !ok {
			continue
		}
		if o.IsManualTravelTime {
			delete(cached, id)
			pruned = true
			continue
		}
		m := minutes
		o.TravelTime = &m
		o.IsManualTravelTime = true
		o.DispatchTime = domain.ComputeDispatchTime(o.DeliveryTime, o.TravelTime)
	}
	a.mu.Unlock()

	if pruned {
		if err := a.overrides.Save(cached); err != nil {
			a.logger.Error("override_cache_save_failed", "Failed to prune override cache", "", nil, err)
		}
	}

	a.logger.Info("snapshot_replaced", fmt.Sprintf("Received snapshot of %d orders", len(env.Orders)), "", map[string]interface{}{
		"orders":  len(env.Orders),
		"drivers": len(env.Drivers),
	})
}

func (a *Agent) applyOrderUpdate(order *domain.Order) {
	if order == nil {
		a.logger.Error("message_dropped", "Order update without order payload", "", nil, nil)
		return
	}

	a.mu.Lock()
	a.orders[order.ID] = order.Clone()
	a.mu.Unlock()

	// The server round-tripped the authoritative state; any cached
	// override for this order is confirmed or superseded either way.
	cached, err := a.overrides.Load()
	if err == nil {
		if _, ok := cached[order.ID]; ok {
			delete(cached, order.ID)
			if err := a.overrides.Save(cached); err != nil {
				a.logger.Error("override_cache_save_failed", "Failed to prune override cache", "", nil, err)
			}
		}
	}
}

// applyTravelTimes merges the advisory minute map. It is kept apart from
// the authoritative snapshot until ORDER_UPDATE round-trips each order.
func (a *Agent) applyTravelTimes(travelTimes map[string]int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, minutes := range travelTimes {
		a.estimated[id] = minutes
	}
}

// SetTravelTime is the manual-override path: optimistic local mutation,
// durable cache entry, then the ORDER_UPDATE send. A failed send rolls
// the optimistic mutation and the cache entry back.
func (a *Agent) SetTravelTime(orderID string, minutes int) error {
	a.mu.Lock()
	order, ok := a.orders[orderID]
	if !ok {
		a.mu.Unlock()
		return fmt.Errorf("set travel time %s: %w", orderID, domain.ErrOrderNotFound)
	}
	conn := a.conn

	prev := order.Clone()
	m := minutes
	order.TravelTime = &m
	order.IsManualTravelTime = true
	order.DispatchTime = domain.ComputeDispatchTime(order.DeliveryTime, order.TravelTime)
	a.mu.Unlock()

	if err := a.cacheOverride(orderID, minutes); err != nil {
		a.logger.Error("override_cache_save_failed", "Failed to persist manual override", "", nil, err)
	}

	sendErr := a.sendUpdate(conn, orderID, minutes)
	if sendErr == nil {
		return nil
	}

	// Roll back so the local view does not diverge from the server.
	a.mu.Lock()
	a.orders[orderID] = prev
	a.mu.Unlock()
	if err := a.uncacheOverride(orderID); err != nil {
		a.logger.Error("override_cache_save_failed", "Failed to roll back manual override", "", nil, err)
	}
	return fmt.Errorf("failed to send travel time update: %w", sendErr)
}

func (a *Agent) sendUpdate(conn Conn, orderID string, minutes int) error {
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	manual := true
	env := interfaces.Envelope{
		Type:    interfaces.MessageOrderUpdate,
		OrderID: orderID,
		Updates: &domain.OrderUpdate{
			TravelTime:         &minutes,
			IsManualTravelTime: &manual,
		},
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (a *Agent) cacheOverride(orderID string, minutes int) error {
	cached, err := a.overrides.Load()
	if err != nil {
		return err
	}
	cached[orderID] = minutes
	return a.overrides.Save(cached)
}

func (a *Agent) uncacheOverride(orderID string) error {
	cached, err := a.overrides.Load()
	if err != nil {
		return err
	}
	delete(cached, orderID)
	return a.overrides.Save(cached)
}

// Orders returns a copy of the local snapshot.
func (a *Agent) Orders() []*domain.Order {
	a.mu.Lock()
	defer a.mu.Unlock()
	orders := make([]*domain.Order, 0, len(a.orders))
	for _, o := range a.orders {
		orders = append(orders, o.Clone())
	}
	return orders
}

// Drivers returns the roster received with the last snapshot.
func (a *Agent) Drivers() []domain.Driver {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Driver(nil), a.drivers...)
}

// EstimatedTravelTimes returns a copy of the advisory minute map.
func (a *Agent) EstimatedTravelTimes() map[string]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	est := make(map[string]int, len(a.estimated))
	for id, m := range a.estimated {
		est[id] = m
	}
	return est
}

// State returns the current connection state.
func (a *Agent) State() ConnState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Attempts returns the current reconnect attempt counter.
func (a *Agent) Attempts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attempts
}

func (a *Agent) setState(s ConnState) {
	a.mu.Lock()
	changed := a.state != s
	a.state = s
	a.mu.Unlock()
	if changed && a.onState != nil {
		a.onState(s)
	}
}

func (a *Agent) bumpAttempts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attempts++
	return a.attempts
}

func (a *Agent) adoptConn(conn Conn) {
	a.mu.Lock()
	a.conn = conn
	a.attempts = 0
	a.everConnected = true
	a.mu.Unlock()
}

func (a *Agent) dropConn() {
	a.mu.Lock()
	a.conn = nil
	a.mu.Unlock()
}

func (a *Agent) everConnectedOnce() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.everConnected
}

func (a *Agent) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}
