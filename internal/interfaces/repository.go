package interfaces

import (
	"catering-dispatch/internal/domain"
)

// UpdateOrigin tells the store who is asking for a mutation. A manual
// (operator) travel-time change makes the override sticky; the automatic
// refresher must never set that flag.
type UpdateOrigin int

const (
	OriginManual UpdateOrigin = iota
	OriginAutomatic
)

// OrderStore is the single source of truth for in-flight orders.
type OrderStore interface {
	GetAll() []*domain.Order
	ApplyUpdate(orderID string, updates domain.OrderUpdate, origin UpdateOrigin) (*domain.Order, error)
}

// OrderRepository persists the whole order collection (Adapter/JSONFile).
type OrderRepository interface {
	Load() ([]*domain.Order, error)
	Save(orders []*domain.Order) error
}

// DriverRepository loads the driver roster. The roster is referenced by
// orders but maintained elsewhere, so it is read-only here.
type DriverRepository interface {
	Load() ([]domain.Driver, error)
}

// OverrideCache keeps the viewer-side manual travel-time overrides so a
// restart does not lose them before the server confirms. The server copy
// of the flag stays authoritative on reconnect.
type OverrideCache interface {
	Load() (map[string]int, error)
	Save(overrides map[string]int) error
}
