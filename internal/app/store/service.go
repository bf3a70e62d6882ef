package store

import (
	"fmt"
	"sync"

	"catering-dispatch/internal/adapter/logger"
	"catering-dispatch/internal/domain"
	"catering-dispatch/internal/interfaces"
)

// Service is the canonical order store. All mutations go through
// ApplyUpdate; the read-merge-recompute-replace sequence runs entirely
// under the write lock so concurrent handlers cannot lose updates.
type Service struct {
	repo   interfaces.OrderRepository
	logger logger.Logger

	mu     sync.RWMutex
	orders []*domain.Order
	index  map[string]int
}

// NewService loads the persisted collection and rebuilds derived state.
// Dispatch times are recomputed on load; the manual override flags come
// straight from the file and stay sticky across restarts.
func NewService(repo interfaces.OrderRepository, lgr logger.Logger) (*Service, error) {
	orders, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	s := &Service{
		repo:   repo,
		logger: lgr,
		orders: orders,
		index:  make(map[string]int, len(orders)),
	}
	for i, o := range orders {
		o.DispatchTime = domain.ComputeDispatchTime(o.DeliveryTime, o.TravelTime)
		s.index[o.ID] = i
	}

	lgr.Info("store_loaded", fmt.Sprintf("Loaded %d orders", len(orders)), "", map[string]interface{}{
		"orders": len(orders),
	})
	return s, nil
}

// GetAll returns a deep-copied snapshot, safe for concurrent use.
func (s *Service) GetAll() []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]*domain.Order, len(s.orders))
	for i, o := range s.orders {
		snapshot[i] = o.Clone()
	}
	return snapshot
}

// ApplyUpdate shallow-merges the partial update into the stored order and
// recomputes its dispatch time. A manual-origin travel-time change makes
// the override sticky; an automatic caller can never touch the flag.
// Unknown ids return domain.ErrOrderNotFound and leave the store as-is.
func (s *Service) ApplyUpdate(orderID string, updates domain.OrderUpdate, origin interfaces.UpdateOrigin) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[orderID]
	if !ok {
		return nil, fmt.Errorf("apply update %s: %w", orderID, domain.ErrOrderNotFound)
	}

	if origin == interfaces.OriginAutomatic {
		updates.IsManualTravelTime = nil
		// A manual override may have landed after the caller snapshotted
		// the collection; it wins, so the automatic estimate is dropped.
		if s.orders[i].IsManualTravelTime {
			updates.TravelTime = nil
		}
	} else if updates.TravelTime != nil && updates.IsManualTravelTime == nil {
		manual := true
		updates.IsManualTravelTime = &manual
	}

	merged := s.orders[i].Clone()
	merged.Merge(updates)
	s.orders[i] = merged

	s.persistLocked()

	return merged.Clone(), nil
}

// persistLocked rewrites the backing file. Best-effort: a failed write is
// logged and the in-memory state stays authoritative for this process.
func (s *Service) persistLocked() {
	if err := s.repo.Save(s.orders); err != nil {
		s.logger.Error("store_persist_failed", "Failed to persist orders", "", nil, err)
		return
	}
	s.logger.Debug("store_persisted", "Orders saved to file", "", map[string]interface{}{
		"orders": len(s.orders),
	})
}
