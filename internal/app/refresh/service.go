package refresh

import (
	"context"
	"fmt"
	"time"

	"catering-dispatch/internal/adapter/logger"
	"catering-dispatch/internal/domain"
	"catering-dispatch/internal/interfaces"
)

// Service keeps automatic travel-time estimates fresh. Manually
// overridden orders are excluded up front; that exclusion, not conflict
// resolution, is the arbitration rule between operators and the refresher.
type Service struct {
	store       interfaces.OrderStore
	estimator   interfaces.RouteEstimator
	broadcaster interfaces.Broadcaster
	logger      logger.Logger
	origin      string
	interval    time.Duration
}

func NewService(store interfaces.OrderStore, estimator interfaces.RouteEstimator, broadcaster interfaces.Broadcaster, lgr logger.Logger, origin string, interval time.Duration) *Service {
	return &Service{
		store:       store,
		estimator:   estimator,
		broadcaster: broadcaster,
		logger:      lgr,
		origin:      origin,
		interval:    interval,
	}
}

// Run executes RefreshAll on a fixed interval until the context is done.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("refresher_started", "Travel time refresher started", "", map[string]interface{}{
		"interval": s.interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("refresher_stopped", "Travel time refresher stopped", "", nil)
			return
		case <-ticker.C:
			s.RefreshAll(ctx)
		}
	}
}

// RefreshAll walks one batch of eligible orders. A failing routing call
// for one order is logged and skipped; it never aborts the batch. When at
// least one order changed, a single batched TRAVEL_TIME_UPDATE goes out.
func (s *Service) RefreshAll(ctx context.Context) {
	updated := make(map[string]int)

	for _, order := range s.store.GetAll() {
		if order.IsManualTravelTime || order.Address == nil {
			continue
		}

		minutes, err := s.estimator.EstimateTravelMinutes(ctx, s.origin, order.Address.Formatted())
		if err != nil {
			s.logger.Error("travel_time_fetch_failed", fmt.Sprintf("Failed to fetch travel time for order %s", order.ID), "", map[string]interface{}{
				"order_id": order.ID,
			}, err)
			continue
		}

		merged, err := s.store.ApplyUpdate(order.ID, domain.OrderUpdate{TravelTime: &minutes}, interfaces.OriginAutomatic)
		if err != nil {
			s.logger.Error("travel_time_apply_failed", fmt.Sprintf("Failed to apply travel time for order %s", order.ID), "", map[string]interface{}{
				"order_id": order.ID,
			}, err)
			continue
		}
		// The order may have gone manual mid-batch; the store kept the
		// override, so it does not count as an update.
		if merged.IsManualTravelTime {
			continue
		}
		updated[order.ID] = minutes
	}

	if len(updated) == 0 {
		return
	}

	s.logger.Info("travel_times_refreshed", fmt.Sprintf("Refreshed travel times for %d orders", len(updated)), "", map[string]interface{}{
		"updated": len(updated),
	})
	s.broadcaster.Broadcast(interfaces.NewTravelTimeUpdate(updated, s.store.GetAll()))
}
