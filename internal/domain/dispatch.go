package domain

import "time"

// DefaultTravelMinutes is assumed when an order has no travel time estimate yet.
const DefaultTravelMinutes = 5

// ComputeDispatchTime derives the instant a driver must leave to meet the
// delivery time. Nil delivery time yields nil. A missing or negative travel
// time falls back to DefaultTravelMinutes.
func ComputeDispatchTime(deliveryTime *time.Time, travelMinutes *int) *time.Time {
	if deliveryTime == nil {
		return nil
	}
	minutes := DefaultTravelMinutes
	if travelMinutes != nil && *travelMinutes >= 0 {
		minutes = *travelMinutes
	}
	t := deliveryTime.Add(-time.Duration(minutes) * time.Minute)
	return &t
}
