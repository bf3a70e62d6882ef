package interfaces

import "context"

// RouteEstimator asks the external routing service for a driving-time
// estimate between two formatted addresses (Adapter/Maps). Every failure
// mode collapses to a single error; retry policy belongs to the caller.
type RouteEstimator interface {
	EstimateTravelMinutes(ctx context.Context, origin, destination string) (int, error)
}

// Broadcaster fans one message out to every connected viewer session.
// Delivery is fire-and-forget: a dead or slow session is skipped, never
// an error.
type Broadcaster interface {
	Broadcast(msg Envelope)
}
