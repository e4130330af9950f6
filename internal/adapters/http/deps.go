package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/tourguide/internal/core/usecases"
)

// Pinger is a backing service the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Users       *usecases.UserService
	Tracking    *usecases.TrackingService
	Rewards     *usecases.RewardService
	Attractions *usecases.AttractionService
	Trips       *usecases.TripService
	Policy      *usecases.ProximityPolicy

	NATS  *nats.Conn
	DB    Pinger
	Cache Pinger

	// RequestsPerMinute caps requests per client IP. Zero disables the limiter.
	RequestsPerMinute int
}
