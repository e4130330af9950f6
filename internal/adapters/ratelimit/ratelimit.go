// Package ratelimit wraps the external collaborators with token-bucket limits
// so bursts of tracking and reward work cannot exceed what the remote
// services accept.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/samirrijal/tourguide/internal/core/domain"
	"github.com/samirrijal/tourguide/internal/core/ports"
)

// NewLimiter returns a limiter allowing perSecond calls with an equal burst.
// A non-positive rate returns nil, meaning unlimited.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func wait(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	if err := l.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// LocationSource limits calls to a ports.LocationSource.
type LocationSource struct {
	next    ports.LocationSource
	limiter *rate.Limiter
}

// WrapLocationSource returns next unchanged when perSecond is not positive.
func WrapLocationSource(next ports.LocationSource, perSecond float64) ports.LocationSource {
	l := NewLimiter(perSecond)
	if l == nil {
		return next
	}
	return &LocationSource{next: next, limiter: l}
}

func (s *LocationSource) CurrentLocation(ctx context.Context, userID string) (domain.VisitedLocation, error) {
	if err := wait(ctx, s.limiter); err != nil {
		return domain.VisitedLocation{}, err
	}
	return s.next.CurrentLocation(ctx, userID)
}

// RewardSource limits calls to a ports.RewardSource.
type RewardSource struct {
	next    ports.RewardSource
	limiter *rate.Limiter
}

// WrapRewardSource returns next unchanged when perSecond is not positive.
func WrapRewardSource(next ports.RewardSource, perSecond float64) ports.RewardSource {
	l := NewLimiter(perSecond)
	if l == nil {
		return next
	}
	return &RewardSource{next: next, limiter: l}
}

func (s *RewardSource) RewardPoints(ctx context.Context, attractionID, userID string) (int, error) {
	if err := wait(ctx, s.limiter); err != nil {
		return 0, err
	}
	return s.next.RewardPoints(ctx, attractionID, userID)
}

// TripPricer limits calls to a ports.TripPricer.
type TripPricer struct {
	next    ports.TripPricer
	limiter *rate.Limiter
}

// WrapTripPricer returns next unchanged when perSecond is not positive.
func WrapTripPricer(next ports.TripPricer, perSecond float64) ports.TripPricer {
	l := NewLimiter(perSecond)
	if l == nil {
		return next
	}
	return &TripPricer{next: next, limiter: l}
}

func (p *TripPricer) Price(ctx context.Context, q domain.TripQuery) ([]domain.Provider, error) {
	if err := wait(ctx, p.limiter); err != nil {
		return nil, err
	}
	return p.next.Price(ctx, q)
}
