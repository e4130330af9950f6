package usecases

import (
	"math"
	"sync/atomic"

	"github.com/samirrijal/tourguide/internal/core/domain"
	"github.com/samirrijal/tourguide/internal/pkg/geospatial"
)

const (
	DefaultRewardBufferMiles    = 10.0
	DefaultVisibilityRangeMiles = 200.0
)

// ProximityPolicy decides whether an attraction is close enough to a location
// to earn a reward or to be shown as nearby. Both thresholds are in statute
// miles. The reward buffer can be changed at runtime and reset to the value
// the policy was built with.
type ProximityPolicy struct {
	defaultBuffer   float64
	buffer          atomic.Uint64 // float64 bits
	visibilityRange float64
}

// NewProximityPolicy builds a policy. Non-positive values fall back to the
// package defaults.
func NewProximityPolicy(rewardBuffer, visibilityRange float64) *ProximityPolicy {
	if rewardBuffer <= 0 {
		rewardBuffer = DefaultRewardBufferMiles
	}
	if visibilityRange <= 0 {
		visibilityRange = DefaultVisibilityRangeMiles
	}
	p := &ProximityPolicy{defaultBuffer: rewardBuffer, visibilityRange: visibilityRange}
	p.buffer.Store(math.Float64bits(rewardBuffer))
	return p
}

// RewardBuffer returns the current reward buffer.
func (p *ProximityPolicy) RewardBuffer() float64 {
	return math.Float64frombits(p.buffer.Load())
}

// SetRewardBuffer replaces the reward buffer. Negative or non-finite values
// are rejected.
func (p *ProximityPolicy) SetRewardBuffer(miles float64) error {
	if miles < 0 || math.IsNaN(miles) || math.IsInf(miles, 0) {
		return ErrInvalidBuffer
	}
	p.buffer.Store(math.Float64bits(miles))
	return nil
}

// ResetRewardBuffer restores the buffer the policy was built with.
func (p *ProximityPolicy) ResetRewardBuffer() {
	p.buffer.Store(math.Float64bits(p.defaultBuffer))
}

// VisibilityRange returns the display range.
func (p *ProximityPolicy) VisibilityRange() float64 { return p.visibilityRange }

// Distance returns the distance in statute miles between loc and the attraction.
func Distance(loc domain.GeoPoint, a domain.Attraction) float64 {
	return geospatial.DistanceMiles(loc.Lat, loc.Lon, a.Location.Lat, a.Location.Lon)
}

// IsRewardEligible reports whether a is within the reward buffer of loc,
// boundary included.
func (p *ProximityPolicy) IsRewardEligible(loc domain.GeoPoint, a domain.Attraction) bool {
	if !loc.Valid() || !a.Location.Valid() {
		return false
	}
	return Distance(loc, a) <= p.RewardBuffer()
}

// IsVisible reports whether a is within the visibility range of loc,
// boundary included.
func (p *ProximityPolicy) IsVisible(loc domain.GeoPoint, a domain.Attraction) bool {
	if !loc.Valid() || !a.Location.Valid() {
		return false
	}
	return Distance(loc, a) <= p.visibilityRange
}
