package simulated

import (
	"context"
	"fmt"
	"time"
)

// RewardCentral awards between 1 and 1000 points per lookup. It implements
// ports.RewardSource.
type RewardCentral struct {
	latency time.Duration
	rng     *lockedRand
}

// NewRewardCentral creates a RewardCentral that takes latency to answer.
func NewRewardCentral(latency time.Duration, seed uint64) *RewardCentral {
	return &RewardCentral{latency: latency, rng: newLockedRand(seed)}
}

func (r *RewardCentral) RewardPoints(ctx context.Context, attractionID, userID string) (int, error) {
	if attractionID == "" || userID == "" {
		return 0, fmt.Errorf("reward central: attraction and user ids are required")
	}
	if err := delay(ctx, r.latency); err != nil {
		return 0, fmt.Errorf("reward central: %w", err)
	}
	return r.rng.IntN(1000) + 1, nil
}
