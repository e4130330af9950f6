package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/tourguide/internal/core/domain"
	"github.com/samirrijal/tourguide/internal/core/usecases"
)

// TrackingActivities holds the activity implementations for the tracking
// round workflow.
type TrackingActivities struct {
	Users    *usecases.UserService
	Tracking *usecases.TrackingService
}

// TrackResult is what one TrackUser activity reports back.
type TrackResult struct {
	UserName     string          `json:"user_name"`
	Location     domain.GeoPoint `json:"location"`
	RewardPoints int             `json:"reward_points"`
}

// ListUserNames returns the names of every registered user.
func (a *TrackingActivities) ListUserNames(ctx context.Context) ([]string, error) {
	users, err := a.Users.AllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}
	return names, nil
}

// TrackUser runs one tracking cycle for the named user. Its failures are
// never retried.
func (a *TrackingActivities) TrackUser(ctx context.Context, name string) (TrackResult, error) {
	user, err := a.Users.GetUser(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return TrackResult{}, temporal.NewNonRetryableApplicationError(err.Error(), "UserNotFound", err)
		}
		return TrackResult{}, fmt.Errorf("get user %s: %w", name, err)
	}

	vl, err := a.Tracking.TrackLocation(ctx, user)
	if err != nil {
		return TrackResult{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("track %s: %v", name, err), "TrackingFailed", err)
	}
	return TrackResult{
		UserName:     user.Name,
		Location:     vl.Location,
		RewardPoints: user.RewardPointsTotal(),
	}, nil
}
