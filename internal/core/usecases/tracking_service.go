package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/tourguide/internal/core/domain"
	"github.com/samirrijal/tourguide/internal/core/ports"
	"github.com/samirrijal/tourguide/internal/pkg/metrics"
	"github.com/samirrijal/tourguide/internal/pkg/workerpool"
)

// TrackingService refreshes user locations from the location source and
// triggers reward calculation for them.
type TrackingService struct {
	locations ports.LocationSource
	rewards   *RewardService
	pool      *workerpool.Pool
	publisher ports.EventPublisher
}

// NewTrackingService creates a TrackingService. publisher may be nil.
func NewTrackingService(
	locations ports.LocationSource,
	rewards *RewardService,
	pool *workerpool.Pool,
	publisher ports.EventPublisher,
) *TrackingService {
	return &TrackingService{locations: locations, rewards: rewards, pool: pool, publisher: publisher}
}

// RoundSummary reports a tracking round over many users.
type RoundSummary struct {
	Users      int           `json:"users"`
	Tracked    int64         `json:"tracked"`
	Failed     int64         `json:"failed"`
	Incomplete bool          `json:"incomplete"`
	Duration   time.Duration `json:"duration"`
}

// TrackLocation fetches the user's current location, appends it to the
// history and calculates rewards, running on the tracking pool. It returns
// the new location once rewards are calculated.
func (s *TrackingService) TrackLocation(ctx context.Context, user *domain.User) (domain.VisitedLocation, error) {
	if user == nil {
		return domain.VisitedLocation{}, ErrNilUser
	}

	var (
		result  domain.VisitedLocation
		taskErr error
	)
	batch := s.pool.NewBatch()
	err := batch.Go(ctx, func(ctx context.Context) error {
		result, taskErr = s.track(ctx, user)
		return taskErr
	})
	if err != nil {
		return domain.VisitedLocation{}, fmt.Errorf("schedule tracking for %s: %w", user.Name, err)
	}
	if _, err := batch.Wait(ctx, 0); err != nil {
		return domain.VisitedLocation{}, err
	}
	return result, taskErr
}

// TrackAll tracks every user concurrently on the tracking pool. A failure for
// one user is logged and counted without affecting the others. timeout <= 0
// waits for every user.
func (s *TrackingService) TrackAll(ctx context.Context, users []*domain.User, timeout time.Duration) (RoundSummary, error) {
	start := time.Now()
	summary := RoundSummary{Users: len(users)}

	batch := s.pool.NewBatch()
	for _, u := range users {
		if err := batch.Go(ctx, func(ctx context.Context) error {
			_, err := s.track(ctx, u)
			return err
		}); err != nil {
			return summary, fmt.Errorf("schedule tracking for %s: %w", u.Name, err)
		}
	}

	stats, err := batch.Wait(ctx, timeout)
	summary.Tracked = stats.Succeeded
	summary.Failed = stats.Failed
	summary.Incomplete = stats.Pending() > 0
	summary.Duration = time.Since(start)
	if err != nil && !errors.Is(err, workerpool.ErrWaitTimeout) {
		return summary, err
	}
	return summary, nil
}

func (s *TrackingService) track(ctx context.Context, user *domain.User) (domain.VisitedLocation, error) {
	ctx, span := tracer.Start(ctx, "TrackingService.TrackLocation",
		trace.WithAttributes(attribute.String("user.id", user.ID)))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.TrackingDuration.Observe(time.Since(start).Seconds())
	}()

	fail := func(err error) (domain.VisitedLocation, error) {
		metrics.TrackingTotal.WithLabelValues("error").Inc()
		span.SetStatus(codes.Error, err.Error())
		slog.WarnContext(ctx, "tracking failed", "user", user.Name, "error", err)
		return domain.VisitedLocation{}, err
	}

	vl, err := s.locations.CurrentLocation(ctx, user.ID)
	if err != nil {
		return fail(fmt.Errorf("current location: %w", err))
	}
	if !vl.Location.Valid() {
		return fail(fmt.Errorf("current location: %w", domain.ErrInvalidLocation))
	}
	if vl.UserID == "" {
		vl.UserID = user.ID
	}
	if vl.TimeVisit.IsZero() {
		vl.TimeVisit = time.Now().UTC()
	}

	user.AddVisitedLocation(vl)
	s.publishLocation(ctx, user, vl)

	if _, err := s.rewards.CalculateRewards(ctx, user); err != nil {
		return fail(fmt.Errorf("calculate rewards: %w", err))
	}

	metrics.TrackingTotal.WithLabelValues("ok").Inc()
	return vl, nil
}

func (s *TrackingService) publishLocation(ctx context.Context, user *domain.User, vl domain.VisitedLocation) {
	if s.publisher == nil {
		return
	}
	event := domain.LocationTracked{
		EventID:    uuid.NewString(),
		UserID:     user.ID,
		UserName:   user.Name,
		Location:   vl.Location,
		TimeVisit:  vl.TimeVisit,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishLocationTracked(ctx, event); err != nil {
		slog.WarnContext(ctx, "publish location event failed", "user", user.Name, "error", err)
	}
}

// GetUserLocation returns the user's last known location. A user with no
// history is tracked once first.
func (s *TrackingService) GetUserLocation(ctx context.Context, user *domain.User) (domain.VisitedLocation, error) {
	if user == nil {
		return domain.VisitedLocation{}, ErrNilUser
	}
	if vl, ok := user.LastVisitedLocation(); ok {
		return vl, nil
	}
	vl, err := s.TrackLocation(ctx, user)
	if err != nil {
		return domain.VisitedLocation{}, fmt.Errorf("%w: %w", domain.ErrNoLocation, err)
	}
	return vl, nil
}

// UserRewards returns the rewards currently stored on the user.
func (s *TrackingService) UserRewards(user *domain.User) []domain.UserReward {
	if user == nil {
		return nil
	}
	return user.Rewards()
}

// TripRewardTotal is the sum of the user's reward points.
func (s *TrackingService) TripRewardTotal(user *domain.User) int {
	if user == nil {
		return 0
	}
	return user.RewardPointsTotal()
}
