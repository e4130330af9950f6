package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/tourguide/internal/core/domain"
	"github.com/samirrijal/tourguide/internal/core/ports"
	"github.com/samirrijal/tourguide/internal/pkg/metrics"
	"github.com/samirrijal/tourguide/internal/pkg/workerpool"
)

var tracer = otel.Tracer("github.com/samirrijal/tourguide/internal/core/usecases")

const (
	DedupByName = "name"
	DedupByID   = "id"

	DefaultRewardWaitTimeout = 60 * time.Second
)

// RewardOptions tunes a RewardService.
type RewardOptions struct {
	// WaitTimeout bounds how long CalculateRewards waits for its lookups.
	WaitTimeout time.Duration
	// DedupBy is DedupByName (default) or DedupByID.
	DedupBy string
}

// RewardReport describes one CalculateRewards call.
type RewardReport struct {
	Candidates int  `json:"candidates"`
	Granted    int  `json:"granted"`
	Duplicates int  `json:"duplicates"`
	Failed     int  `json:"failed"`
	Incomplete bool `json:"incomplete"`
}

// RewardService turns a user's visited locations into rewards for the
// attractions near them. Point lookups fan out on a shared worker pool.
type RewardService struct {
	catalog   ports.AttractionCatalog
	source    ports.RewardSource
	policy    *ProximityPolicy
	pool      *workerpool.Pool
	publisher ports.EventPublisher

	waitTimeout time.Duration
	dedupBy     string
}

// NewRewardService creates a RewardService. publisher may be nil.
func NewRewardService(
	catalog ports.AttractionCatalog,
	source ports.RewardSource,
	policy *ProximityPolicy,
	pool *workerpool.Pool,
	publisher ports.EventPublisher,
	opts RewardOptions,
) *RewardService {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = DefaultRewardWaitTimeout
	}
	if opts.DedupBy != DedupByID {
		opts.DedupBy = DedupByName
	}
	return &RewardService{
		catalog:     catalog,
		source:      source,
		policy:      policy,
		pool:        pool,
		publisher:   publisher,
		waitTimeout: opts.WaitTimeout,
		dedupBy:     opts.DedupBy,
	}
}

// Policy returns the proximity policy used for eligibility.
func (s *RewardService) Policy() *ProximityPolicy { return s.policy }

// RewardKey is the key a reward for a is stored under.
func (s *RewardService) RewardKey(a domain.Attraction) string {
	if s.dedupBy == DedupByID {
		return a.ID
	}
	return a.Name
}

type rewardCounters struct {
	granted    atomic.Int64
	duplicates atomic.Int64
	failed     atomic.Int64
}

// CalculateRewards looks up points for every attraction within the reward
// buffer of one of the user's visited locations and not yet rewarded, and
// stores them on the user. It returns once every lookup has finished or the
// wait timeout has passed; in the latter case the report is marked
// Incomplete and remaining lookups still land on the user when they finish.
// A failed lookup only costs its own reward.
func (s *RewardService) CalculateRewards(ctx context.Context, user *domain.User) (RewardReport, error) {
	var report RewardReport
	if user == nil {
		return report, ErrNilUser
	}

	ctx, span := tracer.Start(ctx, "RewardService.CalculateRewards",
		trace.WithAttributes(attribute.String("user.id", user.ID)))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.RewardCalculationDuration.Observe(time.Since(start).Seconds())
	}()

	visited := user.VisitedLocations()
	if len(visited) == 0 {
		return report, nil
	}
	attractions, err := s.catalog.All(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return report, fmt.Errorf("load attractions: %w", err)
	}
	if len(attractions) == 0 {
		return report, nil
	}

	rewarded := user.RewardKeys()
	batch := s.pool.NewBatch()
	counters := &rewardCounters{}

	var submitErr error
submit:
	for _, vl := range visited {
		for _, a := range attractions {
			key := s.RewardKey(a)
			if _, ok := rewarded[key]; ok {
				continue
			}
			if !s.policy.IsRewardEligible(vl.Location, a) {
				continue
			}
			report.Candidates++
			err := batch.Go(ctx, func(ctx context.Context) error {
				return s.grant(ctx, user, vl, a, key, counters)
			})
			if err != nil {
				report.Candidates--
				submitErr = fmt.Errorf("submit reward lookup: %w", err)
				break submit
			}
		}
	}

	stats, err := batch.Wait(ctx, s.waitTimeout)
	report.Granted = int(counters.granted.Load())
	report.Duplicates = int(counters.duplicates.Load())
	report.Failed = int(counters.failed.Load())
	span.SetAttributes(
		attribute.Int("rewards.candidates", report.Candidates),
		attribute.Int("rewards.granted", report.Granted),
	)

	switch {
	case errors.Is(err, workerpool.ErrWaitTimeout):
		report.Incomplete = true
		slog.WarnContext(ctx, "reward calculation did not finish in time",
			"user", user.Name, "timeout", s.waitTimeout, "pending", stats.Pending())
	case err != nil:
		report.Incomplete = true
		span.SetStatus(codes.Error, err.Error())
		return report, fmt.Errorf("wait for reward lookups: %w", err)
	}

	if submitErr != nil {
		span.SetStatus(codes.Error, submitErr.Error())
		return report, submitErr
	}

	slog.DebugContext(ctx, "rewards calculated",
		"user", user.Name, "candidates", report.Candidates,
		"granted", report.Granted, "failed", report.Failed)
	return report, nil
}

func (s *RewardService) grant(ctx context.Context, user *domain.User, vl domain.VisitedLocation, a domain.Attraction, key string, c *rewardCounters) error {
	points, err := s.source.RewardPoints(ctx, a.ID, user.ID)
	if err == nil && points < 0 {
		err = fmt.Errorf("%w: %d", ErrNegativePoints, points)
	}
	if err != nil {
		c.failed.Add(1)
		metrics.RewardLookups.WithLabelValues("error").Inc()
		slog.WarnContext(ctx, "reward lookup failed",
			"user", user.Name, "attraction", a.Name, "error", err)
		return err
	}
	metrics.RewardLookups.WithLabelValues("ok").Inc()

	reward := domain.UserReward{VisitedLocation: vl, Attraction: a, RewardPoints: points}
	if !user.AddReward(key, reward) {
		c.duplicates.Add(1)
		metrics.RewardDuplicatesDiscarded.Inc()
		return nil
	}
	c.granted.Add(1)
	metrics.RewardsGranted.Inc()

	if s.publisher != nil {
		event := domain.RewardEarned{
			EventID:        uuid.NewString(),
			UserID:         user.ID,
			UserName:       user.Name,
			AttractionID:   a.ID,
			AttractionName: a.Name,
			RewardPoints:   points,
			EarnedAt:       time.Now().UTC(),
		}
		if err := s.publisher.PublishRewardEarned(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish reward event failed", "user", user.Name, "error", err)
		}
	}
	return nil
}
