package workflows

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/tourguide/internal/adapters/memory"
	"github.com/samirrijal/tourguide/internal/adapters/simulated"
	"github.com/samirrijal/tourguide/internal/core/domain"
	"github.com/samirrijal/tourguide/internal/core/ports"
	"github.com/samirrijal/tourguide/internal/core/usecases"
	"github.com/samirrijal/tourguide/internal/pkg/workerpool"
)

func newActivities(t *testing.T, users int) *TrackingActivities {
	t.Helper()
	acts, _ := newActivitiesWith(t, users, simulated.NewGPS(0, 1), simulated.NewFeed())
	return acts
}

func newActivitiesWith(t *testing.T, users int, gps ports.LocationSource, feed ports.AttractionCatalog) (*TrackingActivities, *memory.UserStore) {
	t.Helper()
	store := memory.NewUserStore()
	store.SeedInternalUsers(users, rand.New(rand.NewPCG(7, 7)))

	rewardPool := workerpool.New("rewards-test", 8)
	trackingPool := workerpool.New("tracking-test", 4)
	t.Cleanup(func() {
		_ = rewardPool.Shutdown(context.Background())
		_ = trackingPool.Shutdown(context.Background())
	})

	rewards := usecases.NewRewardService(
		memory.NewCatalog(feed),
		simulated.NewRewardCentral(0, 1),
		usecases.NewProximityPolicy(0, 0),
		rewardPool,
		nil,
		usecases.RewardOptions{},
	)
	tracking := usecases.NewTrackingService(gps, rewards, trackingPool, nil)
	return &TrackingActivities{Users: usecases.NewUserService(store), Tracking: tracking}, store
}

// flakyGPS fails its first call and counts every call.
type flakyGPS struct {
	calls atomic.Int32
}

func (g *flakyGPS) CurrentLocation(_ context.Context, userID string) (domain.VisitedLocation, error) {
	if g.calls.Add(1) == 1 {
		return domain.VisitedLocation{}, errors.New("gps timeout")
	}
	return domain.VisitedLocation{UserID: userID, Location: domain.GeoPoint{Lat: 1, Lon: 1}, TimeVisit: time.Now()}, nil
}

type brokenFeed struct{}

func (brokenFeed) All(context.Context) ([]domain.Attraction, error) {
	return nil, errors.New("catalog offline")
}

func TestTrackingRoundWorkflow_TracksEveryUser(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(TrackingRoundWorkflow)
	env.RegisterActivity(newActivities(t, 5))

	env.ExecuteWorkflow(TrackingRoundWorkflow, TrackingRoundInput{MaxConcurrent: 2})

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var res TrackingRoundResult
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatal(err)
	}
	if res.Users != 5 || res.Tracked != 5 || res.Failed != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestTrackingRoundWorkflow_FailedUserDoesNotFailRound(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(TrackingRoundWorkflow)
	env.RegisterActivity(&TrackingActivities{})

	env.OnActivity("ListUserNames", mock.Anything).Return([]string{"a", "b", "broken"}, nil)
	env.OnActivity("TrackUser", mock.Anything, "a").Return(TrackResult{UserName: "a", RewardPoints: 10}, nil)
	env.OnActivity("TrackUser", mock.Anything, "b").Return(TrackResult{UserName: "b", RewardPoints: 5}, nil)
	env.OnActivity("TrackUser", mock.Anything, "broken").Return(TrackResult{}, errors.New("gps unavailable"))

	env.ExecuteWorkflow(TrackingRoundWorkflow, TrackingRoundInput{})

	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var res TrackingRoundResult
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatal(err)
	}
	if res.Tracked != 2 || res.Failed != 1 || res.Points != 15 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestTrackingRoundWorkflow_ListFailureFailsRound(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(TrackingRoundWorkflow)
	env.RegisterActivity(&TrackingActivities{})

	env.OnActivity("ListUserNames", mock.Anything).Return([]string(nil), errors.New("store offline"))

	env.ExecuteWorkflow(TrackingRoundWorkflow, TrackingRoundInput{})

	if env.GetWorkflowError() == nil {
		t.Fatal("expected the round to fail")
	}
}

func TestTrackUser_UnknownUser(t *testing.T) {
	acts := newActivities(t, 0)
	if _, err := acts.TrackUser(context.Background(), "ghost"); err == nil {
		t.Fatal("expected an error for an unknown user")
	}
}

func TestTrackingRoundWorkflow_FailedTrackingIsNotRetried(t *testing.T) {
	gps := &flakyGPS{}
	acts, _ := newActivitiesWith(t, 1, gps, simulated.NewFeed())

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(TrackingRoundWorkflow)
	env.RegisterActivity(acts)

	env.ExecuteWorkflow(TrackingRoundWorkflow, TrackingRoundInput{})

	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var res TrackingRoundResult
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatal(err)
	}
	if n := gps.calls.Load(); n != 1 {
		t.Errorf("expected one location lookup per user per round, got %d", n)
	}
	if res.Tracked != 0 || res.Failed != 1 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestTrackingRoundWorkflow_RewardFailureAppendsOneLocation(t *testing.T) {
	acts, store := newActivitiesWith(t, 1, simulated.NewGPS(0, 1), brokenFeed{})
	user, err := store.Get(context.Background(), "internalUser0")
	if err != nil {
		t.Fatal(err)
	}
	before := len(user.VisitedLocations())

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(TrackingRoundWorkflow)
	env.RegisterActivity(acts)

	env.ExecuteWorkflow(TrackingRoundWorkflow, TrackingRoundInput{})

	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var res TrackingRoundResult
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatal(err)
	}
	if res.Failed != 1 {
		t.Errorf("expected the user to fail, got %+v", res)
	}
	if after := len(user.VisitedLocations()); after != before+1 {
		t.Errorf("expected one appended location, history went from %d to %d", before, after)
	}
}
