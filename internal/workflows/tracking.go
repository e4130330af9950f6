package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const defaultMaxConcurrent = 50

// TrackingRoundInput is the input for the tracking round workflow.
type TrackingRoundInput struct {
	// MaxConcurrent caps TrackUser activities in flight. Zero means 50.
	MaxConcurrent int
}

// TrackingRoundResult summarizes a finished round.
type TrackingRoundResult struct {
	Users   int
	Tracked int
	Failed  int
	Points  int
}

// TrackingRoundWorkflow lists every user and tracks each one as its own
// activity. Each user gets exactly one tracking attempt per round; a failure
// is counted and skipped. Only a failure to list users fails the round.
func TrackingRoundWorkflow(ctx workflow.Context, input TrackingRoundInput) (TrackingRoundResult, error) {
	logger := workflow.GetLogger(ctx)

	listCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	})
	// a retried cycle would append another location to the history
	trackCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	var names []string
	if err := workflow.ExecuteActivity(listCtx, "ListUserNames").Get(listCtx, &names); err != nil {
		return TrackingRoundResult{}, err
	}
	logger.Info("Starting tracking round", "users", len(names))

	limit := input.MaxConcurrent
	if limit <= 0 {
		limit = defaultMaxConcurrent
	}

	result := TrackingRoundResult{Users: len(names)}
	for start := 0; start < len(names); start += limit {
		end := min(start+limit, len(names))

		futures := make([]workflow.Future, 0, end-start)
		for _, name := range names[start:end] {
			futures = append(futures, workflow.ExecuteActivity(trackCtx, "TrackUser", name))
		}
		for i, f := range futures {
			var tr TrackResult
			if err := f.Get(trackCtx, &tr); err != nil {
				logger.Warn("tracking user failed", "user", names[start+i], "error", err)
				result.Failed++
				continue
			}
			result.Tracked++
			result.Points += tr.RewardPoints
		}
	}

	logger.Info("Tracking round finished", "tracked", result.Tracked, "failed", result.Failed)
	return result, nil
}
