package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/tourguide/internal/adapters/http"
	"github.com/samirrijal/tourguide/internal/adapters/memory"
	natsadapter "github.com/samirrijal/tourguide/internal/adapters/nats"
	"github.com/samirrijal/tourguide/internal/adapters/postgres"
	"github.com/samirrijal/tourguide/internal/adapters/ratelimit"
	"github.com/samirrijal/tourguide/internal/adapters/simulated"
	"github.com/samirrijal/tourguide/internal/adapters/valkey"
	"github.com/samirrijal/tourguide/internal/core/ports"
	"github.com/samirrijal/tourguide/internal/core/usecases"
	"github.com/samirrijal/tourguide/internal/pkg/config"
	"github.com/samirrijal/tourguide/internal/pkg/logging"
	"github.com/samirrijal/tourguide/internal/pkg/telemetry"
	"github.com/samirrijal/tourguide/internal/pkg/workerpool"
	"github.com/samirrijal/tourguide/internal/workflows"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load("tourguide-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{RequestsPerMinute: cfg.Server.RequestsPerMinute}

	// Attractions
	var (
		source ports.AttractionCatalog = simulated.NewFeed()
		finder ports.AttractionFinder
	)
	if cfg.Attractions.Source == "postgres" {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		repo := postgres.NewAttractionRepo(db.Pool)
		source, finder = repo, repo
		deps.DB = db
	}
	catalog := memory.NewCatalog(source)
	if err := catalog.Load(ctx); err != nil {
		log.Fatalf("attractions: %v", err)
	}
	if finder == nil {
		finder = catalog
	}

	// Cache
	var cache ports.CacheService
	if cfg.Valkey.Addr != "" {
		vc, err := valkey.New(valkey.Options{
			Addr:         cfg.Valkey.Addr,
			Password:     cfg.Valkey.Password,
			DB:           cfg.Valkey.DB,
			DisableCache: cfg.Valkey.DisableClientCache,
		})
		if err != nil {
			slog.Warn("valkey unavailable, using in-process cache", "error", err)
		} else {
			defer vc.Close()
			cache = vc
			deps.Cache = vc
		}
	}
	if cache == nil {
		cache = memory.NewLocalCache(5*time.Minute, 10*time.Minute)
	}

	// NATS
	var publisher ports.EventPublisher
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}

		// Raw NATS connection for WebSocket relay
		if nc, err := natsadapter.RawConn(cfg.NATS.URL); err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer nc.Close()
			deps.NATS = nc
		}
	}

	// External services
	seed := uint64(time.Now().UnixNano())
	latency := cfg.Simulation.Latency
	gps := ratelimit.WrapLocationSource(simulated.NewGPS(latency, seed), cfg.GPS.RateLimit)
	rewardSource := ratelimit.WrapRewardSource(simulated.NewRewardCentral(latency, seed+1), cfg.Rewards.RateLimit)
	pricer := ratelimit.WrapTripPricer(simulated.NewTripPricer(cfg.TripPricer.APIKey, latency, seed+2), cfg.TripPricer.RateLimit)

	// Pools
	rewardPool := workerpool.New("rewards", cfg.Rewards.PoolSize)
	trackingPool := workerpool.New("tracking", cfg.Tracking.PoolSize)

	// Use cases
	policy := usecases.NewProximityPolicy(cfg.Proximity.RewardBufferMiles, cfg.Proximity.VisibilityRangeMiles)
	rewardSvc := usecases.NewRewardService(catalog, rewardSource, policy, rewardPool, publisher, usecases.RewardOptions{
		WaitTimeout: cfg.Rewards.WaitTimeout,
		DedupBy:     cfg.Rewards.DedupBy,
	})
	trackingSvc := usecases.NewTrackingService(gps, rewardSvc, trackingPool, publisher)

	users := memory.NewUserStore()
	if cfg.Users.TestMode {
		n := users.SeedInternalUsers(cfg.Users.InternalCount, nil)
		slog.Info("seeded internal users", "count", n)
	}
	userSvc := usecases.NewUserService(users)

	deps.Users = userSvc
	deps.Tracking = trackingSvc
	deps.Rewards = rewardSvc
	deps.Trips = usecases.NewTripService(pricer, cfg.TripPricer.APIKey)
	deps.Policy = policy
	deps.Attractions = usecases.NewAttractionService(usecases.AttractionServiceDeps{
		Catalog:  catalog,
		Finder:   finder,
		Ranker:   usecases.NewAttractionRanker(cfg.Attractions.NearbyLimit),
		Policy:   policy,
		Tracking: trackingSvc,
		Rewards:  rewardSource,
		Pool:     rewardPool,
		Cache:    cache,
	})

	// Track requests arriving over JetStream
	if cfg.NATS.URL != "" {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			err := sub.SubscribeTrackRequests(ctx, func(ctx context.Context, name string) error {
				u, err := userSvc.GetUser(ctx, name)
				if err != nil {
					return err
				}
				_, err = trackingSvc.TrackLocation(ctx, u)
				return err
			})
			if err != nil {
				slog.Warn("subscribe track requests failed", "error", err)
			}
		}
	}

	// Background tracking: Temporal when enabled, otherwise the in-process tracker.
	var tracker *usecases.Tracker
	var temporalWorker worker.Worker
	if cfg.Tracking.Enabled {
		if cfg.Temporal.Enabled {
			tc, w, err := startTemporal(ctx, cfg, userSvc, trackingSvc)
			if err != nil {
				log.Fatalf("temporal: %v", err)
			}
			defer tc.Close()
			temporalWorker = w
		} else {
			tracker = usecases.NewTracker(users, trackingSvc, cfg.Tracking.Interval, cfg.Tracking.RoundTimeout)
			if err := tracker.Start(ctx); err != nil {
				log.Fatalf("tracker: %v", err)
			}
		}
	}

	// Fiber
	app := http.NewApp(
		time.Duration(cfg.Server.ReadTimeout)*time.Second,
		time.Duration(cfg.Server.WriteTimeout)*time.Second,
	)
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "attractions", cfg.Attractions.Source)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	if tracker != nil {
		if err := tracker.Stop(shutdownCtx); err != nil {
			slog.Error("tracker stop", "error", err)
		}
	}
	if temporalWorker != nil {
		temporalWorker.Stop()
	}
	cancel()
	for _, p := range []*workerpool.Pool{trackingPool, rewardPool} {
		if err := p.Shutdown(shutdownCtx); err != nil {
			slog.Error("pool shutdown", "pool", p.Name(), "error", err)
		}
	}

	slog.Info("server stopped")
}

// startTemporal runs a tracking worker and starts one TrackingRoundWorkflow
// per interval until ctx is done.
func startTemporal(ctx context.Context, cfg *config.Config, users *usecases.UserService, tracking *usecases.TrackingService) (client.Client, worker.Worker, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("temporal client: %w", err)
	}

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.TrackingRoundWorkflow)
	w.RegisterActivity(&workflows.TrackingActivities{Users: users, Tracking: tracking})
	if err := w.Start(); err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("temporal worker: %w", err)
	}
	slog.Info("temporal worker started", "task_queue", cfg.Temporal.TaskQueue)

	go func() {
		ticker := time.NewTicker(cfg.Tracking.Interval)
		defer ticker.Stop()
		for {
			run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
				ID:                       fmt.Sprintf("tracking-round-%d", time.Now().Unix()),
				TaskQueue:                cfg.Temporal.TaskQueue,
				WorkflowExecutionTimeout: cfg.Tracking.RoundTimeout,
			}, workflows.TrackingRoundWorkflow, workflows.TrackingRoundInput{})
			if err != nil {
				slog.Warn("start tracking round failed", "error", err)
			} else {
				slog.Info("tracking round started", "workflow_id", run.GetID(), "run_id", run.GetRunID())
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return c, w, nil
}
