package http

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/tourguide/internal/pkg/metrics"
)

// LegacyRoutes are the query-string endpoints older clients still call.
var LegacyRoutes = []LegacyRoute{
	{Path: "/getLocation", Successor: "/v1/users/{name}/location"},
	{Path: "/getNearbyAttractions", Successor: "/v1/users/{name}/nearby-attractions"},
	{Path: "/getRewards", Successor: "/v1/users/{name}/rewards"},
	{Path: "/getTripDeals", Successor: "/v1/users/{name}/trip-deals"},
}

// NewApp creates a Fiber app using goccy/go-json for bodies.
func NewApp(readTimeout, writeTimeout time.Duration) *fiber.App {
	return fiber.New(fiber.Config{
		ReadTimeout:           readTimeout,
		WriteTimeout:          writeTimeout,
		BodyLimit:             1024 * 1024, // 1 MB max request body
		AppName:               "TourGuide API",
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	if deps.RequestsPerMinute > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        deps.RequestsPerMinute,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})
	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware(LegacyRoutes))

	app.Get("/", IndexHandler())
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	with := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, requestTimeout)
	}

	v1 := app.Group("/v1")
	v1.Get("/users", with(ListUsersHandler(deps)))
	v1.Post("/users", with(CreateUserHandler(deps)))
	v1.Get("/users/:name", with(GetUserHandler(deps)))
	v1.Get("/users/:name/location", with(GetLocationHandler(deps)))
	v1.Post("/users/:name/track", with(TrackUserHandler(deps)))
	v1.Get("/users/:name/nearby-attractions", with(NearbyAttractionsHandler(deps)))
	v1.Get("/users/:name/rewards", with(UserRewardsHandler(deps)))
	v1.Get("/users/:name/rewards/total", with(RewardTotalHandler(deps)))
	v1.Post("/users/:name/rewards/calculate", with(CalculateRewardsHandler(deps)))
	v1.Get("/users/:name/trip-deals", with(TripDealsHandler(deps)))
	v1.Get("/attractions/nearby", with(NearbyPointHandler(deps)))

	admin := v1.Group("/admin")
	admin.Get("/proximity", GetProximityHandler(deps))
	admin.Put("/proximity-buffer", SetProximityBufferHandler(deps))
	admin.Delete("/proximity-buffer", ResetProximityBufferHandler(deps))

	app.Get("/getLocation", with(GetLocationHandler(deps)))
	app.Get("/getNearbyAttractions", with(NearbyAttractionsHandler(deps)))
	app.Get("/getRewards", with(LegacyRewardsHandler(deps)))
	app.Get("/getTripDeals", with(TripDealsHandler(deps)))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app)

	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
