package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/tourguide/internal/core/domain"
)

const maxNearbyLimit = 50

var validate = validator.New(validator.WithRequiredStructEnabled())

// userName reads the user from the :name route param, or from ?userName= on
// legacy routes.
func userName(c *fiber.Ctx) string {
	if n := c.Params("name"); n != "" {
		return strings.TrimSpace(n)
	}
	return strings.TrimSpace(c.Query("userName"))
}

func lookupUser(c *fiber.Ctx, deps *Dependencies) (*domain.User, error) {
	name := userName(c)
	if name == "" {
		return nil, errBadRequest(c, "user name is required")
	}
	user, err := deps.Users.GetUser(c.UserContext(), name)
	if err != nil {
		return nil, errFromService(c, err)
	}
	return user, nil
}

// withUser resolves the user before calling fn. Lookup failures have already
// been written to the response.
func withUser(deps *Dependencies, fn func(c *fiber.Ctx, user *domain.User) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := lookupUser(c, deps)
		if user == nil {
			return err
		}
		return fn(c, user)
	}
}

// IndexHandler greets clients.
func IndexHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendString("Greetings from TourGuide!")
	}
}

// userView is the public representation of a user.
type userView struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Phone        string                  `json:"phone,omitempty"`
	Email        string                  `json:"email,omitempty"`
	Preferences  domain.UserPreferences  `json:"preferences"`
	LastLocation *domain.VisitedLocation `json:"last_location,omitempty"`
	RewardPoints int                     `json:"reward_points"`
}

func newUserView(u *domain.User) userView {
	v := userView{
		ID:           u.ID,
		Name:         u.Name,
		Phone:        u.Phone,
		Email:        u.Email,
		Preferences:  u.Preferences,
		RewardPoints: u.RewardPointsTotal(),
	}
	if vl, ok := u.LastVisitedLocation(); ok {
		v.LastLocation = &vl
	}
	return v
}

// ListUsersHandler returns registered users, paginated.
func ListUsersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := deps.Users.AllUsers(c.UserContext())
		if err != nil {
			return errFromService(c, err)
		}
		views := make([]userView, len(users))
		for i, u := range users {
			views[i] = newUserView(u)
		}
		return paginated(c, views)
	}
}

// GetUserHandler returns one user.
func GetUserHandler(deps *Dependencies) fiber.Handler {
	return withUser(deps, func(c *fiber.Ctx, user *domain.User) error {
		return c.JSON(newUserView(user))
	})
}

type preferencesRequest struct {
	AttractionProximity int     `json:"attraction_proximity" validate:"gte=0"`
	Currency            string  `json:"currency" validate:"omitempty,len=3"`
	LowerPricePoint     float64 `json:"lower_price_point" validate:"gte=0"`
	HighPricePoint      float64 `json:"high_price_point" validate:"gtefield=LowerPricePoint"`
	TripDuration        int     `json:"trip_duration" validate:"gte=1"`
	TicketQuantity      int     `json:"ticket_quantity" validate:"gte=1"`
	NumberOfAdults      int     `json:"number_of_adults" validate:"gte=1"`
	NumberOfChildren    int     `json:"number_of_children" validate:"gte=0"`
}

type createUserRequest struct {
	Name        string              `json:"name" validate:"required,max=64,excludesall=/?&#"`
	Phone       string              `json:"phone" validate:"omitempty,max=32"`
	Email       string              `json:"email" validate:"omitempty,email"`
	Preferences *preferencesRequest `json:"preferences" validate:"omitempty"`
}

// CreateUserHandler registers a user. An existing name is a conflict.
func CreateUserHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createUserRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		req.Name = strings.TrimSpace(req.Name)
		if err := validate.Struct(req); err != nil {
			return errBadRequest(c, err.Error())
		}

		user := domain.NewUser("", req.Name, req.Phone, req.Email)
		if p := req.Preferences; p != nil {
			user.Preferences = domain.UserPreferences{
				AttractionProximity: p.AttractionProximity,
				Currency:            p.Currency,
				LowerPricePoint:     p.LowerPricePoint,
				HighPricePoint:      p.HighPricePoint,
				TripDuration:        p.TripDuration,
				TicketQuantity:      p.TicketQuantity,
				NumberOfAdults:      p.NumberOfAdults,
				NumberOfChildren:    p.NumberOfChildren,
			}
			if user.Preferences.Currency == "" {
				user.Preferences.Currency = domain.DefaultPreferences().Currency
			}
		}

		if err := deps.Users.AddUser(c.UserContext(), user); err != nil {
			return errFromService(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(newUserView(user))
	}
}

// GetLocationHandler returns the user's last known location, tracking the
// user first if there is none.
func GetLocationHandler(deps *Dependencies) fiber.Handler {
	return withUser(deps, func(c *fiber.Ctx, user *domain.User) error {
		vl, err := deps.Tracking.GetUserLocation(c.UserContext(), user)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(vl)
	})
}

// TrackUserHandler runs one tracking cycle for the user.
func TrackUserHandler(deps *Dependencies) fiber.Handler {
	return withUser(deps, func(c *fiber.Ctx, user *domain.User) error {
		vl, err := deps.Tracking.TrackLocation(c.UserContext(), user)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(fiber.Map{
			"visited_location": vl,
			"reward_points":    user.RewardPointsTotal(),
			"rewards":          len(user.Rewards()),
		})
	})
}

// NearbyAttractionsHandler returns the closest attractions to the user, with
// the points each would earn.
func NearbyAttractionsHandler(deps *Dependencies) fiber.Handler {
	return withUser(deps, func(c *fiber.Ctx, user *domain.User) error {
		nearby, err := deps.Attractions.NearbyAttractions(c.UserContext(), user)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(nearby)
	})
}

// UserRewardsHandler returns the user's rewards, paginated.
func UserRewardsHandler(deps *Dependencies) fiber.Handler {
	return withUser(deps, func(c *fiber.Ctx, user *domain.User) error {
		return paginated(c, deps.Tracking.UserRewards(user))
	})
}

// LegacyRewardsHandler returns every reward as a bare list.
func LegacyRewardsHandler(deps *Dependencies) fiber.Handler {
	return withUser(deps, func(c *fiber.Ctx, user *domain.User) error {
		return c.JSON(deps.Tracking.UserRewards(user))
	})
}

// RewardTotalHandler returns the user's accumulated points.
func RewardTotalHandler(deps *Dependencies) fiber.Handler {
	return withUser(deps, func(c *fiber.Ctx, user *domain.User) error {
		return c.JSON(fiber.Map{
			"user":          user.Name,
			"reward_points": deps.Tracking.TripRewardTotal(user),
		})
	})
}

// CalculateRewardsHandler recalculates rewards from the user's history.
func CalculateRewardsHandler(deps *Dependencies) fiber.Handler {
	return withUser(deps, func(c *fiber.Ctx, user *domain.User) error {
		report, err := deps.Rewards.CalculateRewards(c.UserContext(), user)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(report)
	})
}

// TripDealsHandler quotes trip deals for the user.
func TripDealsHandler(deps *Dependencies) fiber.Handler {
	return withUser(deps, func(c *fiber.Ctx, user *domain.User) error {
		providers, err := deps.Trips.GetTripDeals(c.UserContext(), user)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(providers)
	})
}

// NearbyPointHandler ranks attractions around a coordinate. With
// visible=true it returns every attraction within the visibility range
// instead of the closest few.
func NearbyPointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
		lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
		if latErr != nil || lonErr != nil {
			return errBadRequest(c, "lat and lon must be numbers")
		}
		loc := domain.GeoPoint{Lat: lat, Lon: lon}
		if !loc.Valid() {
			return errBadRequest(c, "lat must be within [-90, 90] and lon within [-180, 180]")
		}

		if c.QueryBool("visible") {
			visible, err := deps.Attractions.VisibleAttractions(c.UserContext(), loc)
			if err != nil {
				return errFromService(c, err)
			}
			return c.JSON(visible)
		}

		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 || n > maxNearbyLimit {
				return errBadRequest(c, "limit must be between 0 and 50; 0 uses the default")
			}
			limit = n
		}
		ranked, err := deps.Attractions.RankNearestAttractions(c.UserContext(), loc, limit)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(ranked)
	}
}

type proximityView struct {
	RewardBufferMiles    float64 `json:"reward_buffer_miles"`
	VisibilityRangeMiles float64 `json:"visibility_range_miles"`
}

func currentProximity(deps *Dependencies) proximityView {
	return proximityView{
		RewardBufferMiles:    deps.Policy.RewardBuffer(),
		VisibilityRangeMiles: deps.Policy.VisibilityRange(),
	}
}

// GetProximityHandler returns the active proximity thresholds.
func GetProximityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(currentProximity(deps))
	}
}

type setBufferRequest struct {
	Miles *float64 `json:"miles" validate:"required,gte=0"`
}

// SetProximityBufferHandler changes the reward buffer for subsequent
// calculations.
func SetProximityBufferHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req setBufferRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return errBadRequest(c, err.Error())
		}
		if err := deps.Policy.SetRewardBuffer(*req.Miles); err != nil {
			return errFromService(c, err)
		}
		LoggerFromCtx(c.UserContext()).Info("reward buffer changed", "miles", *req.Miles)
		return c.JSON(currentProximity(deps))
	}
}

// ResetProximityBufferHandler restores the configured reward buffer.
func ResetProximityBufferHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.Policy.ResetRewardBuffer()
		LoggerFromCtx(c.UserContext()).Info("reward buffer reset", "miles", deps.Policy.RewardBuffer())
		return c.JSON(currentProximity(deps))
	}
}

// requestTimeout bounds user routes. Reward calculation alone may wait up to
// its own timeout, so this sits above it.
const requestTimeout = 90 * time.Second
