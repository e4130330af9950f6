package domain

import (
	"errors"
	"math"
	"time"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidLocation = errors.New("invalid location")
	ErrNoLocation      = errors.New("no location available")
	ErrUserExists      = errors.New("user already exists")
)

// Attraction is a named point of interest. Names are not guaranteed to be
// unique across the feed.
type Attraction struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	City     string   `json:"city,omitempty"`
	State    string   `json:"state,omitempty"`
	Location GeoPoint `json:"location"`
}

// VisitedLocation is a timestamped coordinate recorded for a user.
type VisitedLocation struct {
	UserID    string    `json:"user_id"`
	Location  GeoPoint  `json:"location"`
	TimeVisit time.Time `json:"time_visited"`
}

// UserReward records the points earned for one attraction.
type UserReward struct {
	VisitedLocation VisitedLocation `json:"visited_location"`
	Attraction      Attraction      `json:"attraction"`
	RewardPoints    int             `json:"reward_points"`
}

// AttractionDistance pairs an attraction with its distance in statute miles
// from some location.
type AttractionDistance struct {
	Attraction Attraction `json:"attraction"`
	Distance   float64    `json:"distance"`
}

// NearbyAttraction is the flattened view served to clients asking for the
// closest attractions to a user.
type NearbyAttraction struct {
	Name          string  `json:"name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	UserLatitude  float64 `json:"user_latitude"`
	UserLongitude float64 `json:"user_longitude"`
	Distance      float64 `json:"distance"`
	RewardPoints  int     `json:"reward_points"`
}

// UserPreferences drives trip pricing.
type UserPreferences struct {
	AttractionProximity int     `json:"attraction_proximity"`
	Currency            string  `json:"currency"`
	LowerPricePoint     float64 `json:"lower_price_point"`
	HighPricePoint      float64 `json:"high_price_point"`
	TripDuration        int     `json:"trip_duration"`
	TicketQuantity      int     `json:"ticket_quantity"`
	NumberOfAdults      int     `json:"number_of_adults"`
	NumberOfChildren    int     `json:"number_of_children"`
}

// DefaultPreferences returns the preferences a new user starts with.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		AttractionProximity: math.MaxInt32,
		Currency:            "USD",
		LowerPricePoint:     0,
		HighPricePoint:      math.MaxInt32,
		TripDuration:        1,
		TicketQuantity:      1,
		NumberOfAdults:      1,
		NumberOfChildren:    0,
	}
}

// Provider is a trip deal quoted by the pricing service.
type Provider struct {
	TripID string  `json:"trip_id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}
