package domain

import "time"

// LocationTracked is emitted after a fresh location is appended to a user's
// history.
type LocationTracked struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Location   GeoPoint  `json:"location"`
	TimeVisit  time.Time `json:"time_visited"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RewardEarned is emitted when a reward is stored on a user.
type RewardEarned struct {
	EventID        string    `json:"event_id"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	AttractionID   string    `json:"attraction_id"`
	AttractionName string    `json:"attraction_name"`
	RewardPoints   int       `json:"reward_points"`
	EarnedAt       time.Time `json:"earned_at"`
}

// TripQuery is what the pricing service needs to quote trip deals.
type TripQuery struct {
	APIKey           string
	UserID           string
	NumberOfAdults   int
	NumberOfChildren int
	TripDuration     int
	RewardPoints     int
}
