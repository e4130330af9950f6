package domain

import (
	"sync"
)

// User owns its location history and reward collection. Both are guarded by
// separate locks so that history appends never contend with reward inserts.
type User struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone,omitempty"`
	Email       string          `json:"email,omitempty"`
	Preferences UserPreferences `json:"preferences"`

	historyMu sync.RWMutex
	history   []VisitedLocation

	rewardsMu   sync.RWMutex
	rewards     []UserReward
	rewardIndex map[string]int

	dealsMu   sync.RWMutex
	tripDeals []Provider
}

// NewUser creates a user with default preferences and empty history.
func NewUser(id, name, phone, email string) *User {
	return &User{
		ID:          id,
		Name:        name,
		Phone:       phone,
		Email:       email,
		Preferences: DefaultPreferences(),
		rewardIndex: make(map[string]int),
	}
}

// AddVisitedLocation appends vl to the history.
func (u *User) AddVisitedLocation(vl VisitedLocation) {
	u.historyMu.Lock()
	u.history = append(u.history, vl)
	u.historyMu.Unlock()
}

// VisitedLocations returns a copy of the history in append order.
func (u *User) VisitedLocations() []VisitedLocation {
	u.historyMu.RLock()
	defer u.historyMu.RUnlock()
	out := make([]VisitedLocation, len(u.history))
	copy(out, u.history)
	return out
}

// LastVisitedLocation returns the most recently appended location.
func (u *User) LastVisitedLocation() (VisitedLocation, bool) {
	u.historyMu.RLock()
	defer u.historyMu.RUnlock()
	if len(u.history) == 0 {
		return VisitedLocation{}, false
	}
	return u.history[len(u.history)-1], true
}

// AddReward inserts r under key unless a reward already exists for that key.
// It reports whether r was stored. The check and the insert happen under one
// lock, so concurrent callers racing on the same key keep exactly one entry.
func (u *User) AddReward(key string, r UserReward) bool {
	u.rewardsMu.Lock()
	defer u.rewardsMu.Unlock()
	if u.rewardIndex == nil {
		u.rewardIndex = make(map[string]int)
	}
	if _, exists := u.rewardIndex[key]; exists {
		return false
	}
	u.rewardIndex[key] = len(u.rewards)
	u.rewards = append(u.rewards, r)
	return true
}

// HasReward reports whether a reward is stored under key.
func (u *User) HasReward(key string) bool {
	u.rewardsMu.RLock()
	defer u.rewardsMu.RUnlock()
	_, ok := u.rewardIndex[key]
	return ok
}

// RewardKeys returns a snapshot of the keys already rewarded.
func (u *User) RewardKeys() map[string]struct{} {
	u.rewardsMu.RLock()
	defer u.rewardsMu.RUnlock()
	keys := make(map[string]struct{}, len(u.rewardIndex))
	for k := range u.rewardIndex {
		keys[k] = struct{}{}
	}
	return keys
}

// Rewards returns a copy of the reward collection in insertion order.
func (u *User) Rewards() []UserReward {
	u.rewardsMu.RLock()
	defer u.rewardsMu.RUnlock()
	out := make([]UserReward, len(u.rewards))
	copy(out, u.rewards)
	return out
}

// RewardPointsTotal sums the points of every stored reward.
func (u *User) RewardPointsTotal() int {
	u.rewardsMu.RLock()
	defer u.rewardsMu.RUnlock()
	total := 0
	for _, r := range u.rewards {
		total += r.RewardPoints
	}
	return total
}

// SetTripDeals replaces the last quoted trip deals.
func (u *User) SetTripDeals(deals []Provider) {
	u.dealsMu.Lock()
	u.tripDeals = append([]Provider(nil), deals...)
	u.dealsMu.Unlock()
}

// TripDeals returns the last quoted trip deals.
func (u *User) TripDeals() []Provider {
	u.dealsMu.RLock()
	defer u.dealsMu.RUnlock()
	return append([]Provider(nil), u.tripDeals...)
}
