// Package domain holds the core types of the Spikewise habit tracker.
// Entities here are plain data — no storage or transport dependency.
package domain

import "time"

// ActivityLevel describes the user's self-reported baseline activity.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// DefaultTargetSugar is the daily sugar budget in grams assigned at signup.
const DefaultTargetSugar = 30

// User is the identity and running reward state for one device.
// No login is required — DeviceID is the whole identity.
type User struct {
	DeviceID      string        `json:"device_id"`
	Age           int           `json:"age"`
	Gender        string        `json:"gender"`
	HeightCM      float64       `json:"height_cm"`
	WeightKG      float64       `json:"weight_kg"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	TargetSugar   int           `json:"target_sugar"`

	// BMI is a snapshot computed at registration from height/weight.
	// The insight engine recomputes its own value per event.
	BMI float64 `json:"bmi"`

	Streak      int       `json:"streak"`
	Points      int64     `json:"points"`
	LastLogDate time.Time `json:"last_log_date"`
	Badges      []Badge   `json:"badges"`

	CreatedAt time.Time `json:"created_at"`
}

// HasBadge reports whether the user already owns a badge by name.
func (u *User) HasBadge(name string) bool {
	for _, b := range u.Badges {
		if b.Name == name {
			return true
		}
	}
	return false
}

// Badge is a one-time reward for reaching a streak milestone.
// The badge set is unique by Name and append-only.
type Badge struct {
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	AwardedAt time.Time `json:"awarded_at"`
}

// Milestone maps an exact streak value to a badge.
type Milestone struct {
	Streak int
	Name   string
	Icon   string
}
