package models

import (
	"time"
)

// Frequency is the time scope of a challenge window.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Challenge is a time-scoped target a user opts into. Read-only from the
// engine's perspective. TargetValue is a count of eco items for daily and
// monthly challenges and kilograms of CO2 for weekly ones.
type Challenge struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Description      string    `json:"description" db:"description"`
	Frequency        Frequency `json:"frequency" db:"frequency"`
	TargetValue      float64   `json:"target_value" db:"target_value"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	BadgeName        string    `json:"badge_name" db:"badge_name"`
	BadgeDescription string    `json:"badge_description" db:"badge_description"`
	BadgeIconURL     string    `json:"badge_icon_url" db:"badge_icon_url"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Badge is immutable proof of challenge completion, issued at most once
// per (user, challenge) pair and never deleted or edited.
type Badge struct {
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	IconURL     string    `json:"icon_url" db:"icon_url"`
	ChallengeID string    `json:"challenge_id" db:"challenge_id"`
	DateEarned  time.Time `json:"date_earned" db:"date_earned"`
}
