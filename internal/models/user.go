package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents a user account
type User struct {
	ID          int        `json:"id" db:"id"`
	Username    string     `json:"username" db:"username"`
	Email       string     `json:"email" db:"email"`
	Password    string     `json:"-" db:"password_hash"` // Never expose in JSON
	DisplayName string     `json:"display_name" db:"display_name"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at" db:"last_login_at"`
	IsActive    bool       `json:"is_active" db:"is_active"`
}

// CreateUserRequest represents the request to create a new user
type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=20"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=50"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// EcoStats are the cumulative sustainability metrics for one user.
// EcoScore is a running average biased toward recent orders, not a true
// mean of all order scores.
type EcoStats struct {
	UserID      int     `json:"user_id" db:"user_id"`
	CarbonSaved float64 `json:"carbon_saved" db:"carbon_saved"`
	EcoScore    float64 `json:"eco_score" db:"eco_score"`
	MoneySaved  float64 `json:"money_saved" db:"money_saved"`
}

// EcoProfile is the per-user aggregate the challenge engine operates on:
// full order history, pending challenge memberships, earned badges and
// cumulative stats, loaded and committed as one unit. Invariant: a
// challenge id is either in CurrentChallenges or among the badges, never
// both.
type EcoProfile struct {
	UserID            int
	Orders            []OrderRecord
	CurrentChallenges []string
	Badges            []Badge
	CarbonSaved       float64
	EcoScore          float64
	MoneySaved        float64
}

// InChallenge reports whether the user has joined and not yet completed
// the given challenge.
func (p *EcoProfile) InChallenge(challengeID string) bool {
	for _, id := range p.CurrentChallenges {
		if id == challengeID {
			return true
		}
	}
	return false
}

// HasBadge reports whether the challenge was already completed.
func (p *EcoProfile) HasBadge(challengeID string) bool {
	for _, b := range p.Badges {
		if b.ChallengeID == challengeID {
			return true
		}
	}
	return false
}

// RemoveChallenge drops a challenge id from the current set.
func (p *EcoProfile) RemoveChallenge(challengeID string) {
	kept := p.CurrentChallenges[:0]
	for _, id := range p.CurrentChallenges {
		if id != challengeID {
			kept = append(kept, id)
		}
	}
	p.CurrentChallenges = kept
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies a password against the user's hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// ProfileUpdateRequest represents a profile update request
type ProfileUpdateRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=1,max=50"`
	Email       string `json:"email" validate:"required,email"`
}

// PasswordChangeRequest represents a password change request
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}
