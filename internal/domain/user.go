package domain

import "time"

// UserRole distinguishes admins (who manage reference data and user
// accounts) from regular collectors.
type UserRole string

// User roles.
const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// SubscriptionState tracks a user's access to the application.
type SubscriptionState string

// Subscription states.
const (
	SubscriptionTrial   SubscriptionState = "trial"
	SubscriptionActive  SubscriptionState = "active"
	SubscriptionExpired SubscriptionState = "expired"
)

// User is an account in the system. Authentication is handled by an
// external identity provider; this record carries only the state the
// admin surface manages.
type User struct {
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	TrialEndsAt  *time.Time        `json:"trial_ends_at,omitempty"`
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	DisplayName  string            `json:"display_name,omitempty"`
	Role         UserRole          `json:"role"`
	Subscription SubscriptionState `json:"subscription"`
}

// TrialExpired reports whether the user is on a trial that has lapsed.
func (u *User) TrialExpired(now time.Time) bool {
	return u.Subscription == SubscriptionTrial &&
		u.TrialEndsAt != nil && now.After(*u.TrialEndsAt)
}

// CanAccess reports whether the user may use the application right now.
// Admins always can; everyone else needs an active subscription or a
// trial that has not run out.
func (u *User) CanAccess(now time.Time) bool {
	if u.Role == RoleAdmin {
		return true
	}
	switch u.Subscription {
	case SubscriptionActive:
		return true
	case SubscriptionTrial:
		return !u.TrialExpired(now)
	case SubscriptionExpired:
		return false
	}
	return false
}
