package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_CanAccess(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"active subscriber", &User{Subscription: SubscriptionActive}, true},
		{"expired subscriber", &User{Subscription: SubscriptionExpired}, false},
		{"trial still running", &User{Subscription: SubscriptionTrial, TrialEndsAt: &future}, true},
		{"trial lapsed", &User{Subscription: SubscriptionTrial, TrialEndsAt: &past}, false},
		{"trial without end date never lapses", &User{Subscription: SubscriptionTrial}, true},
		{"admin bypasses subscription", &User{Role: RoleAdmin, Subscription: SubscriptionExpired}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.CanAccess(now))
		})
	}
}

func TestUser_TrialExpired(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	assert.True(t, (&User{Subscription: SubscriptionTrial, TrialEndsAt: &past}).TrialExpired(now))
	assert.False(t, (&User{Subscription: SubscriptionActive, TrialEndsAt: &past}).TrialExpired(now))
	assert.False(t, (&User{Subscription: SubscriptionTrial}).TrialExpired(now))
}
