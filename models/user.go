package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a user
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// SubscriptionStatus represents the lifecycle state of a user's subscription
type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// UsageCounters tracks per-day resource consumption for trial users
type UsageCounters struct {
	CasesCreatedToday    int       `json:"cases_created_today"`
	NotesCreatedToday    int       `json:"notes_created_today"`
	BooksDownloadedToday int       `json:"books_downloaded_today"`
	LastResetDate        time.Time `json:"last_reset_date"`
}

// User represents a user entity
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Role         UserRole  `json:"role"`

	IsPaid       bool `json:"is_paid"`
	IsSubscribed bool `json:"is_subscribed"`

	SubscriptionStatus    SubscriptionStatus `json:"subscription_status"`
	TrialStartDate        time.Time          `json:"trial_start_date"`
	TrialEndDate          time.Time          `json:"trial_end_date"`
	SubscriptionStartDate *time.Time         `json:"subscription_start_date,omitempty"`
	SubscriptionEndDate   *time.Time         `json:"subscription_end_date,omitempty"`

	Usage UsageCounters `json:"usage"`

	StripeCustomerID   *string `json:"stripe_customer_id,omitempty"`
	LastPaymentEventID *string `json:"-"`

	// Onboarding profile
	FullName            *string `json:"full_name,omitempty"`
	PhoneNumber         *string `json:"phone_number,omitempty"`
	Province            *string `json:"province,omitempty"`
	City                *string `json:"city,omitempty"`
	CourtName           *string `json:"court_name,omitempty"`
	BarCouncilNumber    *string `json:"bar_council_number,omitempty"`
	ProfilePicture      *string `json:"profile_picture,omitempty"`
	OnboardingCompleted bool    `json:"onboarding_completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
