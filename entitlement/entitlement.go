// Package entitlement contains the pure access-control decisions for trial
// windows, subscriptions and per-day quotas. Nothing here touches the
// database; callers pass a user snapshot and the current time.
package entitlement

import (
	"time"

	"voiceoflaw-backend/models"
)

// Resource names a quota-limited resource
type Resource string

const (
	ResourceCases Resource = "cases"
	ResourceNotes Resource = "notes"
	ResourceBooks Resource = "books"
)

// Rules holds the configurable entitlement parameters
type Rules struct {
	TrialDays        int
	DailyLimit       int
	SubscriptionDays int
}

// DefaultRules matches the production configuration defaults
func DefaultRules() Rules {
	return Rules{
		TrialDays:        7,
		DailyLimit:       2,
		SubscriptionDays: 30,
	}
}

// Decision is the outcome of a quota check. When Allowed is false, the
// remaining fields carry what the client needs to render an upgrade prompt.
type Decision struct {
	Allowed    bool     `json:"allowed"`
	Resource   Resource `json:"resource,omitempty"`
	DailyLimit int      `json:"daily_limit,omitempty"`
	UsedToday  int      `json:"used_today,omitempty"`
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(res Resource, limit, used int) Decision {
	return Decision{Allowed: false, Resource: res, DailyLimit: limit, UsedToday: used}
}

// IsTrialActive reports whether the user's trial window covers now.
// Subscribed and admin users are not on trial.
func (r Rules) IsTrialActive(u *models.User, now time.Time) bool {
	if u.IsAdmin() || u.IsSubscribed {
		return false
	}
	if u.SubscriptionStatus != models.SubscriptionTrial {
		return false
	}
	return !now.Before(u.TrialStartDate) && now.Before(u.TrialEndDate)
}

// HasActiveSubscription reports whether the user can use subscriber-only
// features right now. Admins always can; trial users can while the trial
// window is open.
func (r Rules) HasActiveSubscription(u *models.User, now time.Time) bool {
	if u.IsAdmin() {
		return true
	}
	if u.IsSubscribed && u.SubscriptionStatus == models.SubscriptionActive {
		if u.SubscriptionEndDate == nil || now.Before(*u.SubscriptionEndDate) {
			return true
		}
	}
	return r.IsTrialActive(u, now)
}

// NeedsDailyReset reports whether the usage counters belong to an earlier
// UTC calendar day than now.
func NeedsDailyReset(u *models.User, now time.Time) bool {
	last := u.Usage.LastResetDate.UTC()
	today := now.UTC()
	return last.Year() != today.Year() || last.YearDay() != today.YearDay()
}

// CanCreateCase decides whether the user may create a case right now
func (r Rules) CanCreateCase(u *models.User, now time.Time) Decision {
	return r.check(u, now, ResourceCases, u.Usage.CasesCreatedToday)
}

// CanCreateNote decides whether the user may create a note right now
func (r Rules) CanCreateNote(u *models.User, now time.Time) Decision {
	return r.check(u, now, ResourceNotes, u.Usage.NotesCreatedToday)
}

// CanDownloadBook decides whether the user may download a book right now
func (r Rules) CanDownloadBook(u *models.User, now time.Time) Decision {
	return r.check(u, now, ResourceBooks, u.Usage.BooksDownloadedToday)
}

// check applies the quota ladder: admins and subscribers are unlimited,
// active trial users get the daily limit, everyone else gets nothing.
func (r Rules) check(u *models.User, now time.Time, res Resource, used int) Decision {
	if u.IsAdmin() {
		return allow()
	}
	if u.IsSubscribed && u.SubscriptionStatus == models.SubscriptionActive {
		if u.SubscriptionEndDate == nil || now.Before(*u.SubscriptionEndDate) {
			return allow()
		}
	}
	if !r.IsTrialActive(u, now) {
		return deny(res, r.DailyLimit, used)
	}
	if NeedsDailyReset(u, now) {
		// Counters are from a previous day; the service layer persists the
		// reset before calling here, but a fresh day always has headroom.
		used = 0
	}
	if used >= r.DailyLimit {
		return deny(res, r.DailyLimit, used)
	}
	return allow()
}

// TrialWindow returns the start and end of a trial beginning now
func (r Rules) TrialWindow(now time.Time) (start, end time.Time) {
	start = now.UTC()
	end = start.AddDate(0, 0, r.TrialDays)
	return start, end
}

// SubscriptionWindow returns the start and end of a subscription beginning now
func (r Rules) SubscriptionWindow(now time.Time) (start, end time.Time) {
	start = now.UTC()
	end = start.AddDate(0, 0, r.SubscriptionDays)
	return start, end
}
