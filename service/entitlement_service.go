package service

import (
	"context"
	"errors"
	"time"

	"voiceoflaw-backend/entitlement"
	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrQuotaExceeded        = errors.New("daily limit reached")
	ErrSubscriptionRequired = errors.New("active subscription or trial required")
)

// EntitlementService orchestrates quota checks: lazy daily reset, the pure
// decision, and the atomic counter increment for trial users
type EntitlementService struct {
	users UserStore
	rules entitlement.Rules
	now   func() time.Time
}

// EntitlementServiceOption is a functional option for EntitlementService
type EntitlementServiceOption func(*EntitlementService)

// WithEntitlementUserStore sets the user store
func WithEntitlementUserStore(store UserStore) EntitlementServiceOption {
	return func(s *EntitlementService) {
		s.users = store
	}
}

// WithEntitlementRules sets the entitlement rules
func WithEntitlementRules(rules entitlement.Rules) EntitlementServiceOption {
	return func(s *EntitlementService) {
		s.rules = rules
	}
}

// WithEntitlementClock overrides the clock, for tests
func WithEntitlementClock(now func() time.Time) EntitlementServiceOption {
	return func(s *EntitlementService) {
		s.now = now
	}
}

// NewEntitlementService creates a new entitlement service
func NewEntitlementService(opts ...EntitlementServiceOption) *EntitlementService {
	s := &EntitlementService{
		rules: entitlement.DefaultRules(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// loadFresh loads the user and performs the lazy daily reset if the counters
// are from an earlier UTC day. The reset is persisted before any check reads
// the counters.
func (s *EntitlementService) loadFresh(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := s.now().UTC()
	if entitlement.NeedsDailyReset(user, now) {
		if err := s.users.ResetDailyCounters(ctx, userID, now); err != nil {
			return nil, err
		}
		user.Usage = models.UsageCounters{LastResetDate: now}
	}
	return user, nil
}

// Check returns the quota decision for a resource without consuming anything
func (s *EntitlementService) Check(ctx context.Context, userID uuid.UUID, resource entitlement.Resource) (entitlement.Decision, error) {
	if s.users == nil {
		return entitlement.Decision{}, errors.New("entitlement service not configured")
	}

	user, err := s.loadFresh(ctx, userID)
	if err != nil {
		return entitlement.Decision{}, err
	}
	return s.decide(user, resource), nil
}

// Consume performs the quota check and, for trial users, atomically consumes
// one unit. The returned decision has Allowed set to false when the caller
// must refuse the operation; the decision then carries the limit and usage
// for the upgrade prompt.
func (s *EntitlementService) Consume(ctx context.Context, userID uuid.UUID, resource entitlement.Resource) (entitlement.Decision, error) {
	if s.users == nil {
		return entitlement.Decision{}, errors.New("entitlement service not configured")
	}

	user, err := s.loadFresh(ctx, userID)
	if err != nil {
		return entitlement.Decision{}, err
	}

	now := s.now().UTC()
	decision := s.decide(user, resource)
	if !decision.Allowed {
		return decision, nil
	}

	// Admins and active subscribers are unlimited; nothing to count.
	if user.IsAdmin() || !s.rules.IsTrialActive(user, now) {
		return decision, nil
	}

	applied, err := s.users.IncrementDailyCounter(ctx, userID, string(resource), s.rules.DailyLimit)
	if err != nil {
		return entitlement.Decision{}, err
	}
	if !applied {
		// A concurrent request took the last unit between the read and the
		// conditional update.
		return entitlement.Decision{
			Allowed:    false,
			Resource:   resource,
			DailyLimit: s.rules.DailyLimit,
			UsedToday:  s.rules.DailyLimit,
		}, nil
	}
	return decision, nil
}

// Refund returns the quota unit taken by Consume after the gated operation
// fails, so a failed create or download does not burn the user's allowance.
// Admins and active subscribers never consumed a unit, so nothing is
// returned for them.
func (s *EntitlementService) Refund(ctx context.Context, userID uuid.UUID, resource entitlement.Resource) error {
	if s.users == nil {
		return errors.New("entitlement service not configured")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	if user.IsAdmin() || !s.rules.IsTrialActive(user, s.now().UTC()) {
		return nil
	}
	return s.users.DecrementDailyCounter(ctx, userID, string(resource))
}

func (s *EntitlementService) decide(user *models.User, resource entitlement.Resource) entitlement.Decision {
	now := s.now().UTC()
	switch resource {
	case entitlement.ResourceCases:
		return s.rules.CanCreateCase(user, now)
	case entitlement.ResourceNotes:
		return s.rules.CanCreateNote(user, now)
	case entitlement.ResourceBooks:
		return s.rules.CanDownloadBook(user, now)
	}
	return entitlement.Decision{Allowed: false, Resource: resource}
}

// RequireActiveSubscription returns ErrSubscriptionRequired unless the user
// is an admin, an active subscriber, or inside the trial window
func (s *EntitlementService) RequireActiveSubscription(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if s.users == nil {
		return nil, errors.New("entitlement service not configured")
	}

	user, err := s.loadFresh(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !s.rules.HasActiveSubscription(user, s.now().UTC()) {
		return nil, ErrSubscriptionRequired
	}
	return user, nil
}
