package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"voiceoflaw-backend/entitlement"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrPaymentNotFound = errors.New("payment not found")

// SubscriptionService is the lifecycle controller for subscriptions:
// activation from payment events, admin verification of manual payments,
// and the periodic expiry sweep
type SubscriptionService struct {
	users    UserStore
	payments PaymentStore
	rules    entitlement.Rules
	now      func() time.Time
}

// SubscriptionServiceOption is a functional option for SubscriptionService
type SubscriptionServiceOption func(*SubscriptionService)

// WithSubscriptionUserStore sets the user store
func WithSubscriptionUserStore(store UserStore) SubscriptionServiceOption {
	return func(s *SubscriptionService) {
		s.users = store
	}
}

// WithSubscriptionPaymentStore sets the payment store
func WithSubscriptionPaymentStore(store PaymentStore) SubscriptionServiceOption {
	return func(s *SubscriptionService) {
		s.payments = store
	}
}

// WithSubscriptionRules sets the entitlement rules
func WithSubscriptionRules(rules entitlement.Rules) SubscriptionServiceOption {
	return func(s *SubscriptionService) {
		s.rules = rules
	}
}

// WithSubscriptionClock overrides the clock, for tests
func WithSubscriptionClock(now func() time.Time) SubscriptionServiceOption {
	return func(s *SubscriptionService) {
		s.now = now
	}
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(opts ...SubscriptionServiceOption) *SubscriptionService {
	s := &SubscriptionService{
		rules: entitlement.DefaultRules(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ActivateResult reports whether an activation was applied or skipped
type ActivateResult struct {
	Activated        bool
	AlreadyProcessed bool
}

// ActivateFromEvent activates a user's subscription in response to a payment
// event. The update is keyed on eventID, so delivering the same event twice
// activates at most once.
func (s *SubscriptionService) ActivateFromEvent(ctx context.Context, userID uuid.UUID, eventID string) (*ActivateResult, error) {
	if s.users == nil {
		return nil, errors.New("subscription service not configured")
	}

	start, end := s.rules.SubscriptionWindow(s.now().UTC())
	applied, err := s.users.ActivateSubscription(ctx, userID, eventID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to activate subscription: %w", err)
	}
	if !applied {
		log.Printf("Payment event %s for user %s already processed, skipping", eventID, userID)
		return &ActivateResult{AlreadyProcessed: true}, nil
	}
	return &ActivateResult{Activated: true}, nil
}

// ApprovePayment marks a manual payment as verified and activates the
// paying user's subscription. The activation event is derived from the
// payment ID, so approving twice activates once.
func (s *SubscriptionService) ApprovePayment(ctx context.Context, paymentID, adminID uuid.UUID) (*ActivateResult, error) {
	if s.users == nil || s.payments == nil {
		return nil, errors.New("subscription service not configured")
	}

	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if err := s.payments.MarkVerified(ctx, paymentID, adminID, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to mark payment verified: %w", err)
	}

	return s.ActivateFromEvent(ctx, payment.UserID, "admin:"+paymentID.String())
}

// RejectPayment marks a manual payment as failed. The user's subscription
// state is untouched.
func (s *SubscriptionService) RejectPayment(ctx context.Context, paymentID uuid.UUID, reason string) error {
	if s.payments == nil {
		return errors.New("subscription service not configured")
	}

	if _, err := s.payments.GetByID(ctx, paymentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPaymentNotFound
		}
		return err
	}

	return s.payments.MarkFailed(ctx, paymentID, reason)
}

// RunExpirySweep expires elapsed trials and lapsed subscriptions in two
// batch updates. A webhook activating a user mid-sweep wins or loses on
// row order; the next sweep converges either way.
func (s *SubscriptionService) RunExpirySweep(ctx context.Context) error {
	if s.users == nil {
		return errors.New("subscription service not configured")
	}

	now := s.now().UTC()

	trials, err := s.users.ExpireTrials(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to expire trials: %w", err)
	}
	subs, err := s.users.ExpireSubscriptions(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to expire subscriptions: %w", err)
	}

	if trials > 0 || subs > 0 {
		log.Printf("Expiry sweep: %d trials expired, %d subscriptions expired", trials, subs)
	}
	return nil
}

// StartExpirySweep runs the expiry sweep immediately and then on every tick
// of interval until ctx is cancelled
func (s *SubscriptionService) StartExpirySweep(ctx context.Context, interval time.Duration) {
	if err := s.RunExpirySweep(ctx); err != nil {
		log.Printf("Expiry sweep failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunExpirySweep(ctx); err != nil {
				log.Printf("Expiry sweep failed: %v", err)
			}
		}
	}
}
