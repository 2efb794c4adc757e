package service

import (
	"context"
	"testing"
	"time"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newSubscriptionService(users *fakeUserStore, payments *fakePaymentStore) *SubscriptionService {
	return NewSubscriptionService(
		WithSubscriptionUserStore(users),
		WithSubscriptionPaymentStore(payments),
		WithSubscriptionClock(fixedClock),
	)
}

func TestActivateFromEvent(t *testing.T) {
	user := &models.User{Email: "a@b.pk", SubscriptionStatus: models.SubscriptionTrial}
	users := newFakeUserStore(user)
	svc := newSubscriptionService(users, newFakePaymentStore())

	result, err := svc.ActivateFromEvent(context.Background(), user.ID, "evt_123")
	require.NoError(t, err)
	assert.True(t, result.Activated)
	assert.False(t, result.AlreadyProcessed)

	updated := users.users[user.ID]
	assert.True(t, updated.IsPaid)
	assert.True(t, updated.IsSubscribed)
	assert.Equal(t, models.SubscriptionActive, updated.SubscriptionStatus)
	require.NotNil(t, updated.SubscriptionEndDate)
	assert.Equal(t, testNow.AddDate(0, 0, 30), *updated.SubscriptionEndDate)
}

func TestActivateFromEventIsIdempotent(t *testing.T) {
	user := &models.User{Email: "a@b.pk"}
	users := newFakeUserStore(user)
	svc := newSubscriptionService(users, newFakePaymentStore())

	first, err := svc.ActivateFromEvent(context.Background(), user.ID, "evt_123")
	require.NoError(t, err)
	assert.True(t, first.Activated)

	endAfterFirst := *users.users[user.ID].SubscriptionEndDate

	// Replaying the same event must not extend or re-activate
	second, err := svc.ActivateFromEvent(context.Background(), user.ID, "evt_123")
	require.NoError(t, err)
	assert.False(t, second.Activated)
	assert.True(t, second.AlreadyProcessed)
	assert.Equal(t, endAfterFirst, *users.users[user.ID].SubscriptionEndDate)

	// A genuinely new event activates again (renewal)
	third, err := svc.ActivateFromEvent(context.Background(), user.ID, "evt_456")
	require.NoError(t, err)
	assert.True(t, third.Activated)
}

func TestApprovePayment(t *testing.T) {
	user := &models.User{Email: "a@b.pk"}
	users := newFakeUserStore(user)
	payment := &models.Payment{UserID: user.ID, Status: models.PaymentPending, Method: models.PaymentMethodEasypaisa}
	payments := newFakePaymentStore(payment)
	svc := newSubscriptionService(users, payments)

	adminID := uuid.New()
	result, err := svc.ApprovePayment(context.Background(), payment.ID, adminID)
	require.NoError(t, err)
	assert.True(t, result.Activated)

	stored := payments.payments[payment.ID]
	assert.Equal(t, models.PaymentVerified, stored.Status)
	require.NotNil(t, stored.VerifiedBy)
	assert.Equal(t, adminID, *stored.VerifiedBy)

	assert.True(t, users.users[user.ID].IsSubscribed)

	// Approving the same payment again does not double-activate
	again, err := svc.ApprovePayment(context.Background(), payment.ID, adminID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyProcessed)
}

func TestApprovePaymentNotFound(t *testing.T) {
	svc := newSubscriptionService(newFakeUserStore(), newFakePaymentStore())

	_, err := svc.ApprovePayment(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestRejectPayment(t *testing.T) {
	user := &models.User{Email: "a@b.pk", SubscriptionStatus: models.SubscriptionTrial}
	users := newFakeUserStore(user)
	payment := &models.Payment{UserID: user.ID, Status: models.PaymentPending}
	payments := newFakePaymentStore(payment)
	svc := newSubscriptionService(users, payments)

	err := svc.RejectPayment(context.Background(), payment.ID, "receipt unreadable")
	require.NoError(t, err)

	stored := payments.payments[payment.ID]
	assert.Equal(t, models.PaymentFailed, stored.Status)
	require.NotNil(t, stored.FailureReason)
	assert.Equal(t, "receipt unreadable", *stored.FailureReason)

	// The user's subscription state is untouched
	assert.False(t, users.users[user.ID].IsSubscribed)
	assert.Equal(t, models.SubscriptionTrial, users.users[user.ID].SubscriptionStatus)
}

func TestRunExpirySweep(t *testing.T) {
	lapsedEnd := testNow.AddDate(0, 0, -1)
	activeEnd := testNow.AddDate(0, 0, 10)

	elapsedTrial := &models.User{
		Email:              "trial@b.pk",
		SubscriptionStatus: models.SubscriptionTrial,
		TrialEndDate:       testNow.AddDate(0, 0, -2),
	}
	freshTrial := &models.User{
		Email:              "fresh@b.pk",
		SubscriptionStatus: models.SubscriptionTrial,
		TrialEndDate:       testNow.AddDate(0, 0, 3),
	}
	lapsedSub := &models.User{
		Email:               "lapsed@b.pk",
		IsSubscribed:        true,
		SubscriptionStatus:  models.SubscriptionActive,
		SubscriptionEndDate: &lapsedEnd,
	}
	activeSub := &models.User{
		Email:               "active@b.pk",
		IsSubscribed:        true,
		SubscriptionStatus:  models.SubscriptionActive,
		SubscriptionEndDate: &activeEnd,
	}

	users := newFakeUserStore(elapsedTrial, freshTrial, lapsedSub, activeSub)
	svc := newSubscriptionService(users, newFakePaymentStore())

	require.NoError(t, svc.RunExpirySweep(context.Background()))

	assert.Equal(t, models.SubscriptionExpired, users.users[elapsedTrial.ID].SubscriptionStatus)
	assert.Equal(t, models.SubscriptionTrial, users.users[freshTrial.ID].SubscriptionStatus)
	assert.Equal(t, models.SubscriptionExpired, users.users[lapsedSub.ID].SubscriptionStatus)
	assert.False(t, users.users[lapsedSub.ID].IsSubscribed)
	assert.Equal(t, models.SubscriptionActive, users.users[activeSub.ID].SubscriptionStatus)
	assert.True(t, users.users[activeSub.ID].IsSubscribed)
}
