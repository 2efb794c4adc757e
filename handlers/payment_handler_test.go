package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voiceoflaw-backend/config"
	"voiceoflaw-backend/models"
	"voiceoflaw-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stripe/stripe-go/v82"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

// webhookUserStore is the minimal in-memory user store the webhook path needs
type webhookUserStore struct {
	users map[uuid.UUID]*models.User
}

func newWebhookUserStore(users ...*models.User) *webhookUserStore {
	s := &webhookUserStore{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		s.users[u.ID] = u
	}
	return s
}

func (s *webhookUserStore) Create(_ context.Context, user *models.User) error {
	user.ID = uuid.New()
	s.users[user.ID] = user
	return nil
}

func (s *webhookUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (s *webhookUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *webhookUserStore) List(_ context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range s.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (s *webhookUserStore) UpdateProfile(_ context.Context, user *models.User) error {
	existing, ok := s.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	*existing = *user
	return nil
}

func (s *webhookUserStore) ResetDailyCounters(_ context.Context, userID uuid.UUID, resetDate time.Time) error {
	u, ok := s.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Usage = models.UsageCounters{LastResetDate: resetDate}
	return nil
}

func (s *webhookUserStore) IncrementDailyCounter(_ context.Context, _ uuid.UUID, _ string, _ int) (bool, error) {
	return true, nil
}

func (s *webhookUserStore) DecrementDailyCounter(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

func (s *webhookUserStore) ActivateSubscription(_ context.Context, userID uuid.UUID, eventID string, start, end time.Time) (bool, error) {
	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	if u.LastPaymentEventID != nil && *u.LastPaymentEventID == eventID {
		return false, nil
	}
	u.IsPaid = true
	u.IsSubscribed = true
	u.SubscriptionStatus = models.SubscriptionActive
	u.SubscriptionStartDate = &start
	u.SubscriptionEndDate = &end
	u.LastPaymentEventID = &eventID
	return true, nil
}

func (s *webhookUserStore) ExpireTrials(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (s *webhookUserStore) ExpireSubscriptions(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// webhookPaymentStore is the minimal in-memory payment store for the same path
type webhookPaymentStore struct {
	payments map[uuid.UUID]*models.Payment
}

func newWebhookPaymentStore(payments ...*models.Payment) *webhookPaymentStore {
	s := &webhookPaymentStore{payments: make(map[uuid.UUID]*models.Payment)}
	for _, p := range payments {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		s.payments[p.ID] = p
	}
	return s
}

func (s *webhookPaymentStore) Create(_ context.Context, p *models.Payment) error {
	p.ID = uuid.New()
	s.payments[p.ID] = p
	return nil
}

func (s *webhookPaymentStore) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	p, ok := s.payments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (s *webhookPaymentStore) ListByUserID(_ context.Context, userID uuid.UUID) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range s.payments {
		if p.UserID == userID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *webhookPaymentStore) ListPending(_ context.Context) ([]*models.Payment, error) {
	return nil, nil
}

func (s *webhookPaymentStore) MarkVerified(_ context.Context, id, adminID uuid.UUID, verifiedAt time.Time) error {
	p, ok := s.payments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Status = models.PaymentVerified
	p.VerifiedBy = &adminID
	p.VerifiedAt = &verifiedAt
	return nil
}

func (s *webhookPaymentStore) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	p, ok := s.payments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Status = models.PaymentFailed
	p.FailureReason = &reason
	return nil
}

func (s *webhookPaymentStore) MarkCompletedBySession(_ context.Context, sessionID string) error {
	for _, p := range s.payments {
		if p.StripeSessionID != nil && *p.StripeSessionID == sessionID && p.Status == models.PaymentPending {
			p.Status = models.PaymentCompleted
		}
	}
	return nil
}

func newWebhookRouter(users *webhookUserStore, payments *webhookPaymentStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	subs := service.NewSubscriptionService(
		service.WithSubscriptionUserStore(users),
		service.WithSubscriptionPaymentStore(payments),
	)
	handler := NewPaymentHandler(payments, users, subs, &config.Config{
		StripeWebhookSecret: testWebhookSecret,
	})

	r := gin.New()
	r.POST("/api/payments/webhook", handler.Webhook)
	return r
}

// stripeSignature signs the payload the way Stripe does: an HMAC-SHA256 of
// "<timestamp>.<payload>" keyed by the endpoint secret
func stripeSignature(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(t *testing.T, r *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func checkoutCompletedEvent(eventID, sessionID, intentID string, userID uuid.UUID) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"api_version":%q,"type":"checkout.session.completed","data":{"object":{"id":%q,"payment_intent":%q,"metadata":{"userId":%q}}}}`,
		eventID, stripe.APIVersion, sessionID, intentID, userID,
	))
}

func paymentIntentSucceededEvent(eventID, intentID string, userID uuid.UUID) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"api_version":%q,"type":"payment_intent.succeeded","data":{"object":{"id":%q,"metadata":{"userId":%q}}}}`,
		eventID, stripe.APIVersion, intentID, userID,
	))
}

func trialWebhookUser() *models.User {
	now := time.Now().UTC()
	return &models.User{
		Email:              "payer@b.pk",
		Role:               models.RoleUser,
		SubscriptionStatus: models.SubscriptionTrial,
		TrialStartDate:     now.AddDate(0, 0, -2),
		TrialEndDate:       now.AddDate(0, 0, 5),
	}
}

func TestWebhookCheckoutCompletedActivatesAndCompletesPayment(t *testing.T) {
	user := trialWebhookUser()
	users := newWebhookUserStore(user)

	sessionID := "cs_test_123"
	payment := &models.Payment{
		UserID:          user.ID,
		AmountCents:     200,
		Currency:        "usd",
		Method:          models.PaymentMethodCard,
		Status:          models.PaymentPending,
		StripeSessionID: &sessionID,
	}
	payments := newWebhookPaymentStore(payment)
	r := newWebhookRouter(users, payments)

	payload := checkoutCompletedEvent("evt_1", sessionID, "pi_test_123", user.ID)
	w := postWebhook(t, r, payload, stripeSignature(payload, testWebhookSecret))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, users.users[user.ID].IsSubscribed)
	assert.Equal(t, models.SubscriptionActive, users.users[user.ID].SubscriptionStatus)
	assert.Equal(t, models.PaymentCompleted, payments.payments[payment.ID].Status)
}

func TestWebhookPaymentIntentSucceededActivates(t *testing.T) {
	user := trialWebhookUser()
	users := newWebhookUserStore(user)
	payments := newWebhookPaymentStore()
	r := newWebhookRouter(users, payments)

	payload := paymentIntentSucceededEvent("evt_1", "pi_test_456", user.ID)
	w := postWebhook(t, r, payload, stripeSignature(payload, testWebhookSecret))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, users.users[user.ID].IsSubscribed)
	require.NotNil(t, users.users[user.ID].LastPaymentEventID)
	assert.Equal(t, "pi_test_456", *users.users[user.ID].LastPaymentEventID)
}

func TestWebhookBothDeliveriesOfOnePurchaseActivateOnce(t *testing.T) {
	user := trialWebhookUser()
	users := newWebhookUserStore(user)

	sessionID := "cs_test_789"
	payments := newWebhookPaymentStore(&models.Payment{
		UserID:          user.ID,
		Method:          models.PaymentMethodCard,
		Status:          models.PaymentPending,
		StripeSessionID: &sessionID,
	})
	r := newWebhookRouter(users, payments)

	first := checkoutCompletedEvent("evt_1", sessionID, "pi_test_789", user.ID)
	w := postWebhook(t, r, first, stripeSignature(first, testWebhookSecret))
	require.Equal(t, http.StatusOK, w.Code)

	endAfterFirst := *users.users[user.ID].SubscriptionEndDate

	// Stripe delivers the intent-succeeded event for the same purchase;
	// the shared idempotency key must not extend the window again.
	second := paymentIntentSucceededEvent("evt_2", "pi_test_789", user.ID)
	w = postWebhook(t, r, second, stripeSignature(second, testWebhookSecret))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, endAfterFirst, *users.users[user.ID].SubscriptionEndDate)
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	user := trialWebhookUser()
	users := newWebhookUserStore(user)
	payments := newWebhookPaymentStore()
	r := newWebhookRouter(users, payments)

	payload := paymentIntentSucceededEvent("evt_1", "pi_test_999", user.ID)
	w := postWebhook(t, r, payload, stripeSignature(payload, "whsec_wrong"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, users.users[user.ID].IsSubscribed)
}

func TestWebhookIgnoresForeignPaymentIntents(t *testing.T) {
	user := trialWebhookUser()
	users := newWebhookUserStore(user)
	payments := newWebhookPaymentStore()
	r := newWebhookRouter(users, payments)

	// Intents created outside the checkout flow carry no userId metadata
	payload := []byte(fmt.Sprintf(
		`{"id":"evt_1","api_version":%q,"type":"payment_intent.succeeded","data":{"object":{"id":"pi_other","metadata":{}}}}`,
		stripe.APIVersion,
	))
	w := postWebhook(t, r, payload, stripeSignature(payload, testWebhookSecret))

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, users.users[user.ID].IsSubscribed)
}
