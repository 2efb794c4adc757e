package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"voiceoflaw-backend/config"
	"voiceoflaw-backend/models"
	"voiceoflaw-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// PaymentHandler handles HTTP requests for payments: Stripe checkout and
// webhooks, manual payment submission, and admin verification
type PaymentHandler struct {
	payments            service.PaymentStore
	users               service.UserStore
	subscriptionService *service.SubscriptionService
	cfg                 *config.Config
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(
	payments service.PaymentStore,
	users service.UserStore,
	subscriptionService *service.SubscriptionService,
	cfg *config.Config,
) *PaymentHandler {
	return &PaymentHandler{
		payments:            payments,
		users:               users,
		subscriptionService: subscriptionService,
		cfg:                 cfg,
	}
}

// CreateCheckoutSession handles POST /api/payments/create-checkout-session
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	identity := identityFrom(c)

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Voice of Law - $2 Access"),
					},
					UnitAmount: stripe.Int64(h.cfg.CheckoutPriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(h.cfg.ClientURL + "/payment/success"),
		CancelURL:  stripe.String(h.cfg.ClientURL + "/payment/cancel"),
		// Copy the user onto the payment intent too, so either webhook
		// event Stripe delivers can resolve the payer
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"userId": identity.UserID.String()},
		},
	}
	params.AddMetadata("userId", identity.UserID.String())

	s, err := session.New(params)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "CHECKOUT_FAILED", err.Error())
		return
	}

	sessionID := s.ID
	payment := &models.Payment{
		UserID:          identity.UserID,
		AmountCents:     h.cfg.CheckoutPriceCents,
		Currency:        "usd",
		Method:          models.PaymentMethodCard,
		Status:          models.PaymentPending,
		StripeSessionID: &sessionID,
	}
	if err := h.payments.Create(c.Request.Context(), payment); err != nil {
		log.Printf("Warning: failed to record checkout session %s: %v", s.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"session_id": s.ID,
			"url":        s.URL,
		},
	})
}

// Webhook handles POST /api/payments/webhook. The payload signature is
// verified against the webhook secret before anything is trusted.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Could not read request body")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.cfg.StripeWebhookSecret)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_SIGNATURE", "Webhook signature verification failed")
		return
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Could not parse checkout session")
			return
		}

		userID, err := uuid.Parse(cs.Metadata["userId"])
		if err != nil {
			log.Printf("Warning: webhook event %s carries no valid userId metadata", event.ID)
			respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Missing userId metadata")
			return
		}

		// Key activation on the payment intent when present, so the
		// session-completed and intent-succeeded deliveries of one purchase
		// share an idempotency key and activate once.
		eventKey := event.ID
		if cs.PaymentIntent != nil && cs.PaymentIntent.ID != "" {
			eventKey = cs.PaymentIntent.ID
		}

		result, err := h.subscriptionService.ActivateFromEvent(c.Request.Context(), userID, eventKey)
		if err != nil {
			// Tell Stripe to retry delivery
			respondError(c, http.StatusInternalServerError, "ACTIVATION_FAILED", err.Error())
			return
		}
		if result.Activated {
			log.Printf("Subscription activated for user %s via event %s", userID, event.ID)
		}

		if err := h.payments.MarkCompletedBySession(c.Request.Context(), cs.ID); err != nil {
			log.Printf("Warning: failed to mark payment for session %s completed: %v", cs.ID, err)
		}

	case stripe.EventTypePaymentIntentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Could not parse payment intent")
			return
		}

		// Intents created outside our checkout flow carry no user metadata;
		// acknowledge those without action.
		userID, err := uuid.Parse(pi.Metadata["userId"])
		if err != nil {
			log.Printf("Payment intent event %s carries no userId metadata, skipping", event.ID)
			break
		}

		result, err := h.subscriptionService.ActivateFromEvent(c.Request.Context(), userID, pi.ID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "ACTIVATION_FAILED", err.Error())
			return
		}
		if result.Activated {
			log.Printf("Subscription activated for user %s via event %s", userID, event.ID)
		}

	default:
		// Other event types are acknowledged without action
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// SubmitPaymentRequest represents a manual payment submission
type SubmitPaymentRequest struct {
	AmountCents int64  `json:"amount_cents" binding:"required"`
	Method      string `json:"method" binding:"required,oneof=bank_transfer easypaisa jazzcash"`
}

// SubmitPayment handles POST /api/payments. Manual payments go to the
// admin review queue.
func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	identity := identityFrom(c)

	var req SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	payment := &models.Payment{
		UserID:      identity.UserID,
		AmountCents: req.AmountCents,
		Currency:    "pkr",
		Method:      models.PaymentMethod(req.Method),
		Status:      models.PaymentPending,
	}
	if err := h.payments.Create(c.Request.Context(), payment); err != nil {
		respondError(c, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    payment,
	})
}

// ListMyPayments handles GET /api/payments
func (h *PaymentHandler) ListMyPayments(c *gin.Context) {
	identity := identityFrom(c)

	payments, err := h.payments.ListByUserID(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payments,
	})
}

// ListUsers handles GET /api/admin/users
func (h *PaymentHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
	})
}

// ListPendingPayments handles GET /api/admin/payments/pending
func (h *PaymentHandler) ListPendingPayments(c *gin.Context) {
	payments, err := h.payments.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payments,
	})
}

// ApprovePayment handles POST /api/admin/payments/:id/approve
func (h *PaymentHandler) ApprovePayment(c *gin.Context) {
	identity := identityFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid payment ID format")
		return
	}

	result, err := h.subscriptionService.ApprovePayment(c.Request.Context(), id, identity.UserID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			respondError(c, http.StatusNotFound, "PAYMENT_NOT_FOUND", "Payment not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "APPROVE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":                id,
			"activated":         result.Activated,
			"already_processed": result.AlreadyProcessed,
		},
	})
}

// RejectPaymentRequest represents the request body for a rejection
type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectPayment handles POST /api/admin/payments/:id/reject
func (h *PaymentHandler) RejectPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid payment ID format")
		return
	}

	var req RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if err := h.subscriptionService.RejectPayment(c.Request.Context(), id, req.Reason); err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			respondError(c, http.StatusNotFound, "PAYMENT_NOT_FOUND", "Payment not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "REJECT_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"id": id, "status": models.PaymentFailed},
	})
}
