package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodEasypaisa    PaymentMethod = "easypaisa"
	PaymentMethodJazzcash     PaymentMethod = "jazzcash"
	PaymentMethodCard         PaymentMethod = "card"
)

// PaymentStatus represents the state of a payment
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentVerified  PaymentStatus = "verified"
)

// Payment represents a payment record
type Payment struct {
	ID              uuid.UUID     `json:"id"`
	UserID          uuid.UUID     `json:"user_id"`
	AmountCents     int64         `json:"amount_cents"`
	Currency        string        `json:"currency"`
	Method          PaymentMethod `json:"method"`
	Status          PaymentStatus `json:"status"`
	StripeSessionID *string       `json:"stripe_session_id,omitempty"`
	FailureReason   *string       `json:"failure_reason,omitempty"`
	VerifiedBy      *uuid.UUID    `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time    `json:"verified_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}
