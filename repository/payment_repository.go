package repository

import (
	"context"
	"time"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `
	id, user_id, amount_cents, currency, method, status,
	stripe_session_id, failure_reason, verified_by, verified_at, created_at`

// PaymentRepository handles database operations for payments
type PaymentRepository struct {
	db *pgxpool.Pool
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.AmountCents, &p.Currency, &p.Method, &p.Status,
		&p.StripeSessionID, &p.FailureReason, &p.VerifiedBy, &p.VerifiedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create creates a new payment record
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (
			user_id, amount_cents, currency, method, status, stripe_session_id
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		payment.UserID,
		payment.AmountCents,
		payment.Currency,
		payment.Method,
		payment.Status,
		payment.StripeSessionID,
	).Scan(&payment.ID, &payment.CreatedAt)
}

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.db.QueryRow(ctx, query, id))
}

// ListByUserID retrieves all payments for a user, newest first
func (r *PaymentRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ListPending retrieves all payments awaiting admin review, oldest first
func (r *PaymentRepository) ListPending(ctx context.Context) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE status = $1 ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, models.PaymentPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// MarkVerified marks a payment as verified by an admin
func (r *PaymentRepository) MarkVerified(ctx context.Context, id, adminID uuid.UUID, verifiedAt time.Time) error {
	query := `
		UPDATE payments SET status = $2, verified_by = $3, verified_at = $4
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.PaymentVerified, adminID, verifiedAt)
	return err
}

// MarkFailed marks a payment as failed with a reason
func (r *PaymentRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `UPDATE payments SET status = $2, failure_reason = $3 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, models.PaymentFailed, reason)
	return err
}

// MarkCompletedBySession marks the pending payment recorded for a checkout
// session as completed once the webhook confirms the charge
func (r *PaymentRepository) MarkCompletedBySession(ctx context.Context, sessionID string) error {
	query := `
		UPDATE payments SET status = $2
		WHERE stripe_session_id = $1 AND status = $3`

	_, err := r.db.Exec(ctx, query, sessionID, models.PaymentCompleted, models.PaymentPending)
	return err
}
