package repository

import (
	"context"
	"fmt"
	"time"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `
	id, name, email, password_hash, role,
	is_paid, is_subscribed, subscription_status,
	trial_start_date, trial_end_date, subscription_start_date, subscription_end_date,
	cases_created_today, notes_created_today, books_downloaded_today, last_reset_date,
	stripe_customer_id, last_payment_event_id,
	full_name, phone_number, province, city, court_name, bar_council_number,
	profile_picture, onboarding_completed,
	created_at, updated_at`

// counterColumns maps quota resources to their counter columns. Only values
// from this map are ever interpolated into SQL.
var counterColumns = map[string]string{
	"cases": "cases_created_today",
	"notes": "notes_created_today",
	"books": "books_downloaded_today",
}

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.IsPaid, &u.IsSubscribed, &u.SubscriptionStatus,
		&u.TrialStartDate, &u.TrialEndDate, &u.SubscriptionStartDate, &u.SubscriptionEndDate,
		&u.Usage.CasesCreatedToday, &u.Usage.NotesCreatedToday, &u.Usage.BooksDownloadedToday, &u.Usage.LastResetDate,
		&u.StripeCustomerID, &u.LastPaymentEventID,
		&u.FullName, &u.PhoneNumber, &u.Province, &u.City, &u.CourtName, &u.BarCouncilNumber,
		&u.ProfilePicture, &u.OnboardingCompleted,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create creates a new user record
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			name, email, password_hash, role,
			subscription_status, trial_start_date, trial_end_date, last_reset_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.SubscriptionStatus,
		user.TrialStartDate,
		user.TrialEndDate,
		user.Usage.LastResetDate,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// List retrieves all users, newest first
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateProfile persists the onboarding profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			name = $2, full_name = $3, phone_number = $4, province = $5,
			city = $6, court_name = $7, bar_council_number = $8,
			profile_picture = $9, onboarding_completed = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.db.QueryRow(
		ctx, query,
		user.ID,
		user.Name,
		user.FullName,
		user.PhoneNumber,
		user.Province,
		user.City,
		user.CourtName,
		user.BarCouncilNumber,
		user.ProfilePicture,
		user.OnboardingCompleted,
	).Scan(&user.UpdatedAt)
}

// ResetDailyCounters zeroes the usage counters and stamps the reset date
func (r *UserRepository) ResetDailyCounters(ctx context.Context, userID uuid.UUID, resetDate time.Time) error {
	query := `
		UPDATE users SET
			cases_created_today = 0,
			notes_created_today = 0,
			books_downloaded_today = 0,
			last_reset_date = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, userID, resetDate)
	return err
}

// IncrementDailyCounter bumps one usage counter only if it is still under
// limit. Returns true when the increment was applied; false means the quota
// was already used up, even if a concurrent request read headroom a moment
// earlier.
func (r *UserRepository) IncrementDailyCounter(ctx context.Context, userID uuid.UUID, resource string, limit int) (bool, error) {
	column, ok := counterColumns[resource]
	if !ok {
		return false, fmt.Errorf("unknown counter resource: %s", resource)
	}

	query := fmt.Sprintf(`
		UPDATE users SET %s = %s + 1, updated_at = NOW()
		WHERE id = $1 AND %s < $2`, column, column, column)

	tag, err := r.db.Exec(ctx, query, userID, limit)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DecrementDailyCounter returns one previously consumed quota unit, floored
// at zero. Used to compensate when a gated operation fails after its unit
// was taken.
func (r *UserRepository) DecrementDailyCounter(ctx context.Context, userID uuid.UUID, resource string) error {
	column, ok := counterColumns[resource]
	if !ok {
		return fmt.Errorf("unknown counter resource: %s", resource)
	}

	query := fmt.Sprintf(`
		UPDATE users SET %s = GREATEST(%s - 1, 0), updated_at = NOW()
		WHERE id = $1`, column, column)

	_, err := r.db.Exec(ctx, query, userID)
	return err
}

// ActivateSubscription activates the user's subscription for the given
// window. The update is keyed on eventID so that a replayed payment event
// affects zero rows. Returns true when the activation was applied, false
// when the event had already been processed.
func (r *UserRepository) ActivateSubscription(ctx context.Context, userID uuid.UUID, eventID string, start, end time.Time) (bool, error) {
	query := `
		UPDATE users SET
			is_paid = TRUE,
			is_subscribed = TRUE,
			subscription_status = $4,
			subscription_start_date = $2,
			subscription_end_date = $3,
			last_payment_event_id = $5,
			updated_at = NOW()
		WHERE id = $1 AND last_payment_event_id IS DISTINCT FROM $5`

	tag, err := r.db.Exec(ctx, query, userID, start, end, models.SubscriptionActive, eventID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SetStripeCustomerID records the Stripe customer for a user
func (r *UserRepository) SetStripeCustomerID(ctx context.Context, userID uuid.UUID, customerID string) error {
	query := `UPDATE users SET stripe_customer_id = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, userID, customerID)
	return err
}

// ExpireTrials marks unsubscribed users whose trial window has elapsed as
// expired. Returns the number of users affected.
func (r *UserRepository) ExpireTrials(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE users SET subscription_status = $2, updated_at = NOW()
		WHERE subscription_status = $3
		  AND is_subscribed = FALSE
		  AND trial_end_date <= $1`

	tag, err := r.db.Exec(ctx, query, now, models.SubscriptionExpired, models.SubscriptionTrial)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ExpireSubscriptions marks subscribers past their paid window as expired.
// Returns the number of users affected.
func (r *UserRepository) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE users SET
			is_subscribed = FALSE,
			subscription_status = $2,
			updated_at = NOW()
		WHERE is_subscribed = TRUE
		  AND subscription_end_date IS NOT NULL
		  AND subscription_end_date <= $1`

	tag, err := r.db.Exec(ctx, query, now, models.SubscriptionExpired)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
