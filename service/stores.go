package service

import (
	"context"
	"time"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
)

// UserStore is the persistence surface the services need for users. The
// pgx-backed repository satisfies it; tests substitute fakes.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	ResetDailyCounters(ctx context.Context, userID uuid.UUID, resetDate time.Time) error
	IncrementDailyCounter(ctx context.Context, userID uuid.UUID, resource string, limit int) (bool, error)
	DecrementDailyCounter(ctx context.Context, userID uuid.UUID, resource string) error
	ActivateSubscription(ctx context.Context, userID uuid.UUID, eventID string, start, end time.Time) (bool, error)
	ExpireTrials(ctx context.Context, now time.Time) (int64, error)
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}

// PaymentStore is the persistence surface for payments
type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Payment, error)
	ListPending(ctx context.Context) ([]*models.Payment, error)
	MarkVerified(ctx context.Context, id, adminID uuid.UUID, verifiedAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	MarkCompletedBySession(ctx context.Context, sessionID string) error
}

// ConversationStore is the persistence surface for conversations
type ConversationStore interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error)
	AppendMessages(ctx context.Context, id uuid.UUID, messages ...models.Message) (*models.Conversation, error)
	SetBookmarked(ctx context.Context, id uuid.UUID, bookmarked bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CaseSearcher is the slice of the case repository the context retriever uses
type CaseSearcher interface {
	SearchOwned(ctx context.Context, userID uuid.UUID, query string, limit int) ([]*models.Case, error)
}

// BookSearcher is the slice of the book repository the context retriever uses
type BookSearcher interface {
	SearchActive(ctx context.Context, query string, limit int) ([]*models.Book, error)
}

// PostSearcher is the slice of the post repository the context retriever uses
type PostSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]*models.Post, error)
}
