package service

import (
	"context"
	"errors"
	"time"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// fakeUserStore is an in-memory UserStore with the same conditional-update
// semantics as the SQL repository
type fakeUserStore struct {
	users map[uuid.UUID]*models.User

	resetCalls     int
	incrementCalls int
	decrementCalls int
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	for _, u := range s.users {
		if u.Email == user.Email {
			return errors.New("duplicate email")
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeUserStore) List(_ context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range s.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, user *models.User) error {
	existing, ok := s.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	*existing = *user
	return nil
}

func (s *fakeUserStore) ResetDailyCounters(_ context.Context, userID uuid.UUID, resetDate time.Time) error {
	s.resetCalls++
	u, ok := s.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Usage = models.UsageCounters{LastResetDate: resetDate}
	return nil
}

func (s *fakeUserStore) IncrementDailyCounter(_ context.Context, userID uuid.UUID, resource string, limit int) (bool, error) {
	s.incrementCalls++
	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	var counter *int
	switch resource {
	case "cases":
		counter = &u.Usage.CasesCreatedToday
	case "notes":
		counter = &u.Usage.NotesCreatedToday
	case "books":
		counter = &u.Usage.BooksDownloadedToday
	default:
		return false, errors.New("unknown counter resource")
	}
	if *counter >= limit {
		return false, nil
	}
	*counter++
	return true, nil
}

func (s *fakeUserStore) DecrementDailyCounter(_ context.Context, userID uuid.UUID, resource string) error {
	s.decrementCalls++
	u, ok := s.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	var counter *int
	switch resource {
	case "cases":
		counter = &u.Usage.CasesCreatedToday
	case "notes":
		counter = &u.Usage.NotesCreatedToday
	case "books":
		counter = &u.Usage.BooksDownloadedToday
	default:
		return errors.New("unknown counter resource")
	}
	if *counter > 0 {
		*counter--
	}
	return nil
}

func (s *fakeUserStore) ActivateSubscription(_ context.Context, userID uuid.UUID, eventID string, start, end time.Time) (bool, error) {
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

func (s *fakeUserStore) ExpireTrials(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, u := range s.users {
		if u.SubscriptionStatus == models.SubscriptionTrial && !u.IsSubscribed && !u.TrialEndDate.After(now) {
			u.SubscriptionStatus = models.SubscriptionExpired
			n++
		}
	}
	return n, nil
}

func (s *fakeUserStore) ExpireSubscriptions(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, u := range s.users {
		if u.IsSubscribed && u.SubscriptionEndDate != nil && !u.SubscriptionEndDate.After(now) {
			u.IsSubscribed = false
			u.SubscriptionStatus = models.SubscriptionExpired
			n++
		}
	}
	return n, nil
}

// fakePaymentStore is an in-memory PaymentStore
type fakePaymentStore struct {
	payments map[uuid.UUID]*models.Payment
}

func newFakePaymentStore(payments ...*models.Payment) *fakePaymentStore {
	s := &fakePaymentStore{payments: make(map[uuid.UUID]*models.Payment)}
	for _, p := range payments {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		s.payments[p.ID] = p
	}
	return s
}

func (s *fakePaymentStore) Create(_ context.Context, p *models.Payment) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	s.payments[p.ID] = p
	return nil
}

func (s *fakePaymentStore) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	p, ok := s.payments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (s *fakePaymentStore) ListByUserID(_ context.Context, userID uuid.UUID) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range s.payments {
		if p.UserID == userID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakePaymentStore) ListPending(_ context.Context) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range s.payments {
		if p.Status == models.PaymentPending {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakePaymentStore) MarkVerified(_ context.Context, id, adminID uuid.UUID, verifiedAt time.Time) error {
	p, ok := s.payments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Status = models.PaymentVerified
	p.VerifiedBy = &adminID
	p.VerifiedAt = &verifiedAt
	return nil
}

func (s *fakePaymentStore) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	p, ok := s.payments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Status = models.PaymentFailed
	p.FailureReason = &reason
	return nil
}

func (s *fakePaymentStore) MarkCompletedBySession(_ context.Context, sessionID string) error {
	for _, p := range s.payments {
		if p.StripeSessionID != nil && *p.StripeSessionID == sessionID && p.Status == models.PaymentPending {
			p.Status = models.PaymentCompleted
		}
	}
	return nil
}

// fakeConversationStore is an in-memory ConversationStore
type fakeConversationStore struct {
	conversations map[uuid.UUID]*models.Conversation
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{conversations: make(map[uuid.UUID]*models.Conversation)}
}

func (s *fakeConversationStore) Create(_ context.Context, conv *models.Conversation) error {
	conv.ID = uuid.New()
	conv.CreatedAt = time.Now()
	conv.UpdatedAt = conv.CreatedAt
	copied := *conv
	s.conversations[conv.ID] = &copied
	return nil
}

func (s *fakeConversationStore) GetByID(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	c, ok := s.conversations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (s *fakeConversationStore) ListByUserID(_ context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	var out []*models.Conversation
	for _, c := range s.conversations {
		if c.UserID == userID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeConversationStore) AppendMessages(_ context.Context, id uuid.UUID, messages ...models.Message) (*models.Conversation, error) {
	c, ok := s.conversations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c.Messages = append(c.Messages, messages...)
	c.UpdatedAt = time.Now()
	copied := *c
	return &copied, nil
}

func (s *fakeConversationStore) SetBookmarked(_ context.Context, id uuid.UUID, bookmarked bool) error {
	c, ok := s.conversations[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.IsBookmarked = bookmarked
	return nil
}

func (s *fakeConversationStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.conversations, id)
	return nil
}

// fakeTextGenerator returns scripted responses or failures
type fakeTextGenerator struct {
	response string
	failures int
	calls    int
	prompts  []string
}

func (g *fakeTextGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.calls <= g.failures {
		return "", errors.New("model unavailable")
	}
	return g.response, nil
}

// fakeCaseSearcher returns fixed cases or an error
type fakeCaseSearcher struct {
	cases []*models.Case
	err   error
}

func (s *fakeCaseSearcher) SearchOwned(_ context.Context, _ uuid.UUID, _ string, _ int) ([]*models.Case, error) {
	return s.cases, s.err
}

// fakeBookSearcher returns fixed books or an error
type fakeBookSearcher struct {
	books []*models.Book
	err   error
}

func (s *fakeBookSearcher) SearchActive(_ context.Context, _ string, _ int) ([]*models.Book, error) {
	return s.books, s.err
}

// fakePostSearcher returns fixed posts or an error
type fakePostSearcher struct {
	posts []*models.Post
	err   error
}

func (s *fakePostSearcher) Search(_ context.Context, _ string, _ int) ([]*models.Post, error) {
	return s.posts, s.err
}
