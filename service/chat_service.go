package service

import (
	"context"
	"errors"
	"time"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotConversationOwner = errors.New("conversation belongs to another user")
)

const conversationTitleChars = 50

// ChatService runs the chat pipeline: classify the message, retrieve
// context, generate a reply, and append the exchange to the conversation
type ChatService struct {
	conversations ConversationStore
	retriever     *ContextRetriever
	generator     *ResponseGenerator
	entitlements  *EntitlementService
	now           func() time.Time
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// WithChatConversationStore sets the conversation store
func WithChatConversationStore(store ConversationStore) ChatServiceOption {
	return func(s *ChatService) {
		s.conversations = store
	}
}

// WithChatRetriever sets the context retriever
func WithChatRetriever(r *ContextRetriever) ChatServiceOption {
	return func(s *ChatService) {
		s.retriever = r
	}
}

// WithChatGenerator sets the response generator
func WithChatGenerator(g *ResponseGenerator) ChatServiceOption {
	return func(s *ChatService) {
		s.generator = g
	}
}

// WithChatEntitlements sets the entitlement service gating chat access
func WithChatEntitlements(e *EntitlementService) ChatServiceOption {
	return func(s *ChatService) {
		s.entitlements = e
	}
}

// WithChatClock overrides the clock, for tests
func WithChatClock(now func() time.Time) ChatServiceOption {
	return func(s *ChatService) {
		s.now = now
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendMessageRequest represents one chat turn from a user
type SendMessageRequest struct {
	UserID         uuid.UUID
	ConversationID *uuid.UUID
	Message        string
}

// SendMessageResult is the assistant's reply and the updated conversation
type SendMessageResult struct {
	Conversation *models.Conversation
	Response     string
	Sources      []string
	Language     Language
}

// SendMessage runs one chat turn. A missing conversation ID starts a new
// conversation titled after the message. The user and assistant messages
// are appended as one atomic pair.
func (s *ChatService) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResult, error) {
	if s.conversations == nil || s.generator == nil {
		return nil, errors.New("chat service not configured")
	}

	if s.entitlements != nil {
		if _, err := s.entitlements.RequireActiveSubscription(ctx, req.UserID); err != nil {
			return nil, err
		}
	}

	conv, err := s.loadOrCreate(ctx, req)
	if err != nil {
		return nil, err
	}

	classification := Classify(req.Message)

	var items []ContextItem
	if s.retriever != nil && classification.IsLegal {
		items = s.retriever.Search(ctx, req.Message, req.UserID)
	}

	generated := s.generator.Generate(ctx, req.Message, classification, items, conv.Messages)

	now := s.now().UTC()
	userMsg := models.Message{
		Role:      models.RoleMessageUser,
		Content:   req.Message,
		Timestamp: now,
	}
	assistantMsg := models.Message{
		Role:      models.RoleMessageAssistant,
		Content:   generated.Response,
		Timestamp: now,
		Sources:   generated.Sources,
	}

	updated, err := s.conversations.AppendMessages(ctx, conv.ID, userMsg, assistantMsg)
	if err != nil {
		return nil, err
	}

	return &SendMessageResult{
		Conversation: updated,
		Response:     generated.Response,
		Sources:      generated.Sources,
		Language:     classification.Language,
	}, nil
}

func (s *ChatService) loadOrCreate(ctx context.Context, req SendMessageRequest) (*models.Conversation, error) {
	if req.ConversationID != nil {
		conv, err := s.conversations.GetByID(ctx, *req.ConversationID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrConversationNotFound
			}
			return nil, err
		}
		if conv.UserID != req.UserID {
			return nil, ErrNotConversationOwner
		}
		return conv, nil
	}

	conv := &models.Conversation{
		UserID:   req.UserID,
		Title:    conversationTitle(req.Message),
		Messages: models.MessageList{},
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func conversationTitle(message string) string {
	runes := []rune(message)
	if len(runes) > conversationTitleChars {
		return string(runes[:conversationTitleChars])
	}
	return message
}

// GetConversation returns a conversation if it belongs to the user
func (s *ChatService) GetConversation(ctx context.Context, userID, conversationID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if conv.UserID != userID {
		return nil, ErrNotConversationOwner
	}
	return conv, nil
}

// ListConversations returns the user's conversation summaries
func (s *ChatService) ListConversations(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	return s.conversations.ListByUserID(ctx, userID)
}

// SetBookmarked toggles the bookmark flag on an owned conversation
func (s *ChatService) SetBookmarked(ctx context.Context, userID, conversationID uuid.UUID, bookmarked bool) error {
	if _, err := s.GetConversation(ctx, userID, conversationID); err != nil {
		return err
	}
	return s.conversations.SetBookmarked(ctx, conversationID, bookmarked)
}

// DeleteConversation deletes an owned conversation
func (s *ChatService) DeleteConversation(ctx context.Context, userID, conversationID uuid.UUID) error {
	if _, err := s.GetConversation(ctx, userID, conversationID); err != nil {
		return err
	}
	return s.conversations.Delete(ctx, conversationID)
}
