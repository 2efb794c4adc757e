package service

import (
	"context"
	"testing"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatService(store *fakeConversationStore, gen *fakeTextGenerator) *ChatService {
	return NewChatService(
		WithChatConversationStore(store),
		WithChatGenerator(NewResponseGenerator(WithTextGenerator(gen), WithGenerateBackoff(0))),
		WithChatClock(fixedClock),
	)
}

func TestSendMessageCreatesConversation(t *testing.T) {
	store := newFakeConversationStore()
	gen := &fakeTextGenerator{response: "Bail is governed by..."}
	svc := newChatService(store, gen)

	userID := uuid.New()
	result, err := svc.SendMessage(context.Background(), SendMessageRequest{
		UserID:  userID,
		Message: "what is bail under Pakistani law",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bail is governed by...", result.Response)
	assert.Equal(t, LangEnglish, result.Language)
	assert.Equal(t, "what is bail under Pakistani law", result.Conversation.Title)

	require.Len(t, result.Conversation.Messages, 2)
	assert.Equal(t, models.RoleMessageUser, result.Conversation.Messages[0].Role)
	assert.Equal(t, "what is bail under Pakistani law", result.Conversation.Messages[0].Content)
	assert.Equal(t, models.RoleMessageAssistant, result.Conversation.Messages[1].Role)
	assert.Equal(t, "Bail is governed by...", result.Conversation.Messages[1].Content)
}

func TestSendMessageTruncatesTitle(t *testing.T) {
	store := newFakeConversationStore()
	gen := &fakeTextGenerator{response: "answer"}
	svc := newChatService(store, gen)

	long := "what is the complete procedure for filing a writ petition in the Lahore High Court"
	result, err := svc.SendMessage(context.Background(), SendMessageRequest{
		UserID:  uuid.New(),
		Message: long,
	})
	require.NoError(t, err)
	assert.Equal(t, long[:conversationTitleChars], result.Conversation.Title)
}

func TestSendMessageAppendsToExistingConversation(t *testing.T) {
	store := newFakeConversationStore()
	gen := &fakeTextGenerator{response: "follow-up answer"}
	svc := newChatService(store, gen)

	userID := uuid.New()
	first, err := svc.SendMessage(context.Background(), SendMessageRequest{
		UserID:  userID,
		Message: "what is bail",
	})
	require.NoError(t, err)

	convID := first.Conversation.ID
	second, err := svc.SendMessage(context.Background(), SendMessageRequest{
		UserID:         userID,
		ConversationID: &convID,
		Message:        "and what about pre-arrest bail",
	})
	require.NoError(t, err)

	require.Len(t, second.Conversation.Messages, 4)
	assert.Equal(t, "what is bail", second.Conversation.Messages[0].Content)
	assert.Equal(t, "and what about pre-arrest bail", second.Conversation.Messages[2].Content)

	// The earlier exchange is visible to the model as history
	assert.Contains(t, gen.prompts[1], "what is bail")
}

func TestSendMessageRejectsForeignConversation(t *testing.T) {
	store := newFakeConversationStore()
	gen := &fakeTextGenerator{response: "answer"}
	svc := newChatService(store, gen)

	owner := uuid.New()
	first, err := svc.SendMessage(context.Background(), SendMessageRequest{
		UserID:  owner,
		Message: "what is bail",
	})
	require.NoError(t, err)

	convID := first.Conversation.ID
	_, err = svc.SendMessage(context.Background(), SendMessageRequest{
		UserID:         uuid.New(),
		ConversationID: &convID,
		Message:        "my case details",
	})
	assert.ErrorIs(t, err, ErrNotConversationOwner)
}

func TestSendMessageOffTopicSkipsRetrieval(t *testing.T) {
	store := newFakeConversationStore()
	gen := &fakeTextGenerator{response: "should not be called"}
	cases := &fakeCaseSearcher{cases: []*models.Case{{Title: "should not appear"}}}

	svc := NewChatService(
		WithChatConversationStore(store),
		WithChatGenerator(NewResponseGenerator(WithTextGenerator(gen), WithGenerateBackoff(0))),
		WithChatRetriever(NewContextRetriever(WithRetrieverCases(cases))),
		WithChatClock(fixedClock),
	)

	result, err := svc.SendMessage(context.Background(), SendMessageRequest{
		UserID:  uuid.New(),
		Message: "best biryani recipe in town",
	})
	require.NoError(t, err)

	assert.Equal(t, declineMessages[LangEnglish], result.Response)
	assert.Empty(t, result.Sources)
	assert.Zero(t, gen.calls)

	// The declined exchange is still recorded
	require.Len(t, result.Conversation.Messages, 2)
	assert.Equal(t, declineMessages[LangEnglish], result.Conversation.Messages[1].Content)
}

func TestSendMessageGatedOnSubscription(t *testing.T) {
	expired := trialUserFixture()
	expired.TrialEndDate = testNow.AddDate(0, 0, -1)
	users := newFakeUserStore(expired)

	svc := NewChatService(
		WithChatConversationStore(newFakeConversationStore()),
		WithChatGenerator(NewResponseGenerator(WithTextGenerator(&fakeTextGenerator{response: "x"}), WithGenerateBackoff(0))),
		WithChatEntitlements(newEntitlementService(users)),
		WithChatClock(fixedClock),
	)

	_, err := svc.SendMessage(context.Background(), SendMessageRequest{
		UserID:  expired.ID,
		Message: "what is bail",
	})
	assert.ErrorIs(t, err, ErrSubscriptionRequired)
}

func TestConversationManagement(t *testing.T) {
	store := newFakeConversationStore()
	gen := &fakeTextGenerator{response: "answer"}
	svc := newChatService(store, gen)
	ctx := context.Background()

	userID := uuid.New()
	created, err := svc.SendMessage(ctx, SendMessageRequest{UserID: userID, Message: "what is bail"})
	require.NoError(t, err)
	convID := created.Conversation.ID

	require.NoError(t, svc.SetBookmarked(ctx, userID, convID, true))
	conv, err := svc.GetConversation(ctx, userID, convID)
	require.NoError(t, err)
	assert.True(t, conv.IsBookmarked)

	// Another user cannot touch it
	assert.ErrorIs(t, svc.SetBookmarked(ctx, uuid.New(), convID, false), ErrNotConversationOwner)
	assert.ErrorIs(t, svc.DeleteConversation(ctx, uuid.New(), convID), ErrNotConversationOwner)

	require.NoError(t, svc.DeleteConversation(ctx, userID, convID))
	_, err = svc.GetConversation(ctx, userID, convID)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}
