package handlers

import (
	"errors"
	"net/http"

	"voiceoflaw-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatHandler handles HTTP requests for the chatbot and its conversations
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest represents the request body for a chat turn
type ChatRequest struct {
	Message        string  `json:"message" binding:"required"`
	ConversationID *string `json:"conversation_id"`
}

// Chat handles POST /api/chatbot/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	identity := identityFrom(c)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	serviceReq := service.SendMessageRequest{
		UserID:  identity.UserID,
		Message: req.Message,
	}
	if req.ConversationID != nil && *req.ConversationID != "" {
		id, err := uuid.Parse(*req.ConversationID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID format")
			return
		}
		serviceReq.ConversationID = &id
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionRequired):
			respondSubscriptionRequired(c)
		case errors.Is(err, service.ErrConversationNotFound), errors.Is(err, service.ErrNotConversationOwner):
			respondError(c, http.StatusNotFound, "CONVERSATION_NOT_FOUND", "Conversation not found")
		default:
			respondError(c, http.StatusInternalServerError, "CHAT_FAILED", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"conversation_id": result.Conversation.ID,
			"response":        result.Response,
			"sources":         result.Sources,
			"language":        result.Language,
		},
	})
}

// ListConversations handles GET /api/chatbot/conversations
func (h *ChatHandler) ListConversations(c *gin.Context) {
	identity := identityFrom(c)

	conversations, err := h.chatService.ListConversations(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    conversations,
	})
}

func (h *ChatHandler) conversationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID format")
		return uuid.Nil, false
	}
	return id, true
}

// GetConversation handles GET /api/chatbot/conversations/:id
func (h *ChatHandler) GetConversation(c *gin.Context) {
	identity := identityFrom(c)
	id, ok := h.conversationID(c)
	if !ok {
		return
	}

	conv, err := h.chatService.GetConversation(c.Request.Context(), identity.UserID, id)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) || errors.Is(err, service.ErrNotConversationOwner) {
			respondError(c, http.StatusNotFound, "CONVERSATION_NOT_FOUND", "Conversation not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    conv,
	})
}

// BookmarkRequest represents the request body for toggling a bookmark
type BookmarkRequest struct {
	IsBookmarked bool `json:"is_bookmarked"`
}

// BookmarkConversation handles PATCH /api/chatbot/conversations/:id/bookmark
func (h *ChatHandler) BookmarkConversation(c *gin.Context) {
	identity := identityFrom(c)
	id, ok := h.conversationID(c)
	if !ok {
		return
	}

	var req BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	err := h.chatService.SetBookmarked(c.Request.Context(), identity.UserID, id, req.IsBookmarked)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) || errors.Is(err, service.ErrNotConversationOwner) {
			respondError(c, http.StatusNotFound, "CONVERSATION_NOT_FOUND", "Conversation not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"id": id, "is_bookmarked": req.IsBookmarked},
	})
}

// DeleteConversation handles DELETE /api/chatbot/conversations/:id
func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	identity := identityFrom(c)
	id, ok := h.conversationID(c)
	if !ok {
		return
	}

	err := h.chatService.DeleteConversation(c.Request.Context(), identity.UserID, id)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) || errors.Is(err, service.ErrNotConversationOwner) {
			respondError(c, http.StatusNotFound, "CONVERSATION_NOT_FOUND", "Conversation not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"id": id},
	})
}
