package handlers

import (
	"errors"
	"net/http"
	"time"

	"voiceoflaw-backend/models"
	"voiceoflaw-backend/repository"
	"voiceoflaw-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ContentHandler handles HTTP requests for posts, announcements, cards,
// latest updates and the news feed
type ContentHandler struct {
	posts        *repository.PostRepository
	content      *repository.ContentRepository
	news         *service.NewsService
	entitlements *service.EntitlementService
}

// NewContentHandler creates a new content handler
func NewContentHandler(
	posts *repository.PostRepository,
	content *repository.ContentRepository,
	news *service.NewsService,
	entitlements *service.EntitlementService,
) *ContentHandler {
	return &ContentHandler{
		posts:        posts,
		content:      content,
		news:         news,
		entitlements: entitlements,
	}
}

// ListPosts handles GET /api/posts
func (h *ContentHandler) ListPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    posts,
	})
}

// GetPost handles GET /api/posts/:id. The full content is reserved for
// users with an active subscription or trial; everyone else gets the
// description and a locked flag.
func (h *ContentHandler) GetPost(c *gin.Context) {
	identity := identityFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid post ID format")
		return
	}

	post, err := h.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "POST_NOT_FOUND", "Post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", err.Error())
		return
	}

	locked := false
	if _, err := h.entitlements.RequireActiveSubscription(c.Request.Context(), identity.UserID); err != nil {
		if !errors.Is(err, service.ErrSubscriptionRequired) {
			respondError(c, http.StatusInternalServerError, "GET_FAILED", err.Error())
			return
		}
		locked = true
		post.FullContent = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"post":   post,
			"locked": locked,
		},
	})
}

// PostRequest represents the request body for creating or updating a post
type PostRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	FullContent string  `json:"full_content"`
	Image       *string `json:"image"`
	Date        string  `json:"date"`
	Type        string  `json:"type" binding:"required,oneof=picked latest featured"`
	Category    string  `json:"category"`
}

func (req *PostRequest) apply(post *models.Post) {
	post.Title = req.Title
	post.Description = req.Description
	post.FullContent = req.FullContent
	post.Image = req.Image
	post.Type = models.PostType(req.Type)
	post.Category = req.Category

	post.Date = time.Now().UTC()
	if req.Date != "" {
		if t, err := time.Parse("2006-01-02", req.Date); err == nil {
			post.Date = t
		}
	}
}

// CreatePost handles POST /api/admin/posts
func (h *ContentHandler) CreatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	post := &models.Post{}
	req.apply(post)

	if err := h.posts.Create(c.Request.Context(), post); err != nil {
		respondError(c, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    post,
	})
}

// UpdatePost handles PUT /api/admin/posts/:id
func (h *ContentHandler) UpdatePost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid post ID format")
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	ctx := c.Request.Context()
	post, err := h.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "POST_NOT_FOUND", "Post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", err.Error())
		return
	}

	req.apply(post)
	if err := h.posts.Update(ctx, post); err != nil {
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    post,
	})
}

// DeletePost handles DELETE /api/admin/posts/:id
func (h *ContentHandler) DeletePost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid post ID format")
		return
	}

	if err := h.posts.Delete(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"id": id},
	})
}

// AnnouncementRequest represents the request body for an announcement
type AnnouncementRequest struct {
	Date     string  `json:"date" binding:"required"`
	Type     string  `json:"type" binding:"required"`
	Title    string  `json:"title" binding:"required"`
	Link     *string `json:"link"`
	Category string  `json:"category"`
	Priority string  `json:"priority" binding:"required,oneof=high medium low"`
}

// CreateAnnouncement handles POST /api/admin/announcements
func (h *ContentHandler) CreateAnnouncement(c *gin.Context) {
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "date must be YYYY-MM-DD")
		return
	}

	a := &models.Announcement{
		Date:     date,
		Type:     req.Type,
		Title:    req.Title,
		Link:     req.Link,
		Category: req.Category,
		Priority: models.AnnouncementPriority(req.Priority),
	}
	if err := h.content.CreateAnnouncement(c.Request.Context(), a); err != nil {
		respondError(c, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    a,
	})
}

// ListAnnouncements handles GET /api/announcements
func (h *ContentHandler) ListAnnouncements(c *gin.Context) {
	items, err := h.content.ListAnnouncements(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
	})
}

// DeleteAnnouncement handles DELETE /api/admin/announcements/:id
func (h *ContentHandler) DeleteAnnouncement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid announcement ID format")
		return
	}

	if err := h.content.DeleteAnnouncement(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": id}})
}

// CardRequest represents the request body for a card
type CardRequest struct {
	Category    string  `json:"category" binding:"required"`
	Image       *string `json:"image"`
	Date        string  `json:"date" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	IsLocked    bool    `json:"is_locked"`
}

// CreateCard handles POST /api/admin/cards
func (h *ContentHandler) CreateCard(c *gin.Context) {
	var req CardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "date must be YYYY-MM-DD")
		return
	}

	card := &models.Card{
		Category:    req.Category,
		Image:       req.Image,
		Date:        date,
		Title:       req.Title,
		Description: req.Description,
		IsLocked:    req.IsLocked,
	}
	if err := h.content.CreateCard(c.Request.Context(), card); err != nil {
		respondError(c, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": card})
}

// ListCards handles GET /api/cards
func (h *ContentHandler) ListCards(c *gin.Context) {
	items, err := h.content.ListCards(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

// DeleteCard handles DELETE /api/admin/cards/:id
func (h *ContentHandler) DeleteCard(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid card ID format")
		return
	}

	if err := h.content.DeleteCard(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": id}})
}

// UpdateRequest represents the request body for a latest update
type UpdateRequest struct {
	Title    string  `json:"title" binding:"required"`
	Summary  string  `json:"summary" binding:"required"`
	Details  string  `json:"details"`
	Date     string  `json:"date" binding:"required"`
	Type     string  `json:"type"`
	Image    *string `json:"image"`
	Gradient *string `json:"gradient"`
}

// CreateUpdate handles POST /api/admin/updates
func (h *ContentHandler) CreateUpdate(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "date must be YYYY-MM-DD")
		return
	}

	update := &models.Update{
		Title:    req.Title,
		Summary:  req.Summary,
		Details:  req.Details,
		Date:     date,
		Type:     req.Type,
		Image:    req.Image,
		Gradient: req.Gradient,
	}
	if err := h.content.CreateUpdate(c.Request.Context(), update); err != nil {
		respondError(c, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": update})
}

// ListUpdates handles GET /api/updates
func (h *ContentHandler) ListUpdates(c *gin.Context) {
	items, err := h.content.ListUpdates(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

// DeleteUpdate handles DELETE /api/admin/updates/:id
func (h *ContentHandler) DeleteUpdate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid update ID format")
		return
	}

	if err := h.content.DeleteUpdate(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": id}})
}

// LegalNews handles GET /api/news. The feed degrades to an empty list when
// the provider is unavailable.
func (h *ContentHandler) LegalNews(c *gin.Context) {
	articles := h.news.FetchLegalNews(c.Request.Context(), 10)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    articles,
	})
}
