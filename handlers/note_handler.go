package handlers

import (
	"errors"
	"log"
	"net/http"

	"voiceoflaw-backend/entitlement"
	"voiceoflaw-backend/models"
	"voiceoflaw-backend/repository"
	"voiceoflaw-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// NoteHandler handles HTTP requests for standalone notes
type NoteHandler struct {
	notes        *repository.NoteRepository
	entitlements *service.EntitlementService
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(notes *repository.NoteRepository, entitlements *service.EntitlementService) *NoteHandler {
	return &NoteHandler{notes: notes, entitlements: entitlements}
}

// NoteRequest represents the request body for creating or updating a note
type NoteRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// CreateNote handles POST /api/notes
func (h *NoteHandler) CreateNote(c *gin.Context) {
	identity := identityFrom(c)

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	decision, err := h.entitlements.Consume(c.Request.Context(), identity.UserID, entitlement.ResourceNotes)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ENTITLEMENT_CHECK_FAILED", err.Error())
		return
	}
	if !decision.Allowed {
		respondQuotaExceeded(c, decision)
		return
	}

	note := &models.Note{
		CreatedBy: identity.UserID,
		Title:     req.Title,
		Content:   req.Content,
	}
	if err := h.notes.Create(c.Request.Context(), note); err != nil {
		if refundErr := h.entitlements.Refund(c.Request.Context(), identity.UserID, entitlement.ResourceNotes); refundErr != nil {
			log.Printf("Warning: failed to return note quota unit to user %s: %v", identity.UserID, refundErr)
		}
		respondError(c, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    note,
	})
}

// ListNotes handles GET /api/notes. A "q" query parameter switches to search.
func (h *NoteHandler) ListNotes(c *gin.Context) {
	identity := identityFrom(c)
	ctx := c.Request.Context()

	var notes []*models.Note
	var err error
	if q := c.Query("q"); q != "" {
		notes, err = h.notes.SearchByCreator(ctx, identity.UserID, q)
	} else {
		notes, err = h.notes.ListByCreator(ctx, identity.UserID)
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notes,
	})
}

func (h *NoteHandler) loadOwnedNote(c *gin.Context) (*models.Note, bool) {
	identity := identityFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid note ID format")
		return nil, false
	}

	note, err := h.notes.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "NOTE_NOT_FOUND", "Note not found")
			return nil, false
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", err.Error())
		return nil, false
	}

	if note.CreatedBy != identity.UserID && identity.Role != models.RoleAdmin {
		respondError(c, http.StatusNotFound, "NOTE_NOT_FOUND", "Note not found")
		return nil, false
	}
	return note, true
}

// GetNote handles GET /api/notes/:id
func (h *NoteHandler) GetNote(c *gin.Context) {
	note, ok := h.loadOwnedNote(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    note,
	})
}

// UpdateNote handles PUT /api/notes/:id
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	note, ok := h.loadOwnedNote(c)
	if !ok {
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	note.Title = req.Title
	note.Content = req.Content
	if err := h.notes.Update(c.Request.Context(), note); err != nil {
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    note,
	})
}

// DeleteNote handles DELETE /api/notes/:id
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	note, ok := h.loadOwnedNote(c)
	if !ok {
		return
	}

	if err := h.notes.Delete(c.Request.Context(), note.ID); err != nil {
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"id": note.ID},
	})
}
