package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"voiceoflaw-backend/entitlement"
	"voiceoflaw-backend/models"
	"voiceoflaw-backend/repository"
	"voiceoflaw-backend/service"
	"voiceoflaw-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (duplicate case_no, email, ...)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CaseHandler handles HTTP requests for cases and their attachments
type CaseHandler struct {
	cases        *repository.CaseRepository
	files        *repository.FileRepository
	notes        *repository.NoteRepository
	store        storage.Storage
	entitlements *service.EntitlementService
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(
	cases *repository.CaseRepository,
	files *repository.FileRepository,
	notes *repository.NoteRepository,
	store storage.Storage,
	entitlements *service.EntitlementService,
) *CaseHandler {
	return &CaseHandler{
		cases:        cases,
		files:        files,
		notes:        notes,
		store:        store,
		entitlements: entitlements,
	}
}

// CaseRequest represents the request body for creating or updating a case
type CaseRequest struct {
	Title                    string  `json:"title" binding:"required"`
	CaseNo                   string  `json:"case_no" binding:"required"`
	Type                     string  `json:"type" binding:"required"`
	Status                   string  `json:"status"`
	Court                    string  `json:"court" binding:"required"`
	NextHearing              *string `json:"next_hearing"`
	PartyName                string  `json:"party_name" binding:"required"`
	Respondent               string  `json:"respondent" binding:"required"`
	Lawyer                   string  `json:"lawyer" binding:"required"`
	ContactNumber            string  `json:"contact_number" binding:"required"`
	AdvocateContactNumber    *string `json:"advocate_contact_number"`
	AdversePartyAdvocateName *string `json:"adverse_party_advocate_name"`
	CaseYear                 string  `json:"case_year" binding:"required"`
	OnBehalfOf               string  `json:"on_behalf_of" binding:"required"`
	Description              *string `json:"description"`
}

func (req *CaseRequest) apply(kase *models.Case) error {
	kase.Title = req.Title
	kase.CaseNo = req.CaseNo
	kase.Type = req.Type
	kase.Court = req.Court
	kase.PartyName = req.PartyName
	kase.Respondent = req.Respondent
	kase.Lawyer = req.Lawyer
	kase.ContactNumber = req.ContactNumber
	kase.AdvocateContactNumber = req.AdvocateContactNumber
	kase.AdversePartyAdvocateName = req.AdversePartyAdvocateName
	kase.CaseYear = req.CaseYear
	kase.OnBehalfOf = models.OnBehalfOf(req.OnBehalfOf)
	kase.Description = req.Description

	if req.Status != "" {
		kase.Status = models.CaseStatus(req.Status)
	} else if kase.Status == "" {
		kase.Status = models.CasePending
	}

	if req.NextHearing != nil && *req.NextHearing != "" {
		t, err := time.Parse(time.RFC3339, *req.NextHearing)
		if err != nil {
			return errors.New("next_hearing must be RFC3339")
		}
		kase.NextHearing = &t
	} else {
		kase.NextHearing = nil
	}
	return nil
}

// CreateCase handles POST /api/cases
func (h *CaseHandler) CreateCase(c *gin.Context) {
	identity := identityFrom(c)

	var req CaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	decision, err := h.entitlements.Consume(c.Request.Context(), identity.UserID, entitlement.ResourceCases)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ENTITLEMENT_CHECK_FAILED", err.Error())
		return
	}
	if !decision.Allowed {
		respondQuotaExceeded(c, decision)
		return
	}

	kase := &models.Case{
		UserID:           identity.UserID,
		Drafts:           models.AttachmentList{},
		OpponentDrafts:   models.AttachmentList{},
		CourtOrders:      models.AttachmentList{},
		Evidence:         models.AttachmentList{},
		RelevantSections: models.AttachmentList{},
	}
	if err := req.apply(kase); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if err := h.cases.Create(c.Request.Context(), kase); err != nil {
		// The insert failed after the quota unit was taken; give it back.
		if refundErr := h.entitlements.Refund(c.Request.Context(), identity.UserID, entitlement.ResourceCases); refundErr != nil {
			log.Printf("Warning: failed to return case quota unit to user %s: %v", identity.UserID, refundErr)
		}
		if isUniqueViolation(err) {
			respondError(c, http.StatusConflict, "CASE_NO_CONFLICT", "A case with this case number already exists")
			return
		}
		respondError(c, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    kase,
	})
}

// ListCases handles GET /api/cases
func (h *CaseHandler) ListCases(c *gin.Context) {
	identity := identityFrom(c)

	cases, err := h.cases.ListByUserID(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cases,
	})
}

// loadOwnedCase fetches a case and enforces ownership. Admins may access
// any case.
func (h *CaseHandler) loadOwnedCase(c *gin.Context) (*models.Case, bool) {
	identity := identityFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid case ID format")
		return nil, false
	}

	kase, err := h.cases.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "CASE_NOT_FOUND", "Case not found")
			return nil, false
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", err.Error())
		return nil, false
	}

	if kase.UserID != identity.UserID && identity.Role != models.RoleAdmin {
		respondError(c, http.StatusNotFound, "CASE_NOT_FOUND", "Case not found")
		return nil, false
	}
	return kase, true
}

// GetCase handles GET /api/cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	kase, ok := h.loadOwnedCase(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    kase,
	})
}

// UpdateCase handles PUT /api/cases/:id
func (h *CaseHandler) UpdateCase(c *gin.Context) {
	kase, ok := h.loadOwnedCase(c)
	if !ok {
		return
	}

	var req CaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if err := req.apply(kase); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if err := h.cases.Update(c.Request.Context(), kase); err != nil {
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    kase,
	})
}

// UpdateStatusRequest represents the request body for a status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending completed hearing"`
}

// UpdateCaseStatus handles PATCH /api/cases/:id/status
func (h *CaseHandler) UpdateCaseStatus(c *gin.Context) {
	kase, ok := h.loadOwnedCase(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if err := h.cases.UpdateStatus(c.Request.Context(), kase.ID, models.CaseStatus(req.Status)); err != nil {
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"id": kase.ID, "status": req.Status},
	})
}

// DeleteCase handles DELETE /api/cases/:id. Attachment files and notes are
// deleted with the case.
func (h *CaseHandler) DeleteCase(c *gin.Context) {
	kase, ok := h.loadOwnedCase(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	for _, section := range []models.AttachmentList{
		kase.Drafts, kase.OpponentDrafts, kase.CourtOrders, kase.Evidence, kase.RelevantSections,
	} {
		for _, att := range section {
			if err := h.deleteAttachmentTarget(c, att); err != nil {
				log.Printf("Warning: failed to clean up attachment %q of case %s: %v", att.Name, kase.ID, err)
			}
		}
	}

	if err := h.cases.Delete(ctx, kase.ID); err != nil {
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"id": kase.ID},
	})
}

func (h *CaseHandler) deleteAttachmentTarget(c *gin.Context, att models.Attachment) error {
	ctx := c.Request.Context()

	switch att.Kind {
	case models.AttachmentFile:
		if att.FileID == nil {
			return nil
		}
		file, err := h.files.GetByID(ctx, *att.FileID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		if err := h.store.Delete(ctx, file.StoragePath); err != nil {
			return err
		}
		return h.files.Delete(ctx, file.ID)

	case models.AttachmentNote:
		if att.NoteID == nil {
			return nil
		}
		if err := h.notes.Delete(ctx, *att.NoteID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		return nil
	}
	return nil
}

// UploadSectionFile handles POST /api/cases/:id/sections/:section/files
func (h *CaseHandler) UploadSectionFile(c *gin.Context) {
	kase, ok := h.loadOwnedCase(c)
	if !ok {
		return
	}
	identity := identityFrom(c)

	section := models.AttachmentSection(c.Param("section"))
	if !models.ValidSection(section) {
		respondError(c, http.StatusBadRequest, "INVALID_SECTION", "Unknown attachment section")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "A file is required")
		return
	}

	src, err := header.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", err.Error())
		return
	}
	defer src.Close()

	ctx := c.Request.Context()
	fileID := uuid.New()
	storagePath, err := h.store.Upload(ctx, storage.CategoryCaseFiles, fileID, header.Filename, src)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", err.Error())
		return
	}

	file := &models.File{
		UploadedBy:   identity.UserID,
		OriginalName: header.Filename,
		StoredName:   storagePath,
		StoragePath:  storagePath,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
	}
	if err := h.files.Create(ctx, file); err != nil {
		// Roll back the stored object so nothing dangles
		if delErr := h.store.Delete(ctx, storagePath); delErr != nil {
			log.Printf("Warning: failed to remove orphaned object %s: %v", storagePath, delErr)
		}
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", err.Error())
		return
	}

	list := kase.Section(section)
	*list = append(*list, models.NewFileAttachment(file.ID, header.Filename))

	if err := h.cases.UpdateSection(ctx, kase.ID, section, *list); err != nil {
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"file":    file,
			"section": section,
		},
	})
}

// AttachNoteRequest represents the request body for attaching a note
type AttachNoteRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// AttachSectionNote handles POST /api/cases/:id/sections/:section/notes
func (h *CaseHandler) AttachSectionNote(c *gin.Context) {
	kase, ok := h.loadOwnedCase(c)
	if !ok {
		return
	}
	identity := identityFrom(c)

	section := models.AttachmentSection(c.Param("section"))
	if !models.ValidSection(section) {
		respondError(c, http.StatusBadRequest, "INVALID_SECTION", "Unknown attachment section")
		return
	}

	var req AttachNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	ctx := c.Request.Context()
	note := &models.Note{
		CreatedBy: identity.UserID,
		Title:     req.Title,
		Content:   req.Content,
	}
	if err := h.notes.Create(ctx, note); err != nil {
		respondError(c, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
		return
	}

	list := kase.Section(section)
	*list = append(*list, models.NewNoteAttachment(note.ID, note.Title))

	if err := h.cases.UpdateSection(ctx, kase.ID, section, *list); err != nil {
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"note":    note,
			"section": section,
		},
	})
}

// DeleteSectionItem handles DELETE /api/cases/:id/sections/:section/items/:itemId.
// The underlying file or note is deleted along with the entry.
func (h *CaseHandler) DeleteSectionItem(c *gin.Context) {
	kase, ok := h.loadOwnedCase(c)
	if !ok {
		return
	}

	section := models.AttachmentSection(c.Param("section"))
	if !models.ValidSection(section) {
		respondError(c, http.StatusBadRequest, "INVALID_SECTION", "Unknown attachment section")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid item ID format")
		return
	}

	list := kase.Section(section)
	idx := -1
	for i, att := range *list {
		if (att.FileID != nil && *att.FileID == itemID) || (att.NoteID != nil && *att.NoteID == itemID) {
			idx = i
			break
		}
	}
	if idx == -1 {
		respondError(c, http.StatusNotFound, "ITEM_NOT_FOUND", "Attachment not found in section")
		return
	}

	removed := (*list)[idx]
	if err := h.deleteAttachmentTarget(c, removed); err != nil {
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	*list = append((*list)[:idx], (*list)[idx+1:]...)
	if err := h.cases.UpdateSection(c.Request.Context(), kase.ID, section, *list); err != nil {
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"removed": removed.Name, "section": section},
	})
}

// DownloadFile handles GET /api/files/:id
func (h *CaseHandler) DownloadFile(c *gin.Context) {
	identity := identityFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid file ID format")
		return
	}

	ctx := c.Request.Context()
	file, err := h.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "File not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", err.Error())
		return
	}

	if file.UploadedBy != identity.UserID && identity.Role != models.RoleAdmin {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "File not found")
		return
	}

	reader, err := h.store.Download(ctx, file.StoragePath)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DOWNLOAD_FAILED", err.Error())
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.OriginalName+`"`)
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, reader, nil)
}

// CaseStats handles GET /api/cases/stats
func (h *CaseHandler) CaseStats(c *gin.Context) {
	identity := identityFrom(c)

	counts, err := h.cases.CountByStatus(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STATS_FAILED", err.Error())
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total":     total,
			"pending":   counts[models.CasePending],
			"completed": counts[models.CaseCompleted],
			"hearing":   counts[models.CaseHearing],
		},
	})
}
