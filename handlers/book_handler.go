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
)

// BookHandler handles HTTP requests for the book library
type BookHandler struct {
	books        *repository.BookRepository
	store        storage.Storage
	entitlements *service.EntitlementService
}

// NewBookHandler creates a new book handler
func NewBookHandler(books *repository.BookRepository, store storage.Storage, entitlements *service.EntitlementService) *BookHandler {
	return &BookHandler{books: books, store: store, entitlements: entitlements}
}

// ListBooks handles GET /api/books
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.books.ListActive(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    books,
	})
}

// GetBook handles GET /api/books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid book ID format")
		return
	}

	book, err := h.books.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    book,
	})
}

// CreateBook handles POST /api/admin/books. Multipart upload with a "pdf"
// file, an optional "image" cover, and the metadata fields.
func (h *BookHandler) CreateBook(c *gin.Context) {
	category := models.BookCategory(c.PostForm("category"))
	if !models.ValidBookCategory(category) {
		respondError(c, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown book category")
		return
	}

	title := c.PostForm("title")
	if title == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "title is required")
		return
	}

	pdfHeader, err := c.FormFile("pdf")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "A pdf file is required")
		return
	}

	ctx := c.Request.Context()
	bookID := uuid.New()

	pdfSrc, err := pdfHeader.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", err.Error())
		return
	}
	defer pdfSrc.Close()

	pdfPath, err := h.store.Upload(ctx, storage.CategoryBooks, bookID, pdfHeader.Filename, pdfSrc)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", err.Error())
		return
	}

	book := &models.Book{
		Title:       title,
		Description: c.PostForm("description"),
		Category:    category,
		PDFPath:     pdfPath,
		FileSize:    pdfHeader.Size,
		IsActive:    true,
	}
	if author := c.PostForm("author"); author != "" {
		book.Author = &author
	}
	if published := c.PostForm("published_date"); published != "" {
		if t, err := time.Parse("2006-01-02", published); err == nil {
			book.PublishedDate = &t
		}
	}

	if imgHeader, err := c.FormFile("image"); err == nil {
		imgSrc, err := imgHeader.Open()
		if err == nil {
			defer imgSrc.Close()
			if imgPath, err := h.store.Upload(ctx, storage.CategoryBookCovers, bookID, imgHeader.Filename, imgSrc); err == nil {
				book.Image = &imgPath
			}
		}
	}

	if err := h.books.Create(ctx, book); err != nil {
		respondError(c, http.StatusInternalServerError, "CREATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    book,
	})
}

// UpdateBookRequest represents the request body for updating book metadata
type UpdateBookRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category" binding:"required"`
	Author      *string `json:"author"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateBook handles PUT /api/admin/books/:id
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid book ID format")
		return
	}

	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if !models.ValidBookCategory(models.BookCategory(req.Category)) {
		respondError(c, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown book category")
		return
	}

	ctx := c.Request.Context()
	book, err := h.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", err.Error())
		return
	}

	book.Title = req.Title
	book.Description = req.Description
	book.Category = models.BookCategory(req.Category)
	book.Author = req.Author
	if req.IsActive != nil {
		book.IsActive = *req.IsActive
	}

	if err := h.books.Update(ctx, book); err != nil {
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    book,
	})
}

// DeleteBook handles DELETE /api/admin/books/:id
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid book ID format")
		return
	}

	ctx := c.Request.Context()
	book, err := h.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", err.Error())
		return
	}

	if err := h.store.Delete(ctx, book.PDFPath); err != nil {
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}
	if book.Image != nil {
		_ = h.store.Delete(ctx, *book.Image)
	}

	if err := h.books.Delete(ctx, id); err != nil {
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"id": id},
	})
}

// DownloadBook handles GET /api/books/:id/download. Counts against the
// daily quota for trial users and bumps the book's download counter.
func (h *BookHandler) DownloadBook(c *gin.Context) {
	identity := identityFrom(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid book ID format")
		return
	}

	ctx := c.Request.Context()
	book, err := h.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", err.Error())
		return
	}
	if !book.IsActive {
		respondError(c, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found")
		return
	}

	decision, err := h.entitlements.Consume(ctx, identity.UserID, entitlement.ResourceBooks)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ENTITLEMENT_CHECK_FAILED", err.Error())
		return
	}
	if !decision.Allowed {
		respondQuotaExceeded(c, decision)
		return
	}

	reader, err := h.store.Download(ctx, book.PDFPath)
	if err != nil {
		// The download never started; give the quota unit back.
		if refundErr := h.entitlements.Refund(ctx, identity.UserID, entitlement.ResourceBooks); refundErr != nil {
			log.Printf("Warning: failed to return book quota unit to user %s: %v", identity.UserID, refundErr)
		}
		respondError(c, http.StatusInternalServerError, "DOWNLOAD_FAILED", err.Error())
		return
	}
	defer reader.Close()

	if err := h.books.IncrementDownloads(ctx, id); err != nil {
		log.Printf("Warning: failed to bump download count for book %s: %v", id, err)
	}

	c.Header("Content-Disposition", `attachment; filename="`+book.Title+`.pdf"`)
	c.DataFromReader(http.StatusOK, book.FileSize, "application/pdf", reader, nil)
}

// BookStats handles GET /api/books/stats
func (h *BookHandler) BookStats(c *gin.Context) {
	stats, err := h.books.CategoryStats(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STATS_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
