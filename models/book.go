package models

import (
	"time"

	"github.com/google/uuid"
)

// BookCategory represents the shelf a book belongs to
type BookCategory string

const (
	CategoryBooks     BookCategory = "Books"
	CategoryCaseLaws  BookCategory = "Case Laws / Judgements"
	CategoryActsRules BookCategory = "Acts & Rules"
	CategoryArticles  BookCategory = "Research Papers / Articles"
)

// ValidBookCategory reports whether c is a known book category
func ValidBookCategory(c BookCategory) bool {
	switch c {
	case CategoryBooks, CategoryCaseLaws, CategoryActsRules, CategoryArticles:
		return true
	}
	return false
}

// Book represents a library book with an attached PDF
type Book struct {
	ID            uuid.UUID    `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Category      BookCategory `json:"category"`
	Image         *string      `json:"image,omitempty"`
	PDFPath       string       `json:"pdf_path"`
	Author        *string      `json:"author,omitempty"`
	PublishedDate *time.Time   `json:"published_date,omitempty"`
	FileSize      int64        `json:"file_size"`
	Downloads     int          `json:"downloads"`
	IsActive      bool         `json:"is_active"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
