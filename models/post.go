package models

import (
	"time"

	"github.com/google/uuid"
)

// PostType represents the placement of a blog post
type PostType string

const (
	PostPicked   PostType = "picked"
	PostLatest   PostType = "latest"
	PostFeatured PostType = "featured"
)

// Post represents a blog article
type Post struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FullContent string    `json:"full_content"`
	Image       *string   `json:"image,omitempty"`
	Date        time.Time `json:"date"`
	Type        PostType  `json:"type"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
