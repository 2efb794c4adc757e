package models

import (
	"time"

	"github.com/google/uuid"
)

// AnnouncementPriority represents how prominently an announcement is shown
type AnnouncementPriority string

const (
	PriorityHigh   AnnouncementPriority = "high"
	PriorityMedium AnnouncementPriority = "medium"
	PriorityLow    AnnouncementPriority = "low"
)

// Announcement represents a dated notice shown on the home feed
type Announcement struct {
	ID        uuid.UUID            `json:"id"`
	Date      time.Time            `json:"date"`
	Type      string               `json:"type"`
	Title     string               `json:"title"`
	Link      *string              `json:"link,omitempty"`
	Category  string               `json:"category"`
	Priority  AnnouncementPriority `json:"priority"`
	CreatedAt time.Time            `json:"created_at"`
}

// Card represents a "more about" content card
type Card struct {
	ID          uuid.UUID `json:"id"`
	Category    string    `json:"category"`
	Image       *string   `json:"image,omitempty"`
	Date        time.Time `json:"date"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsLocked    bool      `json:"is_locked"`
	CreatedAt   time.Time `json:"created_at"`
}

// Update represents a "latest update" entry
type Update struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Details   string    `json:"details"`
	Date      time.Time `json:"date"`
	Type      string    `json:"type"`
	Image     *string   `json:"image,omitempty"`
	Gradient  *string   `json:"gradient,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
