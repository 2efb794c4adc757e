package models

import (
	"time"

	"github.com/google/uuid"
)

// File represents an uploaded file's metadata
type File struct {
	ID           uuid.UUID `json:"id"`
	UploadedBy   uuid.UUID `json:"uploaded_by"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	StoragePath  string    `json:"storage_path"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Note represents a freestanding text note
type Note struct {
	ID        uuid.UUID `json:"id"`
	CreatedBy uuid.UUID `json:"created_by"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
