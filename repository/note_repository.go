package repository

import (
	"context"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NoteRepository handles database operations for notes
type NoteRepository struct {
	db *pgxpool.Pool
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{db: db}
}

func scanNote(row pgx.Row) (*models.Note, error) {
	n := &models.Note{}
	err := row.Scan(&n.ID, &n.CreatedBy, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Create creates a new note record
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (created_by, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query, note.CreatedBy, note.Title, note.Content).
		Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
}

// GetByID retrieves a note by ID
func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	query := `SELECT id, created_by, title, content, created_at, updated_at FROM notes WHERE id = $1`
	return scanNote(r.db.QueryRow(ctx, query, id))
}

// ListByCreator retrieves all notes created by a user, newest first
func (r *NoteRepository) ListByCreator(ctx context.Context, userID uuid.UUID) ([]*models.Note, error) {
	query := `
		SELECT id, created_by, title, content, created_at, updated_at
		FROM notes
		WHERE created_by = $1
		ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// SearchByCreator performs a keyword search over the user's own notes
func (r *NoteRepository) SearchByCreator(ctx context.Context, userID uuid.UUID, query string) ([]*models.Note, error) {
	sql := `
		SELECT id, created_by, title, content, created_at, updated_at
		FROM notes
		WHERE created_by = $1 AND (title ILIKE $2 OR content ILIKE $2)
		ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, sql, userID, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Update updates a note's title and content
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	query := `
		UPDATE notes SET title = $2, content = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.db.QueryRow(ctx, query, note.ID, note.Title, note.Content).Scan(&note.UpdatedAt)
}

// Delete deletes a note record
func (r *NoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM notes WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
