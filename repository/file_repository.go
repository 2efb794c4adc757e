package repository

import (
	"context"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FileRepository handles database operations for uploaded files
type FileRepository struct {
	db *pgxpool.Pool
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{db: db}
}

// Create creates a new file record
func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (
			uploaded_by, original_name, stored_name, storage_path, mime_type, size
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, uploaded_at`

	return r.db.QueryRow(
		ctx, query,
		file.UploadedBy,
		file.OriginalName,
		file.StoredName,
		file.StoragePath,
		file.MimeType,
		file.Size,
	).Scan(&file.ID, &file.UploadedAt)
}

// GetByID retrieves a file by ID
func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	file := &models.File{}
	query := `
		SELECT id, uploaded_by, original_name, stored_name, storage_path, mime_type, size, uploaded_at
		FROM files
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.UploadedBy,
		&file.OriginalName,
		&file.StoredName,
		&file.StoragePath,
		&file.MimeType,
		&file.Size,
		&file.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// ListByUploader retrieves all files uploaded by a user
func (r *FileRepository) ListByUploader(ctx context.Context, userID uuid.UUID) ([]*models.File, error) {
	query := `
		SELECT id, uploaded_by, original_name, stored_name, storage_path, mime_type, size, uploaded_at
		FROM files
		WHERE uploaded_by = $1
		ORDER BY uploaded_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.File
	for rows.Next() {
		file := &models.File{}
		err := rows.Scan(
			&file.ID,
			&file.UploadedBy,
			&file.OriginalName,
			&file.StoredName,
			&file.StoragePath,
			&file.MimeType,
			&file.Size,
			&file.UploadedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// Delete deletes a file record
func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM files WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
