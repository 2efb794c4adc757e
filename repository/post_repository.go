package repository

import (
	"context"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postColumns = `
	id, title, description, full_content, image, date, type, category,
	created_at, updated_at`

// PostRepository handles database operations for blog posts
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

func scanPost(row pgx.Row) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.FullContent, &p.Image, &p.Date,
		&p.Type, &p.Category, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanPosts(rows pgx.Rows) ([]*models.Post, error) {
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Create creates a new post record
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (title, description, full_content, image, date, type, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		post.Title, post.Description, post.FullContent, post.Image,
		post.Date, post.Type, post.Category,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPost(r.db.QueryRow(ctx, query, id))
}

// List retrieves all posts, newest first, optionally filtered by type
func (r *PostRepository) List(ctx context.Context, postType string) ([]*models.Post, error) {
	var rows pgx.Rows
	var err error

	if postType != "" {
		query := `SELECT ` + postColumns + ` FROM posts WHERE type = $1 ORDER BY date DESC`
		rows, err = r.db.Query(ctx, query, postType)
	} else {
		query := `SELECT ` + postColumns + ` FROM posts ORDER BY date DESC`
		rows, err = r.db.Query(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// Search performs a keyword search over posts, capped at limit
func (r *PostRepository) Search(ctx context.Context, query string, limit int) ([]*models.Post, error) {
	sql := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE title ILIKE $1 OR description ILIKE $1 OR full_content ILIKE $1
		ORDER BY date DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, sql, "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// Update updates a post's editable fields
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts SET
			title = $2, description = $3, full_content = $4, image = $5,
			date = $6, type = $7, category = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.db.QueryRow(
		ctx, query,
		post.ID, post.Title, post.Description, post.FullContent, post.Image,
		post.Date, post.Type, post.Category,
	).Scan(&post.UpdatedAt)
}

// Delete deletes a post record
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
