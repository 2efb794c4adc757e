package repository

import (
	"context"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `
	id, title, description, category, image, pdf_path, author,
	published_date, file_size, downloads, is_active, created_at, updated_at`

// BookRepository handles database operations for library books
type BookRepository struct {
	db *pgxpool.Pool
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *pgxpool.Pool) *BookRepository {
	return &BookRepository{db: db}
}

func scanBook(row pgx.Row) (*models.Book, error) {
	b := &models.Book{}
	err := row.Scan(
		&b.ID, &b.Title, &b.Description, &b.Category, &b.Image, &b.PDFPath, &b.Author,
		&b.PublishedDate, &b.FileSize, &b.Downloads, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanBooks(rows pgx.Rows) ([]*models.Book, error) {
	defer rows.Close()

	var books []*models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// Create creates a new book record
func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	query := `
		INSERT INTO books (
			title, description, category, image, pdf_path, author,
			published_date, file_size, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(
		ctx, query,
		book.Title, book.Description, book.Category, book.Image, book.PDFPath,
		book.Author, book.PublishedDate, book.FileSize, book.IsActive,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
}

// GetByID retrieves a book by ID
func (r *BookRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	return scanBook(r.db.QueryRow(ctx, query, id))
}

// ListActive retrieves active books, optionally filtered by category
func (r *BookRepository) ListActive(ctx context.Context, category string) ([]*models.Book, error) {
	var rows pgx.Rows
	var err error

	if category != "" {
		query := `SELECT ` + bookColumns + ` FROM books WHERE is_active = TRUE AND category = $1 ORDER BY created_at DESC`
		rows, err = r.db.Query(ctx, query, category)
	} else {
		query := `SELECT ` + bookColumns + ` FROM books WHERE is_active = TRUE ORDER BY created_at DESC`
		rows, err = r.db.Query(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	return scanBooks(rows)
}

// ListAll retrieves every book including inactive ones, for admin views
func (r *BookRepository) ListAll(ctx context.Context) ([]*models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanBooks(rows)
}

// SearchActive performs a keyword search over active books, capped at limit
func (r *BookRepository) SearchActive(ctx context.Context, query string, limit int) ([]*models.Book, error) {
	sql := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE is_active = TRUE
		  AND (title ILIKE $1 OR description ILIKE $1 OR category ILIKE $1)
		ORDER BY downloads DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, sql, "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	return scanBooks(rows)
}

// Update updates a book's editable fields
func (r *BookRepository) Update(ctx context.Context, book *models.Book) error {
	query := `
		UPDATE books SET
			title = $2, description = $3, category = $4, image = $5,
			author = $6, published_date = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.db.QueryRow(
		ctx, query,
		book.ID, book.Title, book.Description, book.Category, book.Image,
		book.Author, book.PublishedDate, book.IsActive,
	).Scan(&book.UpdatedAt)
}

// IncrementDownloads bumps the download counter
func (r *BookRepository) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE books SET downloads = downloads + 1 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// Delete deletes a book record
func (r *BookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM books WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// CategoryStats returns the number of active books per category
func (r *BookRepository) CategoryStats(ctx context.Context) (map[models.BookCategory]int, error) {
	query := `SELECT category, COUNT(*) FROM books WHERE is_active = TRUE GROUP BY category`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[models.BookCategory]int)
	for rows.Next() {
		var category models.BookCategory
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats[category] = count
	}
	return stats, rows.Err()
}
