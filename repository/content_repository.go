package repository

import (
	"context"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContentRepository handles database operations for home-feed content:
// announcements, cards and latest updates
type ContentRepository struct {
	db *pgxpool.Pool
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{db: db}
}

// CreateAnnouncement creates a new announcement record
func (r *ContentRepository) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	query := `
		INSERT INTO announcements (date, type, title, link, category, priority)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return r.db.QueryRow(ctx, query, a.Date, a.Type, a.Title, a.Link, a.Category, a.Priority).
		Scan(&a.ID, &a.CreatedAt)
}

// ListAnnouncements retrieves announcements, newest first
func (r *ContentRepository) ListAnnouncements(ctx context.Context) ([]*models.Announcement, error) {
	query := `
		SELECT id, date, type, title, link, category, priority, created_at
		FROM announcements
		ORDER BY date DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Announcement
	for rows.Next() {
		a := &models.Announcement{}
		err := rows.Scan(&a.ID, &a.Date, &a.Type, &a.Title, &a.Link, &a.Category, &a.Priority, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// DeleteAnnouncement deletes an announcement record
func (r *ContentRepository) DeleteAnnouncement(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	return err
}

// CreateCard creates a new card record
func (r *ContentRepository) CreateCard(ctx context.Context, c *models.Card) error {
	query := `
		INSERT INTO cards (category, image, date, title, description, is_locked)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return r.db.QueryRow(ctx, query, c.Category, c.Image, c.Date, c.Title, c.Description, c.IsLocked).
		Scan(&c.ID, &c.CreatedAt)
}

// ListCards retrieves cards, newest first
func (r *ContentRepository) ListCards(ctx context.Context) ([]*models.Card, error) {
	query := `
		SELECT id, category, image, date, title, description, is_locked, created_at
		FROM cards
		ORDER BY date DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Card
	for rows.Next() {
		c := &models.Card{}
		err := rows.Scan(&c.ID, &c.Category, &c.Image, &c.Date, &c.Title, &c.Description, &c.IsLocked, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// DeleteCard deletes a card record
func (r *ContentRepository) DeleteCard(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	return err
}

// CreateUpdate creates a new latest-update record
func (r *ContentRepository) CreateUpdate(ctx context.Context, u *models.Update) error {
	query := `
		INSERT INTO updates (title, summary, details, date, type, image, gradient)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return r.db.QueryRow(ctx, query, u.Title, u.Summary, u.Details, u.Date, u.Type, u.Image, u.Gradient).
		Scan(&u.ID, &u.CreatedAt)
}

// ListUpdates retrieves latest updates, newest first
func (r *ContentRepository) ListUpdates(ctx context.Context) ([]*models.Update, error) {
	query := `
		SELECT id, title, summary, details, date, type, image, gradient, created_at
		FROM updates
		ORDER BY date DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Update
	for rows.Next() {
		u := &models.Update{}
		err := rows.Scan(&u.ID, &u.Title, &u.Summary, &u.Details, &u.Date, &u.Type, &u.Image, &u.Gradient, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

// DeleteUpdate deletes a latest-update record
func (r *ContentRepository) DeleteUpdate(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM updates WHERE id = $1`, id)
	return err
}
