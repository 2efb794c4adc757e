package repository

import (
	"context"
	"fmt"

	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const conversationColumns = `id, user_id, title, messages, is_bookmarked, created_at, updated_at`

// ConversationRepository handles database operations for conversations
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	c := &models.Conversation{}
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Messages, &c.IsBookmarked, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create creates a new conversation record
func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	query := `
		INSERT INTO conversations (user_id, title, messages, is_bookmarked)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query, conv.UserID, conv.Title, conv.Messages, conv.IsBookmarked).
		Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
}

// GetByID retrieves a conversation with its full message history
func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	return scanConversation(r.db.QueryRow(ctx, query, id))
}

// ListByUserID retrieves conversation summaries for a user, most recently
// active first. Message bodies are not loaded.
func (r *ConversationRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	query := `
		SELECT id, user_id, title, is_bookmarked, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []*models.Conversation
	for rows.Next() {
		c := &models.Conversation{}
		err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.IsBookmarked, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// AppendMessages appends messages to a conversation atomically. The row is
// locked for the duration of the transaction so concurrent appends to the
// same conversation serialize instead of interleaving or losing writes.
func (r *ConversationRepository) AppendMessages(ctx context.Context, id uuid.UUID, messages ...models.Message) (*models.Conversation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing models.MessageList
	err = tx.QueryRow(ctx, `SELECT messages FROM conversations WHERE id = $1 FOR UPDATE`, id).
		Scan(&existing)
	if err != nil {
		return nil, err
	}

	existing = append(existing, messages...)

	row := tx.QueryRow(ctx, `
		UPDATE conversations SET messages = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+conversationColumns, id, existing)

	conv, err := scanConversation(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return conv, nil
}

// SetBookmarked sets the bookmark flag on a conversation
func (r *ConversationRepository) SetBookmarked(ctx context.Context, id uuid.UUID, bookmarked bool) error {
	query := `UPDATE conversations SET is_bookmarked = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, bookmarked)
	return err
}

// Delete deletes a conversation record
func (r *ConversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM conversations WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
