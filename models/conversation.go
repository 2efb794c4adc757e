package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MessageRole distinguishes user messages from assistant replies
type MessageRole string

const (
	RoleMessageUser      MessageRole = "user"
	RoleMessageAssistant MessageRole = "assistant"
)

// Message is one turn in a conversation. Sources is populated only on
// assistant messages.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Sources   []string    `json:"sources,omitempty"`
}

// MessageList is a JSONB-stored ordered list of messages
type MessageList []Message

// Value implements driver.Valuer for database storage
func (l MessageList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (l *MessageList) Scan(value interface{}) error {
	if value == nil {
		*l = MessageList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("cannot scan message list from non-string type")
	}

	return json.Unmarshal(data, l)
}

// Conversation represents a chat conversation and its full message history
type Conversation struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"user_id"`
	Title        string      `json:"title"`
	Messages     MessageList `json:"messages"`
	IsBookmarked bool        `json:"is_bookmarked"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
