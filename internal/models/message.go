package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Message types.
const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
)

// Metadata is the free-form message metadata map, stored as JSONB.
type Metadata map[string]any

// Value implements driver.Valuer.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *Metadata) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}
}

// Message is a chat message. A nil SenderID marks a system-authored message.
// Rows are immutable after insert except for the read flag.
type Message struct {
	ID          int       `db:"id" json:"id"`
	ChatID      int       `db:"chat_id" json:"chat_id"`
	SenderID    *int      `db:"sender_id" json:"sender_id"`
	Content     string    `db:"content" json:"content"`
	MessageType string    `db:"message_type" json:"message_type"`
	Metadata    Metadata  `db:"metadata" json:"metadata"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ChatMessage is a message joined with its sender's display name.
type ChatMessage struct {
	Message
	SenderName string `json:"sender_name"`
}
