package models

import "time"

// Chat types mirror the marketplace conversation kinds.
const (
	ChatTypeGeneral  = "general"
	ChatTypePurchase = "purchase"
	ChatTypeOffer    = "offer"
)

// ValidChatType reports whether t is one of the known chat types.
func ValidChatType(t string) bool {
	switch t {
	case ChatTypeGeneral, ChatTypePurchase, ChatTypeOffer:
		return true
	}
	return false
}

// Chat is a persisted conversation between a fixed participant set, optionally
// tied to a product. Participants live in the chat_participants table.
type Chat struct {
	ID            int       `db:"id" json:"id"`
	ProductID     *int      `db:"product_id" json:"product_id,omitempty"`
	ChatType      string    `db:"chat_type" json:"chat_type"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`
}

// ChatSummary is the inbox view of a chat for one user.
type ChatSummary struct {
	ChatID        int       `json:"chat_id"`
	ChatType      string    `json:"chat_type"`
	OtherUserID   int       `json:"other_user_id"`
	OtherUserName string    `json:"other_user_name"`
	ProductID     *int      `json:"product_id,omitempty"`
	ProductName   *string   `json:"product_name,omitempty"`
	UnreadCount   int       `json:"unread_count"`
	LastMessageAt time.Time `json:"last_message_at"`
}
