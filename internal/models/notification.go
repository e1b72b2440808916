package models

import "time"

// Notification records that a recipient has an unread event tied to a specific
// message. At most one row exists per (recipient, message), enforced by a
// unique constraint.
type Notification struct {
	ID          int       `db:"id" json:"id"`
	RecipientID int       `db:"recipient_id" json:"recipient_id"`
	ChatID      int       `db:"chat_id" json:"chat_id"`
	MessageID   int       `db:"message_id" json:"message_id"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
