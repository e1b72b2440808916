package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// NotificationRepository manages per-recipient chat notifications.
type NotificationRepository interface {
	CreateForRecipients(ctx context.Context, recipientIDs []int, chatID, messageID int) error
	MarkNotificationsRead(ctx context.Context, recipientID, chatID int) error
}

// NotificationRepo is a sqlx-backed repository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// CreateForRecipients inserts one notification per recipient for the message.
// The unique constraint makes concurrent duplicate attempts a no-op.
func (r *NotificationRepo) CreateForRecipients(ctx context.Context, recipientIDs []int, chatID, messageID int) error {
	if len(recipientIDs) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_notifications (recipient_id, chat_id, message_id)
         SELECT unnest($1::int[]), $2, $3
         ON CONFLICT (recipient_id, message_id) DO NOTHING`,
		pq.Array(recipientIDs), chatID, messageID)
	return err
}

// MarkNotificationsRead marks the recipient's unread notifications for the
// chat as read.
func (r *NotificationRepo) MarkNotificationsRead(ctx context.Context, recipientID, chatID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE chat_notifications SET is_read = TRUE
         WHERE recipient_id=$1 AND chat_id=$2 AND is_read = FALSE`,
		recipientID, chatID)
	return err
}
