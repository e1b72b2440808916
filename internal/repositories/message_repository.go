package repositories

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"market-service/internal/models"
)

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateChatMessage(ctx context.Context, chatID int, senderID *int, content, messageType string, metadata models.Metadata) (models.Message, error)
	GetChatHistory(ctx context.Context, chatID int) ([]models.ChatMessage, error)
	GetChatMessagesAfter(ctx context.Context, chatID, afterID int) ([]models.ChatMessage, error)
	MarkChatMessagesRead(ctx context.Context, chatID, readerID int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateChatMessage stores a message. A nil senderID records a system message.
func (r *MessageRepo) CreateChatMessage(ctx context.Context, chatID int, senderID *int, content, messageType string, metadata models.Metadata) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (chat_id, sender_id, content, message_type, metadata)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, chat_id, sender_id, content, message_type, metadata, is_read, created_at`,
		chatID, senderID, content, messageType, metadata).StructScan(&msg)
	return msg, err
}

type historyRow struct {
	models.Message
	Username  sql.NullString `db:"username"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
}

func (row historyRow) toChatMessage() models.ChatMessage {
	name := "System"
	if row.SenderID != nil {
		name = models.DisplayName(row.FirstName.String, row.LastName.String, row.Username.String)
	}
	return models.ChatMessage{Message: row.Message, SenderName: name}
}

const historySelect = `SELECT m.id, m.chat_id, m.sender_id, m.content, m.message_type, m.metadata, m.is_read, m.created_at,
        u.username, u.first_name, u.last_name
    FROM messages m
    LEFT JOIN users u ON u.id = m.sender_id`

// GetChatHistory returns every message in the chat, oldest first, with the
// sender's display name resolved.
func (r *MessageRepo) GetChatHistory(ctx context.Context, chatID int) ([]models.ChatMessage, error) {
	return r.selectHistory(ctx, historySelect+` WHERE m.chat_id=$1 ORDER BY m.created_at ASC, m.id ASC`, chatID)
}

// GetChatMessagesAfter returns messages with id greater than afterID, oldest
// first. afterID zero returns the full history.
func (r *MessageRepo) GetChatMessagesAfter(ctx context.Context, chatID, afterID int) ([]models.ChatMessage, error) {
	return r.selectHistory(ctx,
		historySelect+` WHERE m.chat_id=$1 AND m.id > $2 ORDER BY m.created_at ASC, m.id ASC`, chatID, afterID)
}

func (r *MessageRepo) selectHistory(ctx context.Context, query string, args ...any) ([]models.ChatMessage, error) {
	var rows []historyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	msgs := make([]models.ChatMessage, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, row.toChatMessage())
	}
	return msgs, nil
}

// MarkChatMessagesRead marks every message in the chat not sent by the reader
// as read. System messages count as "from another sender".
func (r *MessageRepo) MarkChatMessagesRead(ctx context.Context, chatID, readerID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE
         WHERE chat_id=$1 AND is_read = FALSE AND (sender_id IS NULL OR sender_id <> $2)`,
		chatID, readerID)
	return err
}
