package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"market-service/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

// ChatRepository abstracts chat persistence.
type ChatRepository interface {
	CreateOrGetChat(ctx context.Context, buyerID, sellerUserID int, productID *int, chatType string) (models.Chat, error)
	GetChat(ctx context.Context, chatID int) (models.Chat, error)
	IsParticipant(ctx context.Context, chatID, userID int) (bool, error)
	OtherParticipants(ctx context.Context, chatID, userID int) ([]int, error)
	ListChatsForUser(ctx context.Context, userID int) ([]models.ChatSummary, error)
	TouchLastMessage(ctx context.Context, chatID int) error
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

const chatColumns = `id, product_id, chat_type, is_active, created_at, last_message_at`

// CreateOrGetChat returns the chat between the two users about the given
// product, creating it together with its participant rows when absent.
func (r *ChatRepo) CreateOrGetChat(ctx context.Context, buyerID, sellerUserID int, productID *int, chatType string) (models.Chat, error) {
	if buyerID == sellerUserID {
		return models.Chat{}, errors.New("cannot create chat with self")
	}
	if !models.ValidChatType(chatType) {
		return models.Chat{}, fmt.Errorf("unknown chat type %q", chatType)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, err
	}
	defer tx.Rollback()

	var chat models.Chat
	query := `SELECT c.id, c.product_id, c.chat_type, c.is_active, c.created_at, c.last_message_at
        FROM chats c
        JOIN chat_participants p1 ON p1.chat_id = c.id AND p1.user_id = $1
        JOIN chat_participants p2 ON p2.chat_id = c.id AND p2.user_id = $2
        WHERE c.product_id IS NOT DISTINCT FROM $3 AND c.chat_type = $4 AND c.is_active = TRUE`
	err = tx.GetContext(ctx, &chat, query, buyerID, sellerUserID, productID, chatType)
	if err == nil {
		return chat, tx.Commit()
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, err
	}

	if err := tx.QueryRowxContext(ctx,
		`INSERT INTO chats (product_id, chat_type) VALUES ($1, $2) RETURNING `+chatColumns,
		productID, chatType).StructScan(&chat); err != nil {
		return models.Chat{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2), ($1, $3)`,
		chat.ID, buyerID, sellerUserID); err != nil {
		return models.Chat{}, err
	}
	return chat, tx.Commit()
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// IsParticipant checks whether a user belongs to the chat.
func (r *ChatRepo) IsParticipant(ctx context.Context, chatID, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM chat_participants WHERE chat_id=$1 AND user_id=$2)`, chatID, userID)
	return exists, err
}

// OtherParticipants returns the ids of every participant except the given user.
func (r *ChatRepo) OtherParticipants(ctx context.Context, chatID, userID int) ([]int, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids,
		`SELECT user_id FROM chat_participants WHERE chat_id=$1 AND user_id<>$2 ORDER BY user_id`, chatID, userID)
	return ids, err
}

// ListChatsForUser returns the user's active chats, newest activity first,
// with the other participant's name, product context and unread count.
func (r *ChatRepo) ListChatsForUser(ctx context.Context, userID int) ([]models.ChatSummary, error) {
	query := `SELECT c.id AS chat_id, c.chat_type, c.product_id, pr.name AS product_name, c.last_message_at,
            u.id AS other_user_id, u.username, u.first_name, u.last_name,
            (SELECT COUNT(*) FROM messages m
                WHERE m.chat_id = c.id AND m.is_read = FALSE
                AND (m.sender_id IS NULL OR m.sender_id <> $1)) AS unread_count
        FROM chats c
        JOIN chat_participants cp ON cp.chat_id = c.id AND cp.user_id = $1
        JOIN chat_participants op ON op.chat_id = c.id AND op.user_id <> $1
        JOIN users u ON u.id = op.user_id
        LEFT JOIN products pr ON pr.id = c.product_id
        WHERE c.is_active = TRUE
        ORDER BY c.last_message_at DESC`

	type summaryRow struct {
		ChatID        int       `db:"chat_id"`
		ChatType      string    `db:"chat_type"`
		ProductID     *int      `db:"product_id"`
		ProductName   *string   `db:"product_name"`
		LastMessageAt time.Time `db:"last_message_at"`
		OtherUserID   int       `db:"other_user_id"`
		Username      string    `db:"username"`
		FirstName     string    `db:"first_name"`
		LastName      string    `db:"last_name"`
		UnreadCount   int       `db:"unread_count"`
	}

	var rows []summaryRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, models.ChatSummary{
			ChatID:        row.ChatID,
			ChatType:      row.ChatType,
			OtherUserID:   row.OtherUserID,
			OtherUserName: models.DisplayName(row.FirstName, row.LastName, row.Username),
			ProductID:     row.ProductID,
			ProductName:   row.ProductName,
			UnreadCount:   row.UnreadCount,
			LastMessageAt: row.LastMessageAt,
		})
	}
	return summaries, nil
}

// TouchLastMessage bumps the chat's last-activity timestamp.
func (r *ChatRepo) TouchLastMessage(ctx context.Context, chatID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE chats SET last_message_at = NOW() WHERE id=$1`, chatID)
	return err
}
