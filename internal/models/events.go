package models

import (
	"fmt"
	"time"
)

// WebSocket event kinds. Inbound and outbound frames carry one of these in
// their "type" field and are dispatched with an exhaustive switch.
const (
	EventChatMessage  = "chat_message"
	EventChatHistory  = "chat_history"
	EventNotification = "new_message_notification"
	EventError        = "error"
)

// InboundEvent is a client frame on a chat room socket.
type InboundEvent struct {
	Type     string   `json:"type"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// MessagePayload is the wire form of a message in history and broadcast frames.
type MessagePayload struct {
	ID          int       `json:"id"`
	SenderID    *int      `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	MessageType string    `json:"message_type"`
	Metadata    Metadata  `json:"metadata"`
	IsRead      bool      `json:"is_read"`
}

// ChatHistoryEvent replays a chat's full history, oldest first.
type ChatHistoryEvent struct {
	Type     string           `json:"type"`
	Messages []MessagePayload `json:"messages"`
}

// ChatMessageEvent broadcasts a freshly persisted message to the chat group.
type ChatMessageEvent struct {
	Type    string         `json:"type"`
	Message MessagePayload `json:"message"`
}

// NotificationData identifies the message behind a notification.
type NotificationData struct {
	ChatID     int    `json:"chat_id"`
	MessageID  int    `json:"message_id"`
	SenderID   int    `json:"sender_id"`
	SenderName string `json:"sender_name"`
}

// NotificationPayload is the wire form of a cross-chat notification.
type NotificationPayload struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	ReferenceID int              `json:"reference_id"`
	CreatedAt   time.Time        `json:"created_at"`
	Read        bool             `json:"read"`
	Data        NotificationData `json:"data"`
}

// NotificationEvent is delivered to each other participant's feed.
type NotificationEvent struct {
	Type         string              `json:"type"`
	Notification NotificationPayload `json:"notification"`
}

// ErrorEvent reports a rejected inbound frame or a failed send to the client.
type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// NewErrorEvent builds an error frame.
func NewErrorEvent(reason string) ErrorEvent {
	return ErrorEvent{Type: EventError, Error: reason}
}

// NewChatMessageEvent wraps a persisted message for broadcast. Freshly sent
// messages are always unread for their audience.
func NewChatMessageEvent(msg Message, senderName string) ChatMessageEvent {
	return ChatMessageEvent{
		Type: EventChatMessage,
		Message: MessagePayload{
			ID:          msg.ID,
			SenderID:    msg.SenderID,
			SenderName:  senderName,
			Content:     msg.Content,
			Timestamp:   msg.CreatedAt,
			MessageType: msg.MessageType,
			Metadata:    msg.Metadata,
			IsRead:      false,
		},
	}
}

// NewNotificationEvent builds the feed frame for one triggering message.
func NewNotificationEvent(chatID int, msg Message, senderID int, senderName string) NotificationEvent {
	return NotificationEvent{
		Type: EventNotification,
		Notification: NotificationPayload{
			ID:          fmt.Sprintf("chat-%d-%d", chatID, msg.ID),
			Type:        "chat",
			Title:       fmt.Sprintf("New message from %s", senderName),
			Message:     msg.Content,
			ReferenceID: chatID,
			CreatedAt:   msg.CreatedAt,
			Read:        false,
			Data: NotificationData{
				ChatID:     chatID,
				MessageID:  msg.ID,
				SenderID:   senderID,
				SenderName: senderName,
			},
		},
	}
}

// NewChatHistoryEvent wraps replayed messages, oldest first.
func NewChatHistoryEvent(msgs []ChatMessage) ChatHistoryEvent {
	payloads := make([]MessagePayload, 0, len(msgs))
	for _, m := range msgs {
		payloads = append(payloads, MessagePayload{
			ID:          m.ID,
			SenderID:    m.SenderID,
			SenderName:  m.SenderName,
			Content:     m.Content,
			Timestamp:   m.CreatedAt,
			MessageType: m.MessageType,
			Metadata:    m.Metadata,
			IsRead:      m.IsRead,
		})
	}
	return ChatHistoryEvent{Type: EventChatHistory, Messages: payloads}
}
