package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"market-service/internal/auth"
	"market-service/internal/models"
	"market-service/internal/observability"
	"market-service/internal/repositories"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const dbTimeout = 5 * time.Second

// ChatSocketHandler manages chat room websocket connections: authorization,
// group registration, read-state reconciliation, history replay and the
// inbound message loop.
type ChatSocketHandler struct {
	hub           *Hub
	verifier      *auth.Verifier
	users         repositories.UserRepository
	chats         repositories.ChatRepository
	messages      repositories.MessageRepository
	notifications repositories.NotificationRepository
}

// NewChatSocketHandler constructs a ChatSocketHandler.
func NewChatSocketHandler(hub *Hub, verifier *auth.Verifier, users repositories.UserRepository, chats repositories.ChatRepository, messages repositories.MessageRepository, notifications repositories.NotificationRepository) *ChatSocketHandler {
	return &ChatSocketHandler{
		hub:           hub,
		verifier:      verifier,
		users:         users,
		chats:         chats,
		messages:      messages,
		notifications: notifications,
	}
}

// Handle authorizes the connection, upgrades it and hands the socket to the
// session loop. Every rejection happens before any group registration, so a
// rejected connection is never observable in the hub.
func (h *ChatSocketHandler) Handle(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	ctx, span := otel.Tracer("market-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := h.verifier.UserID(auth.TokenFromRequest(c.Request))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	user, err := h.users.GetUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	chat, err := h.chats.GetChat(ctx, chatID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	member, err := h.chats.IsParticipant(ctx, chatID, userID)
	if err != nil || !member || !chat.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for chat"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	session := NewSession(conn, userID, user.DisplayName())
	session.IP = observability.IPFromRequest(c.Request)
	session.RequestID = observability.RequestIDFromRequest(c.Request)
	session.TraceID = span.SpanContext().TraceID().String()

	chatGroup := ChatGroup(chatID)
	h.hub.Register(chatGroup, session)
	h.hub.Register(NotificationsGroup(userID), session)
	observability.IncWSActive("chat")
	publishSessionEvent(chatGroup, "ws_connect", session, "")

	// Reconcile read state before fetching history, so the replayed frames
	// already carry is_read=true for everything addressed to this user.
	h.markRead(chatID, userID)
	h.replayHistory(session, chatID)

	go h.readLoop(session, chatID, chatGroup)
}

func (h *ChatSocketHandler) markRead(chatID, userID int) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	if err := h.messages.MarkChatMessagesRead(ctx, chatID, userID); err != nil {
		log.Printf("mark messages read chat=%d user=%d: %v", chatID, userID, err)
	}
	if err := h.notifications.MarkNotificationsRead(ctx, userID, chatID); err != nil {
		log.Printf("mark notifications read chat=%d user=%d: %v", chatID, userID, err)
	}
}

func (h *ChatSocketHandler) replayHistory(s *Session, chatID int) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	history, err := h.messages.GetChatHistory(ctx, chatID)
	if err != nil {
		log.Printf("load history chat=%d: %v", chatID, err)
		_ = s.Send(models.NewErrorEvent("failed to load history"))
		return
	}
	if err := s.Send(models.NewChatHistoryEvent(history)); err != nil {
		log.Printf("send history chat=%d: %v", chatID, err)
	}
}

func (h *ChatSocketHandler) readLoop(s *Session, chatID int, chatGroup string) {
	var closeReason string
	defer func() {
		h.hub.Unregister(chatGroup, s)
		h.hub.Unregister(NotificationsGroup(s.UserID), s)
		observability.DecWSActive("chat")
		publishSessionEvent(chatGroup, "ws_disconnect", s, closeReason)
		s.Close()
	}()

	for {
		data, err := s.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				publishSessionEvent(chatGroup, "ws_error", s, closeReason)
			}
			return
		}

		var event models.InboundEvent
		if err := json.Unmarshal(data, &event); err != nil {
			_ = s.Send(models.NewErrorEvent("malformed payload"))
			continue
		}

		switch event.Type {
		case models.EventChatMessage:
			h.handleChatMessage(s, chatID, event)
		default:
			_ = s.Send(models.NewErrorEvent(fmt.Sprintf("unsupported message type %q", event.Type)))
		}
	}
}

// handleChatMessage persists the message and only then fans it out: the chat
// group gets the message frame, every other participant's feed gets a
// notification frame. A failed insert reaches nobody but the sender.
func (h *ChatSocketHandler) handleChatMessage(s *Session, chatID int, event models.InboundEvent) {
	if strings.TrimSpace(event.Content) == "" {
		_ = s.Send(models.NewErrorEvent("content is required"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	senderID := s.UserID
	msg, err := h.messages.CreateChatMessage(ctx, chatID, &senderID, event.Content, models.MessageTypeText, event.Metadata)
	if err != nil {
		log.Printf("store message chat=%d user=%d: %v", chatID, s.UserID, err)
		_ = s.Send(models.NewErrorEvent("failed to store message"))
		return
	}
	observability.IncChatMessage()

	if err := h.chats.TouchLastMessage(ctx, chatID); err != nil {
		log.Printf("touch chat %d: %v", chatID, err)
	}

	others, err := h.chats.OtherParticipants(ctx, chatID, s.UserID)
	if err != nil {
		log.Printf("load participants chat=%d: %v", chatID, err)
		others = nil
	}
	if err := h.notifications.CreateForRecipients(ctx, others, chatID, msg.ID); err != nil {
		log.Printf("create notifications chat=%d message=%d: %v", chatID, msg.ID, err)
	} else {
		observability.AddNotificationsCreated(len(others))
	}

	h.hub.Broadcast(ChatGroup(chatID), models.NewChatMessageEvent(msg, s.DisplayName))

	notification := models.NewNotificationEvent(chatID, msg, s.UserID, s.DisplayName)
	for _, recipientID := range others {
		h.hub.Broadcast(NotificationsGroup(recipientID), notification)
	}
}
