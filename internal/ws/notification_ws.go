package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"market-service/internal/auth"
	"market-service/internal/observability"
)

// NotificationSocketHandler manages personal notification feed connections.
// The feed has no chat-specific authorization and no inbound protocol; frames
// broadcast to the user's notification group are forwarded verbatim.
type NotificationSocketHandler struct {
	hub      *Hub
	verifier *auth.Verifier
}

// NewNotificationSocketHandler constructs a NotificationSocketHandler.
func NewNotificationSocketHandler(hub *Hub, verifier *auth.Verifier) *NotificationSocketHandler {
	return &NotificationSocketHandler{hub: hub, verifier: verifier}
}

// Handle upgrades the connection and subscribes it to the user's feed.
func (h *NotificationSocketHandler) Handle(c *gin.Context) {
	userID, err := h.verifier.UserID(auth.TokenFromRequest(c.Request))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	session := NewSession(conn, userID, "")
	session.IP = observability.IPFromRequest(c.Request)
	session.RequestID = observability.RequestIDFromRequest(c.Request)

	group := NotificationsGroup(userID)
	h.hub.Register(group, session)
	observability.IncWSActive("notifications")
	publishSessionEvent(group, "ws_connect", session, "")

	go func() {
		var closeReason string
		defer func() {
			h.hub.Unregister(group, session)
			observability.DecWSActive("notifications")
			publishSessionEvent(group, "ws_disconnect", session, closeReason)
			session.Close()
		}()
		// Inbound frames carry no protocol on the feed; drain until close.
		for {
			if _, err := session.ReadMessage(); err != nil {
				closeReason = err.Error()
				return
			}
		}
	}()
}
