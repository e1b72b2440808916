package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"market-service/internal/auth"
	"market-service/internal/models"
)

func newFeedServer(t *testing.T, hub *Hub, verifier *auth.Verifier) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws/notifications", NewNotificationSocketHandler(hub, verifier).Handle)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestNotificationSocketRejectsAnonymous(t *testing.T) {
	hub := NewHub()
	server := newFeedServer(t, hub, auth.NewVerifier("test-secret"))

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/notifications"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestNotificationSocketReceivesFeedFrames(t *testing.T) {
	hub := NewHub()
	verifier := auth.NewVerifier("test-secret")
	server := newFeedServer(t, hub, verifier)

	token, err := verifier.Sign(9, time.Hour)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/notifications?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	waitForGroupSize(t, hub, NotificationsGroup(9), 1)

	senderID := 2
	msg := models.Message{ID: 11, ChatID: 4, SenderID: &senderID, Content: "ping", MessageType: models.MessageTypeText, CreatedAt: time.Now()}
	hub.Broadcast(NotificationsGroup(9), models.NewNotificationEvent(4, msg, senderID, "bob"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]any
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, models.EventNotification, frame["type"])

	notification := frame["notification"].(map[string]any)
	require.Equal(t, "chat-4-11", notification["id"])
	require.Equal(t, "chat", notification["type"])
	require.Equal(t, false, notification["read"])
}

func TestNotificationSocketDisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	verifier := auth.NewVerifier("test-secret")
	server := newFeedServer(t, hub, verifier)

	token, err := verifier.Sign(9, time.Hour)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/notifications?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()

	waitForGroupSize(t, hub, NotificationsGroup(9), 1)
	conn.Close()
	waitForGroupSize(t, hub, NotificationsGroup(9), 0)
}
