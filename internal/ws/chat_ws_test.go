package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"market-service/internal/auth"
	"market-service/internal/mocks"
	"market-service/internal/models"
)

type chatSocketFixture struct {
	hub           *Hub
	verifier      *auth.Verifier
	users         *mocks.UserRepositoryMock
	chats         *mocks.ChatRepositoryMock
	messages      *mocks.MessageRepositoryMock
	notifications *mocks.NotificationRepositoryMock
	server        *httptest.Server
}

func newChatSocketFixture(t *testing.T) *chatSocketFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &chatSocketFixture{
		hub:           NewHub(),
		verifier:      auth.NewVerifier("test-secret"),
		users:         new(mocks.UserRepositoryMock),
		chats:         new(mocks.ChatRepositoryMock),
		messages:      new(mocks.MessageRepositoryMock),
		notifications: new(mocks.NotificationRepositoryMock),
	}

	chatWS := NewChatSocketHandler(f.hub, f.verifier, f.users, f.chats, f.messages, f.notifications)
	feedWS := NewNotificationSocketHandler(f.hub, f.verifier)

	router := gin.New()
	router.GET("/ws/chats/:chat_id", chatWS.Handle)
	router.GET("/ws/notifications", feedWS.Handle)

	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)
	return f
}

func (f *chatSocketFixture) wsURL(path string) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + path
}

func (f *chatSocketFixture) token(t *testing.T, userID int) string {
	t.Helper()
	token, err := f.verifier.Sign(userID, time.Hour)
	require.NoError(t, err)
	return token
}

// allowHandshake stubs everything a successful chat room handshake touches.
func (f *chatSocketFixture) allowHandshake(chatID, userID int, username string) {
	f.users.On("GetUser", mock.Anything, userID).Return(models.User{ID: userID, Username: username}, nil)
	f.chats.On("GetChat", mock.Anything, chatID).Return(models.Chat{ID: chatID, ChatType: models.ChatTypeGeneral, IsActive: true}, nil)
	f.chats.On("IsParticipant", mock.Anything, chatID, userID).Return(true, nil)
	f.messages.On("MarkChatMessagesRead", mock.Anything, chatID, userID).Return(nil)
	f.notifications.On("MarkNotificationsRead", mock.Anything, userID, chatID).Return(nil)
	f.messages.On("GetChatHistory", mock.Anything, chatID).Return([]models.ChatMessage{}, nil)
}

func dialSocket(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]any
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestChatSocketRejectsAnonymous(t *testing.T) {
	f := newChatSocketFixture(t)

	_, resp, err := websocket.DefaultDialer.Dial(f.wsURL("/ws/chats/7"), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	require.Equal(t, 0, f.hub.GroupSize(ChatGroup(7)))
	f.messages.AssertNotCalled(t, "MarkChatMessagesRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatSocketRejectsNonParticipant(t *testing.T) {
	f := newChatSocketFixture(t)

	f.users.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1, Username: "alice"}, nil)
	f.chats.On("GetChat", mock.Anything, 7).Return(models.Chat{ID: 7, IsActive: true}, nil)
	f.chats.On("IsParticipant", mock.Anything, 7, 1).Return(false, nil)

	_, resp, err := websocket.DefaultDialer.Dial(f.wsURL("/ws/chats/7?token="+f.token(t, 1)), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	require.Equal(t, 0, f.hub.GroupSize(ChatGroup(7)))
}

func TestChatSocketRejectsInactiveChat(t *testing.T) {
	f := newChatSocketFixture(t)

	f.users.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1, Username: "alice"}, nil)
	f.chats.On("GetChat", mock.Anything, 7).Return(models.Chat{ID: 7, IsActive: false}, nil)
	f.chats.On("IsParticipant", mock.Anything, 7, 1).Return(true, nil)

	_, resp, err := websocket.DefaultDialer.Dial(f.wsURL("/ws/chats/7?token="+f.token(t, 1)), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestChatSocketRejectsUnknownChat(t *testing.T) {
	f := newChatSocketFixture(t)

	f.users.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1, Username: "alice"}, nil)
	f.chats.On("GetChat", mock.Anything, 7).Return(models.Chat{}, assert.AnError)

	_, resp, err := websocket.DefaultDialer.Dial(f.wsURL("/ws/chats/7?token="+f.token(t, 1)), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestChatSocketMarksReadBeforeHistory(t *testing.T) {
	f := newChatSocketFixture(t)

	var mu sync.Mutex
	var calls []string
	record := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) {
			mu.Lock()
			calls = append(calls, name)
			mu.Unlock()
		}
	}

	f.users.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1, Username: "alice"}, nil)
	f.chats.On("GetChat", mock.Anything, 7).Return(models.Chat{ID: 7, IsActive: true}, nil)
	f.chats.On("IsParticipant", mock.Anything, 7, 1).Return(true, nil)
	f.messages.On("MarkChatMessagesRead", mock.Anything, 7, 1).Run(record("messages")).Return(nil)
	f.notifications.On("MarkNotificationsRead", mock.Anything, 1, 7).Run(record("notifications")).Return(nil)
	f.messages.On("GetChatHistory", mock.Anything, 7).Run(record("history")).Return([]models.ChatMessage{
		{Message: models.Message{ID: 5, ChatID: 7, Content: "old", MessageType: models.MessageTypeText, IsRead: true}, SenderName: "bob"},
	}, nil)

	conn := dialSocket(t, f.wsURL("/ws/chats/7?token="+f.token(t, 1)))

	frame := readFrame(t, conn)
	require.Equal(t, models.EventChatHistory, frame["type"])
	messages := frame["messages"].([]any)
	require.Len(t, messages, 1)
	first := messages[0].(map[string]any)
	require.Equal(t, "old", first["content"])
	require.Equal(t, true, first["is_read"])

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"messages", "notifications", "history"}, calls)
}

func TestChatSocketMessageFlow(t *testing.T) {
	f := newChatSocketFixture(t)

	f.allowHandshake(7, 1, "alice")
	f.allowHandshake(7, 2, "bob")

	senderID := 1
	stored := models.Message{ID: 42, ChatID: 7, SenderID: &senderID, Content: "hello", MessageType: models.MessageTypeText, CreatedAt: time.Now()}
	f.messages.On("CreateChatMessage", mock.Anything, 7,
		mock.MatchedBy(func(id *int) bool { return id != nil && *id == 1 }),
		"hello", models.MessageTypeText, mock.Anything).
		Return(stored, nil).Once()
	f.chats.On("TouchLastMessage", mock.Anything, 7).Return(nil).Once()
	f.chats.On("OtherParticipants", mock.Anything, 7, 1).Return([]int{2}, nil).Once()
	f.notifications.On("CreateForRecipients", mock.Anything, []int{2}, 7, 42).Return(nil).Once()

	alice := dialSocket(t, f.wsURL("/ws/chats/7?token="+f.token(t, 1)))
	bob := dialSocket(t, f.wsURL("/ws/chats/7?token="+f.token(t, 2)))
	bobFeed := dialSocket(t, f.wsURL("/ws/notifications?token="+f.token(t, 2)))

	// drain the history frames both room members get on connect
	require.Equal(t, models.EventChatHistory, readFrame(t, alice)["type"])
	require.Equal(t, models.EventChatHistory, readFrame(t, bob)["type"])
	waitForGroupSize(t, f.hub, ChatGroup(7), 2)
	waitForGroupSize(t, f.hub, NotificationsGroup(2), 2)

	require.NoError(t, alice.WriteJSON(map[string]any{"type": models.EventChatMessage, "content": "hello"}))

	for _, conn := range []*websocket.Conn{alice, bob} {
		frame := readFrame(t, conn)
		require.Equal(t, models.EventChatMessage, frame["type"])
		msg := frame["message"].(map[string]any)
		require.Equal(t, float64(42), msg["id"])
		require.Equal(t, "hello", msg["content"])
		require.Equal(t, "alice", msg["sender_name"])
		require.Equal(t, false, msg["is_read"])
	}

	feedFrame := readFrame(t, bobFeed)
	require.Equal(t, models.EventNotification, feedFrame["type"])
	notification := feedFrame["notification"].(map[string]any)
	require.Equal(t, "chat-7-42", notification["id"])
	require.Equal(t, "New message from alice", notification["title"])
	require.Equal(t, "hello", notification["message"])
	require.Equal(t, float64(7), notification["reference_id"])

	f.messages.AssertExpectations(t)
	f.notifications.AssertExpectations(t)
}

func TestChatSocketRejectsMalformedPayload(t *testing.T) {
	f := newChatSocketFixture(t)
	f.allowHandshake(7, 1, "alice")

	conn := dialSocket(t, f.wsURL("/ws/chats/7?token="+f.token(t, 1)))
	require.Equal(t, models.EventChatHistory, readFrame(t, conn)["type"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	frame := readFrame(t, conn)
	require.Equal(t, models.EventError, frame["type"])
	require.Equal(t, "malformed payload", frame["error"])

	// socket survives the bad frame
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "presence_ping"}))
	frame = readFrame(t, conn)
	require.Equal(t, models.EventError, frame["type"])
	require.Contains(t, frame["error"], "unsupported message type")
}

func TestChatSocketRejectsEmptyContent(t *testing.T) {
	f := newChatSocketFixture(t)
	f.allowHandshake(7, 1, "alice")

	conn := dialSocket(t, f.wsURL("/ws/chats/7?token="+f.token(t, 1)))
	require.Equal(t, models.EventChatHistory, readFrame(t, conn)["type"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": models.EventChatMessage, "content": "   "}))
	frame := readFrame(t, conn)
	require.Equal(t, models.EventError, frame["type"])
	require.Equal(t, "content is required", frame["error"])

	f.messages.AssertNotCalled(t, "CreateChatMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChatSocketPersistFailureReachesNobody(t *testing.T) {
	f := newChatSocketFixture(t)
	f.allowHandshake(7, 1, "alice")
	f.allowHandshake(7, 2, "bob")

	f.messages.On("CreateChatMessage", mock.Anything, 7, mock.Anything, "hello", models.MessageTypeText, mock.Anything).
		Return(models.Message{}, assert.AnError).Once()

	alice := dialSocket(t, f.wsURL("/ws/chats/7?token="+f.token(t, 1)))
	bob := dialSocket(t, f.wsURL("/ws/chats/7?token="+f.token(t, 2)))
	require.Equal(t, models.EventChatHistory, readFrame(t, alice)["type"])
	require.Equal(t, models.EventChatHistory, readFrame(t, bob)["type"])
	waitForGroupSize(t, f.hub, ChatGroup(7), 2)

	require.NoError(t, alice.WriteJSON(map[string]any{"type": models.EventChatMessage, "content": "hello"}))

	frame := readFrame(t, alice)
	require.Equal(t, models.EventError, frame["type"])
	require.Equal(t, "failed to store message", frame["error"])

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := bob.ReadMessage()
	var netErr interface{ Timeout() bool }
	require.ErrorAs(t, err, &netErr, "nothing should be broadcast on a failed insert")

	f.chats.AssertNotCalled(t, "OtherParticipants", mock.Anything, mock.Anything, mock.Anything)
	f.notifications.AssertNotCalled(t, "CreateForRecipients", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChatSocketDisconnectUnregisters(t *testing.T) {
	f := newChatSocketFixture(t)
	f.allowHandshake(7, 1, "alice")

	conn := dialSocket(t, f.wsURL("/ws/chats/7?token="+f.token(t, 1)))
	require.Equal(t, models.EventChatHistory, readFrame(t, conn)["type"])
	waitForGroupSize(t, f.hub, ChatGroup(7), 1)
	waitForGroupSize(t, f.hub, NotificationsGroup(1), 1)

	conn.Close()
	waitForGroupSize(t, f.hub, ChatGroup(7), 0)
	waitForGroupSize(t, f.hub, NotificationsGroup(1), 0)
}
