package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Session is the live server-side state of one connected client's socket.
// Writes are serialized through a mutex because hub broadcasts and handler
// replies come from different goroutines.
type Session struct {
	ConnID      string
	UserID      int
	DisplayName string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time

	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
}

// NewSession wraps an accepted websocket connection.
func NewSession(conn *websocket.Conn, userID int, displayName string) *Session {
	return &Session{
		ConnID:      uuid.NewString(),
		UserID:      userID,
		DisplayName: displayName,
		ConnectedAt: time.Now(),
		conn:        conn,
	}
}

// Send JSON-encodes v and writes it as a single text frame.
func (s *Session) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.SendRaw(data)
}

// SendRaw writes a pre-encoded text frame.
func (s *Session) SendRaw(payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close shuts the underlying connection. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
	})
}

// ReadMessage blocks until the next client frame or connection error.
func (s *Session) ReadMessage() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	return data, err
}
