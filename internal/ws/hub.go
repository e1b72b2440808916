package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Group name families. A chat room socket belongs to one chat group and its
// user's notification group; a feed socket only to the notification group.
func ChatGroup(chatID int) string {
	return fmt.Sprintf("chat:%d", chatID)
}

func NotificationsGroup(userID int) string {
	return fmt.Sprintf("notifications:%d", userID)
}

// Hub is the process-wide group registry: a mapping from group name to the
// set of live sessions subscribed to it. Membership is the only mutable state
// shared across connection goroutines.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Session]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{groups: make(map[string]map[*Session]struct{})}
}

// Register adds a session to a group, creating the group on first use.
func (h *Hub) Register(group string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.groups[group]; !ok {
		h.groups[group] = make(map[*Session]struct{})
	}
	h.groups[group][s] = struct{}{}
}

// Unregister removes a session from a group. Removing a session that is not
// registered is a no-op; empty groups are dropped.
func (h *Hub) Unregister(group string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.groups[group]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// Broadcast delivers the payload to every session registered in the group at
// call time. Membership is snapshotted under the read lock so concurrent
// register/unregister calls never block on socket writes; sessions whose
// write fails are closed and dropped from the group.
func (h *Hub) Broadcast(group string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("broadcast marshal error for group %s: %v", group, err)
		return
	}

	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.groups[group]))
	for s := range h.groups[group] {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		if err := s.SendRaw(data); err != nil {
			log.Printf("websocket write error: %v", err)
			s.Close()
			h.Unregister(group, s)
			publishSessionEvent(group, "ws_error", s, err.Error())
		}
	}
}

// GroupSize reports current membership; used by handlers and tests.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
