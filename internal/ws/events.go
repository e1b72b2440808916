package ws

import (
	"context"
	"strconv"
	"strings"
	"time"

	"market-service/internal/observability"
)

// kindOf splits a group name into its family and resource id
// ("chat:7" -> "chat", 7).
func kindOf(group string) (string, int) {
	kind, raw, ok := strings.Cut(group, ":")
	if !ok {
		return group, 0
	}
	id, _ := strconv.Atoi(raw)
	return kind, id
}

func routingKey(kind string) string {
	if kind == "notifications" {
		return "ws_events.notifications"
	}
	return "ws_events.chats"
}

// publishSessionEvent records a connection lifecycle event (ws_connect,
// ws_disconnect, ws_error) on metrics and the event exchange.
func publishSessionEvent(group, event string, s *Session, reason string) {
	kind, resourceID := kindOf(group)
	observability.IncWSEvent(kind, event)

	payload := map[string]any{
		"ws": map[string]any{
			"kind":        kind,
			"resource_id": resourceID,
			"event":       event,
			"conn_id":     s.ConnID,
			"duration_ms": time.Since(s.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]any{
			"user_id": s.UserID,
			"ip":      s.IP,
		},
	}

	headers := observability.BuildHeaders(s.RequestID, s.TraceID)
	_ = observability.PublishEvent(context.Background(), routingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, headers)
}
