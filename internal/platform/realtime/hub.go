package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"ballotroom/internal/shared/events"
)

// Connection is one live viewer attachment. Send must be safe for use from
// the publishing goroutine.
type Connection interface {
	Send(message []byte) error
}

// Subscription is the opaque handle returned by Subscribe; callers hold it
// only to unsubscribe later.
type Subscription struct {
	conn Connection
}

// Hub fans lifecycle and vote events out to every live viewer of a meeting.
// Delivery is best effort: a dead connection is skipped, never retried, and
// cleanup happens only when the transport notices the disconnect and calls
// Unsubscribe. The hub is always passed in explicitly, never a global.
type Hub struct {
	mu       sync.RWMutex
	meetings map[string][]*Subscription
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		meetings: make(map[string][]*Subscription),
		logger:   logger,
	}
}

func (h *Hub) Subscribe(meetingID string, conn Connection) *Subscription {
	sub := &Subscription{conn: conn}
	h.mu.Lock()
	h.meetings[meetingID] = append(h.meetings[meetingID], sub)
	count := len(h.meetings[meetingID])
	h.mu.Unlock()

	h.logger.Info("viewer subscribed",
		"event", "realtime_viewer_subscribed",
		"module", "internal/platform/realtime",
		"layer", "platform",
		"meeting_id", meetingID,
		"subscribers", count,
	)
	return sub
}

// Unsubscribe is idempotent; removing a handle twice is a no-op.
func (h *Hub) Unsubscribe(meetingID string, sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	subs := h.meetings[meetingID]
	for i, candidate := range subs {
		if candidate == sub {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(h.meetings, meetingID)
	} else {
		h.meetings[meetingID] = subs
	}
	h.mu.Unlock()
}

// Publish serializes the envelope once and delivers it to a snapshot of the
// meeting's current subscribers. A failed send is logged and skipped; it
// never aborts delivery to the remaining subscribers.
func (h *Hub) Publish(_ context.Context, meetingID string, envelope events.Envelope) {
	message, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("event serialization failed",
			"event", "realtime_event_marshal_failed",
			"module", "internal/platform/realtime",
			"layer", "platform",
			"meeting_id", meetingID,
			"event_type", envelope.EventType,
			"error", err.Error(),
		)
		return
	}

	h.mu.RLock()
	snapshot := append([]*Subscription(nil), h.meetings[meetingID]...)
	h.mu.RUnlock()

	for _, sub := range snapshot {
		if err := sub.conn.Send(message); err != nil {
			h.logger.Warn("event delivery to viewer failed",
				"event", "realtime_event_delivery_failed",
				"module", "internal/platform/realtime",
				"layer", "platform",
				"meeting_id", meetingID,
				"event_type", envelope.EventType,
				"error", err.Error(),
			)
		}
	}
}

// SubscriberCount reports the live viewer count for a meeting.
func (h *Hub) SubscriberCount(meetingID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.meetings[meetingID])
}
