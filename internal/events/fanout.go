package events

import (
	"encoding/json"
	"log"
	"sort"

	"github.com/google/uuid"

	"driftchat/internal/models"
	"driftchat/internal/presence"
	"driftchat/internal/utils"
)

// Fanout routes domain events to connected recipients through the presence
// registry. Delivery is best-effort at-most-once: an offline recipient is a
// silent no-op and catches up on its next fetch of persisted state. Callers
// must only emit after the corresponding store write has been acknowledged;
// that is what keeps per-conversation event order aligned with commit order.
type Fanout struct {
	registry *presence.Registry
	metrics  *utils.MetricsCollector
}

func NewFanout(registry *presence.Registry, metrics *utils.MetricsCollector) *Fanout {
	return &Fanout{
		registry: registry,
		metrics:  metrics,
	}
}

// Attach registers a connection and broadcasts the updated online-user set.
func (f *Fanout) Attach(userID uuid.UUID, conn presence.Conn) {
	f.registry.Register(userID, conn)
	f.broadcastOnlineUsers()
}

// Detach removes a connection binding (idempotent) and broadcasts the
// updated online-user set. Always called on disconnect.
func (f *Fanout) Detach(userID uuid.UUID, conn presence.Conn) {
	f.registry.Unregister(userID, conn)
	f.broadcastOnlineUsers()
}

// Online reports whether the user currently has a live connection.
func (f *Fanout) Online(userID uuid.UUID) bool {
	_, ok := f.registry.Lookup(userID)
	return ok
}

// OnlineUsers returns the ids of all currently connected users.
func (f *Fanout) OnlineUsers() []uuid.UUID {
	return f.registry.OnlineUserIDs()
}

// NewMessage pushes a freshly persisted message to its recipient.
func (f *Fanout) NewMessage(recipientID uuid.UUID, msg *models.MessageView) {
	f.emit(recipientID, Event{Name: EventNewMessage, Data: msg})
}

// MessageDeleted tells the other participant that a message was tombstoned.
func (f *Fanout) MessageDeleted(recipientID uuid.UUID, messageID uuid.UUID) {
	f.emit(recipientID, Event{
		Name: EventMessageDeleted,
		Data: MessageDeletedPayload{MessageID: messageID, IsDeleted: true},
	})
}

// MessagesSeen tells the original sender that the recipient caught up.
func (f *Fanout) MessagesSeen(recipientID uuid.UUID, conversationID uuid.UUID) {
	f.emit(recipientID, Event{
		Name: EventMessagesSeen,
		Data: MessagesSeenPayload{ConversationID: conversationID},
	})
}

// ChatCleared tells the other participant the conversation was wiped.
func (f *Fanout) ChatCleared(recipientID uuid.UUID, conversationID uuid.UUID) {
	f.emit(recipientID, Event{
		Name: EventChatCleared,
		Data: ChatClearedPayload{ConversationID: conversationID},
	})
}

// NewNotification pushes a freshly persisted notification to its recipient.
func (f *Fanout) NewNotification(recipientID uuid.UUID, n *models.NotificationView) {
	f.emit(recipientID, Event{Name: EventNewNotification, Data: n})
}

// emit attempts immediate delivery to one recipient. The recipient may
// disconnect between the lookup and the push; both cases are silent drops,
// never errors surfaced to the caller.
func (f *Fanout) emit(recipientID uuid.UUID, evt Event) {
	conn, ok := f.registry.Lookup(recipientID)
	if !ok {
		f.metrics.RecordEventDropped(string(evt.Name))
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("fanout: failed to encode %s event: %v", evt.Name, err)
		return
	}

	if !conn.Push(payload) {
		log.Printf("fanout: dropped %s event for user %s (send buffer full)", evt.Name, recipientID)
		f.metrics.RecordEventDropped(string(evt.Name))
		return
	}
	f.metrics.RecordEventDelivered(string(evt.Name))
}

// broadcastOnlineUsers sends the current online-user-id set to every
// connected client. Used for presence indicators.
func (f *Fanout) broadcastOnlineUsers() {
	ids := f.registry.OnlineUserIDs()
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	sort.Strings(strs)

	payload, err := json.Marshal(Event{Name: EventOnlineUsers, Data: strs})
	if err != nil {
		log.Printf("fanout: failed to encode online users broadcast: %v", err)
		return
	}

	for _, id := range ids {
		if conn, ok := f.registry.Lookup(id); ok {
			if !conn.Push(payload) {
				log.Printf("fanout: dropped online users broadcast for user %s", id)
			}
		}
	}
}
