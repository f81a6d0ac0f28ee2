// Package events defines the push protocol between the server and connected
// clients, and the fanout engine that routes domain events to recipients.
package events

import (
	"github.com/google/uuid"
)

// Name identifies one event in the wire protocol. The set is closed: every
// payload a client can receive is enumerated here.
type Name string

const (
	// Events emitted to a specific connected recipient.
	EventNewMessage      Name = "newMessage"
	EventMessageDeleted  Name = "messageDeleted"
	EventMessagesSeen    Name = "messagesSeen"
	EventChatCleared     Name = "chatCleared"
	EventNewNotification Name = "newNotification"

	// Broadcast to all connected clients whenever the presence registry
	// changes.
	EventOnlineUsers Name = "getOnlineUsers"
)

// Event is the envelope every push payload is wrapped in.
type Event struct {
	Name Name `json:"event"`
	Data any  `json:"data"`
}

// Payload shapes for events that do not reuse a model view directly.

type MessageDeletedPayload struct {
	MessageID uuid.UUID `json:"messageId"`
	IsDeleted bool      `json:"isDeleted"`
}

type MessagesSeenPayload struct {
	ConversationID uuid.UUID `json:"conversationId"`
}

type ChatClearedPayload struct {
	ConversationID uuid.UUID `json:"conversationId"`
}
