package models

import (
	"time"

	"github.com/google/uuid"
)

// DeletedMessageText replaces the text of a soft-deleted message. The
// tombstoned row keeps its slot in the ordered history.
const DeletedMessageText = "This message was deleted"

// Message is a single entry in a conversation. Exactly one of Text, Img or
// SharedPostID must be non-empty when the message is created.
//
// Lifecycle: created -> (optional) seen -> (optional) deleted. A deleted
// message is tombstoned, never removed; removal only happens through a
// conversation-level clear.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Text           string
	Img            string     // resolved external asset URI, already uploaded
	SharedPostID   *uuid.UUID // reference to an external post
	Seen           bool
	Deleted        bool
	CreatedAt      time.Time
}

// Tombstone rewrites the message in place as soft-deleted.
func (m *Message) Tombstone() {
	m.Text = DeletedMessageText
	m.Img = ""
	m.SharedPostID = nil
	m.Deleted = true
}

// MessageView is the client-facing shape of a message, with the shared post
// reference resolved to a lightweight summary when present.
type MessageView struct {
	ID             uuid.UUID    `json:"id"`
	ConversationID uuid.UUID    `json:"conversationId"`
	Sender         uuid.UUID    `json:"sender"`
	Text           string       `json:"text"`
	Img            string       `json:"img"`
	SharedPost     *PostSummary `json:"sharedPost"`
	Seen           bool         `json:"seen"`
	Deleted        bool         `json:"deleted"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// View builds the client-facing shape. sharedPost may be nil when the
// message carries no reference or the summary could not be resolved.
func (m *Message) View(sharedPost *PostSummary) *MessageView {
	return &MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         m.SenderID,
		Text:           m.Text,
		Img:            m.Img,
		SharedPost:     sharedPost,
		Seen:           m.Seen,
		Deleted:        m.Deleted,
		CreatedAt:      m.CreatedAt,
	}
}
