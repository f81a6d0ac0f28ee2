package models

import (
	"time"

	"github.com/google/uuid"
)

// LastMessage is the denormalized summary embedded in a Conversation. It is
// overwritten on every send and reset to the zero value when a conversation
// is cleared.
type LastMessage struct {
	Text     string    `json:"text"`
	SenderID uuid.UUID `json:"sender"`
	Seen     bool      `json:"seen"`
}

// Conversation anchors all messages between one unordered pair of users.
// Participants are stored as an ordered (Lo, Hi) pair so the unordered pair
// can carry a uniqueness constraint at the store layer.
type Conversation struct {
	ID            uuid.UUID
	ParticipantLo uuid.UUID
	ParticipantHi uuid.UUID
	LastMessage   LastMessage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasParticipant reports whether userID is part of the conversation.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.ParticipantLo == userID || c.ParticipantHi == userID
}

// OtherParticipant returns the participant that is not userID. The caller is
// expected to have verified membership with HasParticipant first.
func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.ParticipantLo == userID {
		return c.ParticipantHi
	}
	return c.ParticipantLo
}

// OrderPair maps an unordered user pair to its canonical (lo, hi) form.
// Both (a, b) and (b, a) produce the same result, which is what keeps the
// one-conversation-per-pair constraint enforceable.
func OrderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() <= b.String() {
		return a, b
	}
	return b, a
}

// ConversationView is the client-facing shape of a conversation: the
// requesting user is stripped out and the other participant's public profile
// is resolved in their place.
type ConversationView struct {
	ID          uuid.UUID     `json:"id"`
	Participant PublicProfile `json:"participant"`
	LastMessage LastMessage   `json:"lastMessage"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
