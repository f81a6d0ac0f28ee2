package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationType is the closed set of events that produce notifications.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationReply   NotificationType = "reply"
	NotificationFollow  NotificationType = "follow"
	NotificationMessage NotificationType = "message"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationReply, NotificationFollow, NotificationMessage:
		return true
	}
	return false
}

// Notification is a persisted record of a like/reply/follow/message event.
// Self-actions (recipient == sender) never produce one.
type Notification struct {
	ID          uuid.UUID
	RecipientID uuid.UUID
	SenderID    uuid.UUID
	Type        NotificationType
	Text        string
	PostID      *uuid.UUID
	MessageID   *uuid.UUID
	Read        bool
	CreatedAt   time.Time
}

// NotificationView is the client-facing shape with the sender resolved to a
// public profile.
type NotificationView struct {
	ID        uuid.UUID        `json:"id"`
	Recipient uuid.UUID        `json:"recipient"`
	Sender    PublicProfile    `json:"sender"`
	Type      NotificationType `json:"type"`
	Text      string           `json:"text"`
	PostID    *uuid.UUID       `json:"post"`
	MessageID *uuid.UUID       `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (n *Notification) View(sender PublicProfile) *NotificationView {
	return &NotificationView{
		ID:        n.ID,
		Recipient: n.RecipientID,
		Sender:    sender,
		Type:      n.Type,
		Text:      n.Text,
		PostID:    n.PostID,
		MessageID: n.MessageID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// Notification text builders, kept in the wording the clients already render.

func LikeNotificationText(username string) string {
	return fmt.Sprintf("%s liked your post", username)
}

func ReplyNotificationText(username, replyText string) string {
	snippet := replyText
	if len(snippet) > 30 {
		snippet = snippet[:30] + "..."
	}
	return fmt.Sprintf("%s replied to your post: %q", username, snippet)
}

func FollowNotificationText(username string) string {
	return fmt.Sprintf("%s started following you", username)
}

func MessageNotificationText(username string) string {
	return fmt.Sprintf("%s sent you a message", username)
}
