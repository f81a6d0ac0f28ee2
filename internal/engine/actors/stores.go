package actors

import (
	"context"

	"github.com/google/uuid"

	"driftchat/internal/models"
)

// Store interfaces consumed by the actors. *database.MongoDB satisfies all
// of them; tests substitute in-memory fakes.

type ConversationStore interface {
	FindOrCreateConversation(ctx context.Context, userA, userB uuid.UUID, last models.LastMessage) (*models.Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	GetConversationByParticipants(ctx context.Context, userA, userB uuid.UUID) (*models.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error)
	UpdateLastMessage(ctx context.Context, conversationID uuid.UUID, last models.LastMessage) error
	SetLastMessageSeen(ctx context.Context, conversationID uuid.UUID) error
}

type MessageStore interface {
	InsertMessage(ctx context.Context, message *models.Message) error
	ListConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]*models.Message, error)
	GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error)
	MarkConversationSeen(ctx context.Context, conversationID uuid.UUID) (int64, error)
	TombstoneMessage(ctx context.Context, id uuid.UUID) error
	DeleteConversationMessages(ctx context.Context, conversationID uuid.UUID) (int64, error)
	ListConversationImages(ctx context.Context, conversationID uuid.UUID) ([]string, error)
}

type NotificationStore interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
	ListNotificationsForUser(ctx context.Context, userID uuid.UUID, limit int64) ([]*models.Notification, error)
	GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkNotificationRead(ctx context.Context, id uuid.UUID) error
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	ClearNotifications(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ProfileStore resolves public profile fields from the external account
// service's collection.
type ProfileStore interface {
	GetPublicProfile(ctx context.Context, userID uuid.UUID) (models.PublicProfile, error)
	GetPublicProfiles(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]models.PublicProfile, error)
}

// PostStore resolves shared-post references from the external feed
// service's collection.
type PostStore interface {
	GetPostSummary(ctx context.Context, postID uuid.UUID) (*models.PostSummary, error)
}
