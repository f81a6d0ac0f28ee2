package actors

import (
	"context"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"

	"driftchat/internal/events"
	"driftchat/internal/models"
	"driftchat/internal/utils"
)

// DefaultNotificationLimit caps a notification listing when the caller does
// not ask for a specific page size.
const DefaultNotificationLimit = 50

// Message types for NotificationActor
type (
	NotifyMsg struct {
		RecipientID uuid.UUID               `json:"recipientId"`
		ActorID     uuid.UUID               `json:"actorId"`
		Type        models.NotificationType `json:"type"`
		Text        string                  `json:"text"`
		PostID      *uuid.UUID              `json:"postId"`
		MessageID   *uuid.UUID              `json:"messageId"`
	}

	GetNotificationsMsg struct {
		UserID uuid.UUID `json:"userId"`
		Limit  int64     `json:"limit"`
	}

	GetUnreadCountMsg struct {
		UserID uuid.UUID `json:"userId"`
	}

	MarkReadMsg struct {
		NotificationID uuid.UUID `json:"notificationId"`
		RequesterID    uuid.UUID `json:"requesterId"`
	}

	MarkAllReadMsg struct {
		UserID uuid.UUID `json:"userId"`
	}

	ClearAllMsg struct {
		UserID uuid.UUID `json:"userId"`
	}
)

// NotificationActorDeps bundles the collaborators the actor needs.
type NotificationActorDeps struct {
	Notifications NotificationStore
	Profiles      ProfileStore
	Fanout        *events.Fanout
	Metrics       *utils.MetricsCollector
}

// NotificationActor owns notification persistence and live delivery.
type NotificationActor struct {
	deps    NotificationActorDeps
	timeout time.Duration
}

func NewNotificationActor(deps NotificationActorDeps) actor.Actor {
	return &NotificationActor{
		deps:    deps,
		timeout: 5 * time.Second,
	}
}

func (a *NotificationActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *NotifyMsg:
		a.handleNotify(context, msg)
	case *GetNotificationsMsg:
		a.handleGetNotifications(context, msg)
	case *GetUnreadCountMsg:
		a.handleGetUnreadCount(context, msg)
	case *MarkReadMsg:
		a.handleMarkRead(context, msg)
	case *MarkAllReadMsg:
		a.handleMarkAllRead(context, msg)
	case *ClearAllMsg:
		a.handleClearAll(context, msg)
	}
}

func (a *NotificationActor) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}

func (a *NotificationActor) handleNotify(actorCtx actor.Context, msg *NotifyMsg) {
	startTime := time.Now()

	// Self-actions never notify.
	if msg.RecipientID == msg.ActorID {
		respond(actorCtx, (*models.NotificationView)(nil))
		return
	}
	if !msg.Type.Valid() {
		respond(actorCtx, utils.NewValidationError("unknown notification type"))
		return
	}
	if msg.Text == "" {
		respond(actorCtx, utils.NewValidationError("notification text is required"))
		return
	}

	ctx, cancel := a.opContext()
	defer cancel()

	notification := &models.Notification{
		ID:          uuid.New(),
		RecipientID: msg.RecipientID,
		SenderID:    msg.ActorID,
		Type:        msg.Type,
		Text:        msg.Text,
		PostID:      msg.PostID,
		MessageID:   msg.MessageID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := a.deps.Notifications.InsertNotification(ctx, notification); err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to save notification"))
		return
	}

	sender, err := a.deps.Profiles.GetPublicProfile(ctx, msg.ActorID)
	if err != nil {
		sender = models.PublicProfile{ID: msg.ActorID}
	}
	view := notification.View(sender)

	a.deps.Fanout.NewNotification(msg.RecipientID, view)

	a.deps.Metrics.AddOperationLatency("notify", time.Since(startTime))
	respond(actorCtx, view)
}

func (a *NotificationActor) handleGetNotifications(actorCtx actor.Context, msg *GetNotificationsMsg) {
	ctx, cancel := a.opContext()
	defer cancel()

	limit := msg.Limit
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}

	notifications, err := a.deps.Notifications.ListNotificationsForUser(ctx, msg.UserID, limit)
	if err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to list notifications"))
		return
	}

	senderIDs := make([]uuid.UUID, 0, len(notifications))
	for _, n := range notifications {
		senderIDs = append(senderIDs, n.SenderID)
	}
	profiles, err := a.deps.Profiles.GetPublicProfiles(ctx, senderIDs)
	if err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to resolve sender profiles"))
		return
	}

	views := make([]*models.NotificationView, 0, len(notifications))
	for _, n := range notifications {
		sender, ok := profiles[n.SenderID]
		if !ok {
			sender = models.PublicProfile{ID: n.SenderID}
		}
		views = append(views, n.View(sender))
	}

	respond(actorCtx, views)
}

func (a *NotificationActor) handleGetUnreadCount(actorCtx actor.Context, msg *GetUnreadCountMsg) {
	ctx, cancel := a.opContext()
	defer cancel()

	count, err := a.deps.Notifications.CountUnreadNotifications(ctx, msg.UserID)
	if err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to count unread notifications"))
		return
	}
	respond(actorCtx, count)
}

func (a *NotificationActor) handleMarkRead(actorCtx actor.Context, msg *MarkReadMsg) {
	ctx, cancel := a.opContext()
	defer cancel()

	notification, err := a.deps.Notifications.GetNotification(ctx, msg.NotificationID)
	if err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to get notification"))
		return
	}
	if notification.RecipientID != msg.RequesterID {
		respond(actorCtx, utils.NewForbiddenError("you can only modify your own notifications"))
		return
	}

	if err := a.deps.Notifications.MarkNotificationRead(ctx, msg.NotificationID); err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to mark notification read"))
		return
	}
	respond(actorCtx, true)
}

func (a *NotificationActor) handleMarkAllRead(actorCtx actor.Context, msg *MarkAllReadMsg) {
	ctx, cancel := a.opContext()
	defer cancel()

	if _, err := a.deps.Notifications.MarkAllNotificationsRead(ctx, msg.UserID); err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to mark all notifications read"))
		return
	}
	respond(actorCtx, true)
}

func (a *NotificationActor) handleClearAll(actorCtx actor.Context, msg *ClearAllMsg) {
	ctx, cancel := a.opContext()
	defer cancel()

	if _, err := a.deps.Notifications.ClearNotifications(ctx, msg.UserID); err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to clear notifications"))
		return
	}
	respond(actorCtx, true)
}
