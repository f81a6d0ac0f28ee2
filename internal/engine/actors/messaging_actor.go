package actors

import (
	"context"
	"log"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"

	"driftchat/internal/assets"
	"driftchat/internal/events"
	"driftchat/internal/models"
	"driftchat/internal/utils"
)

// Message types for MessagingActor
type (
	SendMessageMsg struct {
		SenderID     uuid.UUID  `json:"senderId"`
		RecipientID  uuid.UUID  `json:"recipientId"`
		Text         string     `json:"text"`
		Img          string     `json:"img"`
		SharedPostID *uuid.UUID `json:"sharedPostId"`
	}

	GetConversationsMsg struct {
		UserID uuid.UUID `json:"userId"`
	}

	GetMessagesMsg struct {
		UserID      uuid.UUID `json:"userId"`
		OtherUserID uuid.UUID `json:"otherUserId"`
	}

	MarkSeenMsg struct {
		ConversationID uuid.UUID `json:"conversationId"`
		ReaderID       uuid.UUID `json:"readerId"` // The participant who caught up
	}

	DeleteMessageMsg struct {
		MessageID   uuid.UUID `json:"messageId"`
		RequesterID uuid.UUID `json:"requesterId"`
	}

	ClearConversationMsg struct {
		ConversationID uuid.UUID `json:"conversationId"`
		RequesterID    uuid.UUID `json:"requesterId"`
	}
)

// MessagingActorDeps bundles the collaborators the actor needs.
type MessagingActorDeps struct {
	Conversations ConversationStore
	Messages      MessageStore
	Profiles      ProfileStore
	Posts         PostStore
	Assets        assets.Store
	Fanout        *events.Fanout
	Notifier      *actor.PID // NotificationActor; nil disables message notifications
	Metrics       *utils.MetricsCollector
}

// MessagingActor owns all conversation and message operations. Store writes
// are awaited before any event is emitted, so a connected client observes
// events in commit order.
type MessagingActor struct {
	deps    MessagingActorDeps
	timeout time.Duration
}

func NewMessagingActor(deps MessagingActorDeps) actor.Actor {
	return &MessagingActor{
		deps:    deps,
		timeout: 5 * time.Second,
	}
}

func (a *MessagingActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *SendMessageMsg:
		a.handleSend(context, msg)
	case *GetConversationsMsg:
		a.handleGetConversations(context, msg)
	case *GetMessagesMsg:
		a.handleGetMessages(context, msg)
	case *MarkSeenMsg:
		a.handleMarkSeen(context, msg)
	case *DeleteMessageMsg:
		a.handleDeleteMessage(context, msg)
	case *ClearConversationMsg:
		a.handleClearConversation(context, msg)
	}
}

// respond replies to the caller when there is one. Socket-originated
// operations are fire-and-forget and carry no sender.
func respond(context actor.Context, value interface{}) {
	if context.Sender() != nil {
		context.Respond(value)
	}
}

func (a *MessagingActor) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}

func (a *MessagingActor) handleSend(actorCtx actor.Context, msg *SendMessageMsg) {
	startTime := time.Now()

	if msg.SenderID == msg.RecipientID {
		respond(actorCtx, utils.NewValidationError("cannot message yourself"))
		return
	}
	if msg.SenderID == uuid.Nil || msg.RecipientID == uuid.Nil {
		respond(actorCtx, utils.NewValidationError("sender and recipient are required"))
		return
	}
	if msg.Text == "" && msg.Img == "" && msg.SharedPostID == nil {
		respond(actorCtx, utils.NewValidationError("message must have text, an image or a shared post"))
		return
	}

	ctx, cancel := a.opContext()
	defer cancel()

	summary := models.LastMessage{Text: msg.Text, SenderID: msg.SenderID}
	conversation, err := a.deps.Conversations.FindOrCreateConversation(ctx, msg.SenderID, msg.RecipientID, summary)
	if err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to resolve conversation"))
		return
	}

	message := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		SenderID:       msg.SenderID,
		Text:           msg.Text,
		Img:            msg.Img,
		SharedPostID:   msg.SharedPostID,
		CreatedAt:      time.Now().UTC(),
	}

	if err := a.deps.Messages.InsertMessage(ctx, message); err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to save message"))
		return
	}
	if err := a.deps.Conversations.UpdateLastMessage(ctx, conversation.ID, summary); err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to update conversation summary"))
		return
	}

	view := message.View(a.resolveSharedPost(ctx, message.SharedPostID))

	// The write is durable; push delivery may now happen. Offline
	// recipients catch up on their next fetch.
	a.deps.Fanout.NewMessage(msg.RecipientID, view)

	a.notifyMessage(actorCtx, msg.SenderID, msg.RecipientID, message.ID)

	a.deps.Metrics.AddOperationLatency("send_message", time.Since(startTime))
	respond(actorCtx, view)
}

// notifyMessage asks the notification actor to record a message
// notification. Fire-and-forget: notification failure never affects the
// send outcome.
func (a *MessagingActor) notifyMessage(actorCtx actor.Context, senderID, recipientID, messageID uuid.UUID) {
	if a.deps.Notifier == nil {
		return
	}

	ctx, cancel := a.opContext()
	defer cancel()

	senderName := "Someone"
	if profile, err := a.deps.Profiles.GetPublicProfile(ctx, senderID); err == nil {
		senderName = profile.Username
	}

	actorCtx.Send(a.deps.Notifier, &NotifyMsg{
		RecipientID: recipientID,
		ActorID:     senderID,
		Type:        models.NotificationMessage,
		Text:        models.MessageNotificationText(senderName),
		MessageID:   &messageID,
	})
}

func (a *MessagingActor) resolveSharedPost(ctx context.Context, postID *uuid.UUID) *models.PostSummary {
	if postID == nil {
		return nil
	}
	summary, err := a.deps.Posts.GetPostSummary(ctx, *postID)
	if err != nil {
		log.Printf("messaging: could not resolve shared post %s: %v", postID, err)
		return nil
	}
	return summary
}

func (a *MessagingActor) handleGetConversations(actorCtx actor.Context, msg *GetConversationsMsg) {
	ctx, cancel := a.opContext()
	defer cancel()

	conversations, err := a.deps.Conversations.ListConversationsForUser(ctx, msg.UserID)
	if err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to list conversations"))
		return
	}

	otherIDs := make([]uuid.UUID, 0, len(conversations))
	for _, conv := range conversations {
		otherIDs = append(otherIDs, conv.OtherParticipant(msg.UserID))
	}

	profiles, err := a.deps.Profiles.GetPublicProfiles(ctx, otherIDs)
	if err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to resolve participant profiles"))
		return
	}

	views := make([]*models.ConversationView, 0, len(conversations))
	for _, conv := range conversations {
		otherID := conv.OtherParticipant(msg.UserID)
		profile, ok := profiles[otherID]
		if !ok {
			// Participant account no longer resolvable; keep the id so
			// the client can still address the conversation.
			profile = models.PublicProfile{ID: otherID}
		}
		views = append(views, &models.ConversationView{
			ID:          conv.ID,
			Participant: profile,
			LastMessage: conv.LastMessage,
			UpdatedAt:   conv.UpdatedAt,
		})
	}

	respond(actorCtx, views)
}

func (a *MessagingActor) handleGetMessages(actorCtx actor.Context, msg *GetMessagesMsg) {
	ctx, cancel := a.opContext()
	defer cancel()

	conversation, err := a.deps.Conversations.GetConversationByParticipants(ctx, msg.UserID, msg.OtherUserID)
	if err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to get conversation"))
		return
	}

	messages, err := a.deps.Messages.ListConversationMessages(ctx, conversation.ID)
	if err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to list messages"))
		return
	}

	views := make([]*models.MessageView, 0, len(messages))
	for _, message := range messages {
		views = append(views, message.View(a.resolveSharedPost(ctx, message.SharedPostID)))
	}

	respond(actorCtx, views)
}

func (a *MessagingActor) handleMarkSeen(actorCtx actor.Context, msg *MarkSeenMsg) {
	startTime := time.Now()
	ctx, cancel := a.opContext()
	defer cancel()

	conversation, err := a.deps.Conversations.GetConversation(ctx, msg.ConversationID)
	if err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to get conversation"))
		return
	}
	if !conversation.HasParticipant(msg.ReaderID) {
		respond(actorCtx, utils.NewForbiddenError("not a participant of this conversation"))
		return
	}

	// Idempotent: repeating the call flips nothing and still emits one
	// event for this call.
	if _, err := a.deps.Messages.MarkConversationSeen(ctx, msg.ConversationID); err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to mark messages seen"))
		return
	}
	if err := a.deps.Conversations.SetLastMessageSeen(ctx, msg.ConversationID); err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to update conversation seen flag"))
		return
	}

	// The seen-receipt goes to the other participant: the sender of the
	// messages that were just read.
	a.deps.Fanout.MessagesSeen(conversation.OtherParticipant(msg.ReaderID), msg.ConversationID)

	a.deps.Metrics.AddOperationLatency("mark_seen", time.Since(startTime))
	respond(actorCtx, true)
}

func (a *MessagingActor) handleDeleteMessage(actorCtx actor.Context, msg *DeleteMessageMsg) {
	startTime := time.Now()
	ctx, cancel := a.opContext()
	defer cancel()

	message, err := a.deps.Messages.GetMessage(ctx, msg.MessageID)
	if err != nil {
		// Also covers a concurrent clear that already removed the row.
		respond(actorCtx, utils.AsAppError(err, "failed to get message"))
		return
	}
	if message.SenderID != msg.RequesterID {
		respond(actorCtx, utils.NewForbiddenError("you can only delete your own messages"))
		return
	}

	if message.Img != "" {
		if err := a.deps.Assets.DeleteAsset(ctx, message.Img); err != nil {
			// An orphaned asset is preferable to blocking the deletion.
			log.Printf("messaging: %v", utils.NewUpstreamAssetError(message.Img, err))
		}
	}

	if err := a.deps.Messages.TombstoneMessage(ctx, message.ID); err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to delete message"))
		return
	}

	conversation, err := a.deps.Conversations.GetConversation(ctx, message.ConversationID)
	if err == nil {
		a.deps.Fanout.MessageDeleted(conversation.OtherParticipant(msg.RequesterID), message.ID)
	} else {
		log.Printf("messaging: skipping delete event, conversation lookup failed: %v", err)
	}

	a.deps.Metrics.AddOperationLatency("delete_message", time.Since(startTime))
	respond(actorCtx, true)
}

func (a *MessagingActor) handleClearConversation(actorCtx actor.Context, msg *ClearConversationMsg) {
	startTime := time.Now()
	ctx, cancel := a.opContext()
	defer cancel()

	conversation, err := a.deps.Conversations.GetConversation(ctx, msg.ConversationID)
	if err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to get conversation"))
		return
	}
	if !conversation.HasParticipant(msg.RequesterID) {
		respond(actorCtx, utils.NewForbiddenError("not a participant of this conversation"))
		return
	}

	uris, err := a.deps.Messages.ListConversationImages(ctx, msg.ConversationID)
	if err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to list conversation assets"))
		return
	}
	for _, uri := range uris {
		if err := a.deps.Assets.DeleteAsset(ctx, uri); err != nil {
			log.Printf("messaging: %v", utils.NewUpstreamAssetError(uri, err))
		}
	}

	// The one true hard-delete path: rows are gone, not tombstoned.
	deleted, err := a.deps.Messages.DeleteConversationMessages(ctx, msg.ConversationID)
	if err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to clear conversation"))
		return
	}
	if err := a.deps.Conversations.UpdateLastMessage(ctx, msg.ConversationID, models.LastMessage{}); err != nil {
		respond(actorCtx, utils.AsAppError(err, "failed to reset conversation summary"))
		return
	}

	a.deps.Fanout.ChatCleared(conversation.OtherParticipant(msg.RequesterID), msg.ConversationID)

	log.Printf("messaging: cleared %d messages from conversation %s", deleted, msg.ConversationID)
	a.deps.Metrics.AddOperationLatency("clear_conversation", time.Since(startTime))
	respond(actorCtx, true)
}
