package engine

import (
	"github.com/asynkron/protoactor-go/actor"

	"driftchat/internal/assets"
	"driftchat/internal/engine/actors"
	"driftchat/internal/events"
	"driftchat/internal/utils"
)

// Stores is the persistence surface the engine needs. *database.MongoDB
// satisfies it.
type Stores interface {
	actors.ConversationStore
	actors.MessageStore
	actors.NotificationStore
	actors.ProfileStore
	actors.PostStore
}

// Engine coordinates communication between actors
type Engine struct {
	messagingActor    *actor.PID
	notificationActor *actor.PID
}

func NewEngine(system *actor.ActorSystem, stores Stores, assetStore assets.Store, fanout *events.Fanout, metrics *utils.MetricsCollector) *Engine {
	context := system.Root

	// Spawn the notification actor first so the messaging actor can
	// forward message notifications to it.
	notificationProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewNotificationActor(actors.NotificationActorDeps{
			Notifications: stores,
			Profiles:      stores,
			Fanout:        fanout,
			Metrics:       metrics,
		})
	})
	notificationPID := context.Spawn(notificationProps)

	messagingProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewMessagingActor(actors.MessagingActorDeps{
			Conversations: stores,
			Messages:      stores,
			Profiles:      stores,
			Posts:         stores,
			Assets:        assetStore,
			Fanout:        fanout,
			Notifier:      notificationPID,
			Metrics:       metrics,
		})
	})
	messagingPID := context.Spawn(messagingProps)

	return &Engine{
		messagingActor:    messagingPID,
		notificationActor: notificationPID,
	}
}

// GetMessagingActor returns the PID of the messaging actor
func (e *Engine) GetMessagingActor() *actor.PID {
	return e.messagingActor
}

// GetNotificationActor returns the PID of the notification actor
func (e *Engine) GetNotificationActor() *actor.PID {
	return e.notificationActor
}
