package actors

import (
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"driftchat/internal/events"
	"driftchat/internal/models"
	"driftchat/internal/presence"
	"driftchat/internal/utils"
)

type notificationFixture struct {
	system        *actor.ActorSystem
	pid           *actor.PID
	notifications *fakeNotificationStore
	fanout        *events.Fanout
}

func newNotificationFixture(profiles map[uuid.UUID]models.PublicProfile) *notificationFixture {
	registry := presence.NewRegistry()
	fanout := events.NewFanout(registry, utils.NewMetricsCollector())

	f := &notificationFixture{
		system:        actor.NewActorSystem(),
		notifications: newFakeNotificationStore(),
		fanout:        fanout,
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewNotificationActor(NotificationActorDeps{
			Notifications: f.notifications,
			Profiles:      &fakeProfileStore{profiles: profiles},
			Fanout:        fanout,
			Metrics:       utils.NewMetricsCollector(),
		})
	})
	f.pid = f.system.Root.Spawn(props)
	return f
}

func (f *notificationFixture) request(t *testing.T, msg interface{}) interface{} {
	t.Helper()
	future := f.system.Root.RequestFuture(f.pid, msg, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)
	return result
}

func TestNotifySelfActionSuppressed(t *testing.T) {
	userID := uuid.New()
	f := newNotificationFixture(nil)

	result := f.request(t, &NotifyMsg{
		RecipientID: userID,
		ActorID:     userID,
		Type:        models.NotificationLike,
		Text:        models.LikeNotificationText("self"),
	})

	view, ok := result.(*models.NotificationView)
	assert.True(t, ok)
	assert.Nil(t, view)
	assert.Equal(t, 0, f.notifications.count())
}

func TestNotifyPersistsAndDelivers(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	f := newNotificationFixture(map[uuid.UUID]models.PublicProfile{
		alice: {ID: alice, Username: "alice"},
	})

	conn := &captureConn{}
	f.fanout.Attach(bob, conn)

	result := f.request(t, &NotifyMsg{
		RecipientID: bob,
		ActorID:     alice,
		Type:        models.NotificationFollow,
		Text:        models.FollowNotificationText("alice"),
	})

	view := result.(*models.NotificationView)
	assert.Equal(t, models.NotificationFollow, view.Type)
	assert.Equal(t, "alice", view.Sender.Username)
	assert.False(t, view.Read)

	assert.Equal(t, 1, f.notifications.count())
	assert.Len(t, conn.eventsNamed(t, "newNotification"), 1)
}

func TestNotifyValidation(t *testing.T) {
	f := newNotificationFixture(nil)

	result := f.request(t, &NotifyMsg{
		RecipientID: uuid.New(),
		ActorID:     uuid.New(),
		Type:        "poke",
		Text:        "poked you",
	})
	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)

	result = f.request(t, &NotifyMsg{
		RecipientID: uuid.New(),
		ActorID:     uuid.New(),
		Type:        models.NotificationLike,
	})
	appErr, ok = result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestGetNotificationsNewestFirstWithLimit(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	f := newNotificationFixture(map[uuid.UUID]models.PublicProfile{
		alice: {ID: alice, Username: "alice"},
	})

	for i := 0; i < 3; i++ {
		f.request(t, &NotifyMsg{
			RecipientID: bob,
			ActorID:     alice,
			Type:        models.NotificationLike,
			Text:        models.LikeNotificationText("alice"),
		})
		time.Sleep(2 * time.Millisecond)
	}

	result := f.request(t, &GetNotificationsMsg{UserID: bob, Limit: 2})
	views := result.([]*models.NotificationView)
	assert.Len(t, views, 2)
	assert.True(t, !views[0].CreatedAt.Before(views[1].CreatedAt))
}

func TestMarkReadRequiresRecipient(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	f := newNotificationFixture(map[uuid.UUID]models.PublicProfile{
		alice: {ID: alice, Username: "alice"},
	})

	created := f.request(t, &NotifyMsg{
		RecipientID: bob,
		ActorID:     alice,
		Type:        models.NotificationLike,
		Text:        models.LikeNotificationText("alice"),
	}).(*models.NotificationView)

	// Only the recipient may flip the read flag.
	result := f.request(t, &MarkReadMsg{NotificationID: created.ID, RequesterID: alice})
	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrForbidden, appErr.Code)

	count := f.request(t, &GetUnreadCountMsg{UserID: bob})
	assert.Equal(t, int64(1), count)

	result = f.request(t, &MarkReadMsg{NotificationID: created.ID, RequesterID: bob})
	assert.Equal(t, true, result)

	count = f.request(t, &GetUnreadCountMsg{UserID: bob})
	assert.Equal(t, int64(0), count)

	// Marking an already-read notification stays successful.
	result = f.request(t, &MarkReadMsg{NotificationID: created.ID, RequesterID: bob})
	assert.Equal(t, true, result)
}

func TestMarkAllReadAndClearAll(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	f := newNotificationFixture(map[uuid.UUID]models.PublicProfile{
		alice: {ID: alice, Username: "alice"},
	})

	for i := 0; i < 4; i++ {
		f.request(t, &NotifyMsg{
			RecipientID: bob,
			ActorID:     alice,
			Type:        models.NotificationReply,
			Text:        models.ReplyNotificationText("alice", "good point"),
		})
	}

	result := f.request(t, &MarkAllReadMsg{UserID: bob})
	assert.Equal(t, true, result)

	count := f.request(t, &GetUnreadCountMsg{UserID: bob})
	assert.Equal(t, int64(0), count)

	result = f.request(t, &ClearAllMsg{UserID: bob})
	assert.Equal(t, true, result)
	assert.Equal(t, 0, f.notifications.count())

	views := f.request(t, &GetNotificationsMsg{UserID: bob}).([]*models.NotificationView)
	assert.Empty(t, views)
}
