package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderPairIsUnordered(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	lo1, hi1 := OrderPair(a, b)
	lo2, hi2 := OrderPair(b, a)

	assert.Equal(t, lo1, lo2)
	assert.Equal(t, hi1, hi2)
	assert.True(t, lo1.String() <= hi1.String())
}

func TestMessageTombstone(t *testing.T) {
	postID := uuid.New()
	msg := &Message{
		ID:           uuid.New(),
		Text:         "secret",
		Img:          "https://cdn.example/v1/pic.png",
		SharedPostID: &postID,
		Seen:         true,
	}

	msg.Tombstone()

	assert.Equal(t, DeletedMessageText, msg.Text)
	assert.Empty(t, msg.Img)
	assert.Nil(t, msg.SharedPostID)
	assert.True(t, msg.Deleted)
	// The seen flag is history, not payload; it survives the tombstone.
	assert.True(t, msg.Seen)
}

func TestNotificationTypeValid(t *testing.T) {
	assert.True(t, NotificationLike.Valid())
	assert.True(t, NotificationMessage.Valid())
	assert.False(t, NotificationType("poke").Valid())
	assert.False(t, NotificationType("").Valid())
}

func TestReplyNotificationTextTruncates(t *testing.T) {
	long := "this reply is way too long to show in full inside a badge"
	text := ReplyNotificationText("alice", long)
	assert.Contains(t, text, "alice replied to your post")
	assert.Contains(t, text, long[:30]+"...")

	short := ReplyNotificationText("alice", "ok")
	assert.Contains(t, short, `"ok"`)
}
