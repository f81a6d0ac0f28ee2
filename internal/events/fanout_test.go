package events

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"driftchat/internal/models"
	"driftchat/internal/presence"
	"driftchat/internal/utils"
)

// captureConn records every payload pushed to it.
type captureConn struct {
	mu       sync.Mutex
	payloads [][]byte
	full     bool
}

func (c *captureConn) Push(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return false
	}
	c.payloads = append(c.payloads, payload)
	return true
}

// eventsNamed decodes the captured payloads and returns those matching name.
func (c *captureConn) eventsNamed(t *testing.T, name Name) []Event {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []Event
	for _, payload := range c.payloads {
		var evt struct {
			Event Name            `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(payload, &evt))
		if evt.Event == name {
			matched = append(matched, Event{Name: evt.Event, Data: evt.Data})
		}
	}
	return matched
}

func newTestFanout() (*Fanout, *presence.Registry) {
	registry := presence.NewRegistry()
	return NewFanout(registry, utils.NewMetricsCollector()), registry
}

func TestFanoutDeliversToOnlineRecipient(t *testing.T) {
	fanout, _ := newTestFanout()

	userID := uuid.New()
	conn := &captureConn{}
	fanout.Attach(userID, conn)

	view := &models.MessageView{ID: uuid.New(), Text: "hello"}
	fanout.NewMessage(userID, view)

	delivered := conn.eventsNamed(t, EventNewMessage)
	assert.Len(t, delivered, 1)
}

func TestFanoutOfflineRecipientIsSilentDrop(t *testing.T) {
	fanout, _ := newTestFanout()

	// No connection registered for the recipient: must not panic or error.
	fanout.NewMessage(uuid.New(), &models.MessageView{ID: uuid.New(), Text: "hello"})
	fanout.MessagesSeen(uuid.New(), uuid.New())
	fanout.ChatCleared(uuid.New(), uuid.New())
}

func TestFanoutFullBufferDropsEvent(t *testing.T) {
	fanout, _ := newTestFanout()

	userID := uuid.New()
	conn := &captureConn{full: true}
	fanout.Attach(userID, conn)

	fanout.MessageDeleted(userID, uuid.New())
	assert.Empty(t, conn.eventsNamed(t, EventMessageDeleted))
}

func TestFanoutBroadcastsOnlineUsers(t *testing.T) {
	fanout, _ := newTestFanout()

	userA := uuid.New()
	userB := uuid.New()
	connA := &captureConn{}
	connB := &captureConn{}

	fanout.Attach(userA, connA)
	fanout.Attach(userB, connB)

	// The second attach must broadcast both ids to everyone connected.
	broadcasts := connA.eventsNamed(t, EventOnlineUsers)
	assert.NotEmpty(t, broadcasts)

	var ids []string
	assert.NoError(t, json.Unmarshal(broadcasts[len(broadcasts)-1].Data.(json.RawMessage), &ids))
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, userA.String())
	assert.Contains(t, ids, userB.String())

	// Detach broadcasts the shrunken set to the survivor.
	fanout.Detach(userB, connB)
	broadcasts = connA.eventsNamed(t, EventOnlineUsers)
	assert.NoError(t, json.Unmarshal(broadcasts[len(broadcasts)-1].Data.(json.RawMessage), &ids))
	assert.Equal(t, []string{userA.String()}, ids)
}

func TestFanoutOnlineTracking(t *testing.T) {
	fanout, _ := newTestFanout()

	userID := uuid.New()
	assert.False(t, fanout.Online(userID))

	conn := &captureConn{}
	fanout.Attach(userID, conn)
	assert.True(t, fanout.Online(userID))
	assert.Equal(t, []uuid.UUID{userID}, fanout.OnlineUsers())

	fanout.Detach(userID, conn)
	assert.False(t, fanout.Online(userID))
}
