package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"

	"driftchat/internal/events"
)

// InboundHandler processes one client-originated socket event. senderID is
// the authenticated user the connection belongs to.
type InboundHandler func(senderID uuid.UUID, data json.RawMessage)

// inboundEnvelope mirrors the outbound event envelope for client-originated
// events.
type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Hub owns the socket side of the delivery engine: it attaches clients to
// the fanout's presence registry and dispatches inbound events through a
// closed handler table, so the client-facing protocol is enumerable.
type Hub struct {
	Fanout *events.Fanout

	mu      sync.RWMutex
	inbound map[string]InboundHandler
}

func NewHub(fanout *events.Fanout) *Hub {
	return &Hub{
		Fanout:  fanout,
		inbound: make(map[string]InboundHandler),
	}
}

// HandleInbound registers the handler for one client event name. Must be
// called during startup, before connections are accepted.
func (h *Hub) HandleInbound(event string, handler InboundHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inbound[event] = handler
}

// dispatch routes a raw client frame to its registered handler. Unknown or
// malformed events are logged and dropped; a misbehaving client cannot
// break the connection of anyone else.
func (h *Hub) dispatch(senderID uuid.UUID, raw []byte) {
	var envelope inboundEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Printf("websocket: malformed frame from user %s: %v", senderID, err)
		return
	}

	h.mu.RLock()
	handler, ok := h.inbound[envelope.Event]
	h.mu.RUnlock()
	if !ok {
		log.Printf("websocket: unknown event %q from user %s", envelope.Event, senderID)
		return
	}

	handler(senderID, envelope.Data)
}
