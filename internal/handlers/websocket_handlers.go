package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"

	"driftchat/internal/engine/actors"
	"driftchat/internal/middleware"
	"driftchat/internal/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to configured origins once the frontend domains settle
		return true
	},
}

// HandleWebSocket handles WebSocket connection requests.
//
// Connections without a usable token are still upgraded: the client gets a
// live socket but is never attached to presence, receives no events and its
// inbound frames are ignored. A token that is present but invalid is
// rejected before the upgrade.
func (s *Server) HandleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := uuid.Nil

		tokenString := r.URL.Query().Get("token")
		if tokenString != "" && tokenString != "undefined" {
			claims, err := middleware.ValidateToken(tokenString)
			if err != nil {
				log.Printf("WebSocket connection failed: invalid token: %v", err)
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}
			userID = claims.UserID
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for user %s: %v", userID, err)
			return
		}

		client := websocket.NewClient(s.Hub, userID, conn)
		if userID != uuid.Nil {
			s.Fanout.Attach(userID, client)
			log.Printf("WebSocket client attached for user %s", userID)
		}

		go client.WritePump()
		go client.ReadPump()
	}
}

// registerSocketEvents wires the client-originated socket events into the
// engine. Socket-originated operations are fire-and-forget: the client
// observes the outcome through the events fanned back out, never through a
// reply frame.
func (s *Server) registerSocketEvents() {
	s.Hub.HandleInbound("markMessagesAsSeen", func(senderID uuid.UUID, data json.RawMessage) {
		var payload struct {
			ConversationID uuid.UUID `json:"conversationId"`
		}
		if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == uuid.Nil {
			log.Printf("Socket markMessagesAsSeen: bad payload from user %s", senderID)
			return
		}
		s.Context.Send(s.Engine.GetMessagingActor(), &actors.MarkSeenMsg{
			ConversationID: payload.ConversationID,
			ReaderID:       senderID,
		})
	})

	s.Hub.HandleInbound("messageDeleted", func(senderID uuid.UUID, data json.RawMessage) {
		var payload struct {
			MessageID   uuid.UUID `json:"messageId"`
			RecipientID uuid.UUID `json:"recipientId"`
		}
		if err := json.Unmarshal(data, &payload); err != nil || payload.MessageID == uuid.Nil || payload.RecipientID == uuid.Nil {
			log.Printf("Socket messageDeleted: bad payload from user %s", senderID)
			return
		}
		s.Fanout.MessageDeleted(payload.RecipientID, payload.MessageID)
	})
}
