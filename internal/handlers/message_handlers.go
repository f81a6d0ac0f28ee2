package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"driftchat/internal/engine/actors"
)

// SendMessageRequest represents a request to send a direct message
type SendMessageRequest struct {
	RecipientID  string `json:"recipientId"`
	Message      string `json:"message"`
	Img          string `json:"img"`
	SharedPostID string `json:"sharedPostId"`
}

// HandleMessages handles sending, retrieving and deleting direct messages
func (s *Server) HandleMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.requireUser(w, r)
		if !ok {
			return
		}

		switch r.Method {
		case http.MethodPost:
			// Send a direct message
			var req SendMessageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}

			recipientID, err := uuid.Parse(req.RecipientID)
			if err != nil {
				http.Error(w, "Invalid recipient ID", http.StatusBadRequest)
				return
			}

			msg := &actors.SendMessageMsg{
				SenderID:    userID,
				RecipientID: recipientID,
				Text:        req.Message,
				Img:         req.Img,
			}
			if req.SharedPostID != "" {
				postID, err := uuid.Parse(req.SharedPostID)
				if err != nil {
					http.Error(w, "Invalid shared post ID", http.StatusBadRequest)
					return
				}
				msg.SharedPostID = &postID
			}

			future := s.Context.RequestFuture(s.Engine.GetMessagingActor(), msg, s.RequestTimeout)
			result, err := future.Result()
			if err != nil {
				http.Error(w, "Failed to send message", http.StatusInternalServerError)
				return
			}

			s.writeResult(w, result)

		case http.MethodGet:
			// Get the message history with another user
			otherID := r.URL.Query().Get("otherUserId")
			if otherID == "" {
				http.Error(w, "Other user ID required", http.StatusBadRequest)
				return
			}

			parsedOtherID, err := uuid.Parse(otherID)
			if err != nil {
				http.Error(w, "Invalid other user ID", http.StatusBadRequest)
				return
			}

			msg := &actors.GetMessagesMsg{UserID: userID, OtherUserID: parsedOtherID}
			future := s.Context.RequestFuture(s.Engine.GetMessagingActor(), msg, s.RequestTimeout)
			result, err := future.Result()
			if err != nil {
				http.Error(w, "Failed to get messages", http.StatusInternalServerError)
				return
			}

			s.writeResult(w, result)

		case http.MethodDelete:
			// Soft-delete a message
			messageID := r.URL.Query().Get("messageId")
			if messageID == "" {
				http.Error(w, "Message ID required", http.StatusBadRequest)
				return
			}

			parsedMessageID, err := uuid.Parse(messageID)
			if err != nil {
				http.Error(w, "Invalid message ID", http.StatusBadRequest)
				return
			}

			msg := &actors.DeleteMessageMsg{
				MessageID:   parsedMessageID,
				RequesterID: userID,
			}
			future := s.Context.RequestFuture(s.Engine.GetMessagingActor(), msg, s.RequestTimeout)
			result, err := future.Result()
			if err != nil {
				http.Error(w, "Failed to delete message", http.StatusInternalServerError)
				return
			}

			if success, isBool := result.(bool); isBool {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]bool{"success": success})
				return
			}

			s.writeResult(w, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleConversations lists the user's conversations, most recent first
func (s *Server) HandleConversations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, ok := s.requireUser(w, r)
		if !ok {
			return
		}

		msg := &actors.GetConversationsMsg{UserID: userID}
		future := s.Context.RequestFuture(s.Engine.GetMessagingActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to get conversations", http.StatusInternalServerError)
			return
		}

		s.writeResult(w, result)
	}
}

// HandleMarkSeen marks all messages in a conversation as seen by the caller
func (s *Server) HandleMarkSeen() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, ok := s.requireUser(w, r)
		if !ok {
			return
		}

		var req struct {
			ConversationID string `json:"conversationId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		conversationID, err := uuid.Parse(req.ConversationID)
		if err != nil {
			http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
			return
		}

		msg := &actors.MarkSeenMsg{ConversationID: conversationID, ReaderID: userID}
		future := s.Context.RequestFuture(s.Engine.GetMessagingActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to mark messages seen", http.StatusInternalServerError)
			return
		}

		if success, isBool := result.(bool); isBool {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]bool{"success": success})
			return
		}

		s.writeResult(w, result)
	}
}

// HandleClearConversation wipes all messages in a conversation for both sides
func (s *Server) HandleClearConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, ok := s.requireUser(w, r)
		if !ok {
			return
		}

		conversationID := r.URL.Query().Get("conversationId")
		if conversationID == "" {
			http.Error(w, "Conversation ID required", http.StatusBadRequest)
			return
		}

		parsedConversationID, err := uuid.Parse(conversationID)
		if err != nil {
			http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
			return
		}

		msg := &actors.ClearConversationMsg{
			ConversationID: parsedConversationID,
			RequesterID:    userID,
		}
		future := s.Context.RequestFuture(s.Engine.GetMessagingActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to clear conversation", http.StatusInternalServerError)
			return
		}

		if success, isBool := result.(bool); isBool {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]bool{"success": success})
			return
		}

		s.writeResult(w, result)
	}
}
