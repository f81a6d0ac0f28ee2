package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"driftchat/internal/engine/actors"
)

// HandleNotifications lists the caller's notifications or clears them all
func (s *Server) HandleNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.requireUser(w, r)
		if !ok {
			return
		}

		switch r.Method {
		case http.MethodGet:
			limit := int64(actors.DefaultNotificationLimit)
			if raw := r.URL.Query().Get("limit"); raw != "" {
				parsed, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || parsed <= 0 {
					http.Error(w, "Invalid limit", http.StatusBadRequest)
					return
				}
				limit = parsed
			}

			msg := &actors.GetNotificationsMsg{UserID: userID, Limit: limit}
			future := s.Context.RequestFuture(s.Engine.GetNotificationActor(), msg, s.RequestTimeout)
			result, err := future.Result()
			if err != nil {
				http.Error(w, "Failed to get notifications", http.StatusInternalServerError)
				return
			}

			s.writeResult(w, result)

		case http.MethodDelete:
			msg := &actors.ClearAllMsg{UserID: userID}
			future := s.Context.RequestFuture(s.Engine.GetNotificationActor(), msg, s.RequestTimeout)
			result, err := future.Result()
			if err != nil {
				http.Error(w, "Failed to clear notifications", http.StatusInternalServerError)
				return
			}

			s.writeResult(w, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleUnreadCount returns the caller's unread notification count
func (s *Server) HandleUnreadCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, ok := s.requireUser(w, r)
		if !ok {
			return
		}

		msg := &actors.GetUnreadCountMsg{UserID: userID}
		future := s.Context.RequestFuture(s.Engine.GetNotificationActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to get unread count", http.StatusInternalServerError)
			return
		}

		if count, isCount := result.(int64); isCount {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]int64{"unread": count})
			return
		}

		s.writeResult(w, result)
	}
}

// HandleMarkNotificationRead marks a single notification as read
func (s *Server) HandleMarkNotificationRead() http.HandlerFunc {
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
			NotificationID string `json:"notificationId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		notificationID, err := uuid.Parse(req.NotificationID)
		if err != nil {
			http.Error(w, "Invalid notification ID", http.StatusBadRequest)
			return
		}

		msg := &actors.MarkReadMsg{NotificationID: notificationID, RequesterID: userID}
		future := s.Context.RequestFuture(s.Engine.GetNotificationActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to mark notification read", http.StatusInternalServerError)
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

// HandleMarkAllNotificationsRead marks every notification for the caller read
func (s *Server) HandleMarkAllNotificationsRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, ok := s.requireUser(w, r)
		if !ok {
			return
		}

		msg := &actors.MarkAllReadMsg{UserID: userID}
		future := s.Context.RequestFuture(s.Engine.GetNotificationActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to mark notifications read", http.StatusInternalServerError)
			return
		}

		s.writeResult(w, result)
	}
}
