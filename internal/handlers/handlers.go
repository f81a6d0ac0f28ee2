package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"

	"driftchat/internal/engine"
	"driftchat/internal/events"
	"driftchat/internal/middleware"
	"driftchat/internal/utils"
	"driftchat/internal/websocket"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Hub            *websocket.Hub
	Fanout         *events.Fanout
	Metrics        *utils.MetricsCollector
	MetricsEnabled bool
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	context *actor.RootContext,
	eng *engine.Engine,
	hub *websocket.Hub,
	fanout *events.Fanout,
	metrics *utils.MetricsCollector,
) *Server {
	s := &Server{
		System:         system,
		Context:        context,
		Engine:         eng,
		Hub:            hub,
		Fanout:         fanout,
		Metrics:        metrics,
		MetricsEnabled: true,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
	s.registerSocketEvents()
	return s
}

// requireUser pulls the authenticated user id set by the JWT middleware.
// Writes a 401 and returns false when the request carries no identity.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok || userID == uuid.Nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

// writeResult encodes an actor reply. Application errors travel through the
// actor as *utils.AppError values, not Go errors, so map them here.
func (s *Server) writeResult(w http.ResponseWriter, result interface{}) {
	s.Metrics.IncrementRequests()

	if appErr, ok := result.(*utils.AppError); ok {
		s.Metrics.IncrementErrors()
		http.Error(w, appErr.Error(), utils.AppErrorToHTTPStatus(appErr.Code))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
