package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/asynkron/protoactor-go/actor"

	"driftchat/internal/assets"
	"driftchat/internal/config"
	"driftchat/internal/database"
	"driftchat/internal/engine"
	"driftchat/internal/events"
	"driftchat/internal/handlers"
	"driftchat/internal/middleware"
	"driftchat/internal/presence"
	"driftchat/internal/utils"
	"driftchat/internal/websocket"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.Configure(cfg.JWTSecret)

	// Connect to MongoDB
	db, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close(context.Background())

	if err := db.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	metrics := utils.NewMetricsCollector()

	// Presence and event fanout
	registry := presence.NewRegistry()
	fanout := events.NewFanout(registry, metrics)

	// Asset store for message image cleanup
	var assetStore assets.Store
	if cfg.Assets.CloudName != "" {
		assetStore = assets.NewCloudinaryStore(cfg.Assets.CloudName, cfg.Assets.APIKey, cfg.Assets.APISecret)
		log.Printf("Using Cloudinary asset store (cloud %s)", cfg.Assets.CloudName)
	} else {
		assetStore = assets.NoopStore{}
		log.Println("No asset store configured, deleted message images will not be released")
	}

	// Actor system and engine
	system := actor.NewActorSystem()
	driftEngine := engine.NewEngine(system, db, assetStore, fanout, metrics)

	hub := websocket.NewHub(fanout)

	server := handlers.NewServer(system, system.Root, driftEngine, hub, fanout, metrics)
	server.MetricsEnabled = cfg.Server.MetricsEnabled

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)

	mux := http.NewServeMux()
	routes := map[string]http.HandlerFunc{
		"/health":                 server.HandleHealth(),
		"/ws":                     server.HandleWebSocket(),
		"/messages":               server.HandleMessages(),
		"/messages/conversations": server.HandleConversations(),
		"/messages/seen":          server.HandleMarkSeen(),
		"/messages/clear":         server.HandleClearConversation(),
		"/notifications":          server.HandleNotifications(),
		"/notifications/unread":   server.HandleUnreadCount(),
		"/notifications/read":     server.HandleMarkNotificationRead(),
		"/notifications/read-all": server.HandleMarkAllNotificationsRead(),
	}
	for path, handler := range routes {
		mux.HandleFunc(path, middleware.ApplyCORS(middleware.ApplyJWTMiddleware(handler, path), corsConfig))
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, mux); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
