package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"driftchat/internal/models"
	"driftchat/internal/utils"
)

// NotificationDocument represents the MongoDB document structure for notifications
type NotificationDocument struct {
	ID        string    `bson:"_id"`
	Recipient string    `bson:"recipient"`
	Sender    string    `bson:"sender"`
	Type      string    `bson:"type"`
	Text      string    `bson:"text"`
	PostID    string    `bson:"postId"`
	MessageID string    `bson:"messageId"`
	Read      bool      `bson:"read"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (doc *NotificationDocument) toModel() (*models.Notification, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid notification ID in database: %v", err)
	}
	recipient, err := uuid.Parse(doc.Recipient)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient ID in database: %v", err)
	}
	sender, err := uuid.Parse(doc.Sender)
	if err != nil {
		return nil, fmt.Errorf("invalid sender ID in database: %v", err)
	}

	var postID *uuid.UUID
	if doc.PostID != "" {
		parsed, err := uuid.Parse(doc.PostID)
		if err != nil {
			return nil, fmt.Errorf("invalid post ID in database: %v", err)
		}
		postID = &parsed
	}
	var messageID *uuid.UUID
	if doc.MessageID != "" {
		parsed, err := uuid.Parse(doc.MessageID)
		if err != nil {
			return nil, fmt.Errorf("invalid message ID in database: %v", err)
		}
		messageID = &parsed
	}

	return &models.Notification{
		ID:          id,
		RecipientID: recipient,
		SenderID:    sender,
		Type:        models.NotificationType(doc.Type),
		Text:        doc.Text,
		PostID:      postID,
		MessageID:   messageID,
		Read:        doc.Read,
		CreatedAt:   doc.CreatedAt,
	}, nil
}

// InsertNotification persists a new notification
func (m *MongoDB) InsertNotification(ctx context.Context, n *models.Notification) error {
	postID := ""
	if n.PostID != nil {
		postID = n.PostID.String()
	}
	messageID := ""
	if n.MessageID != nil {
		messageID = n.MessageID.String()
	}

	doc := NotificationDocument{
		ID:        n.ID.String(),
		Recipient: n.RecipientID.String(),
		Sender:    n.SenderID.String(),
		Type:      string(n.Type),
		Text:      n.Text,
		PostID:    postID,
		MessageID: messageID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}

	if _, err := m.Notifications.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert notification: %v", err)
	}
	return nil
}

// ListNotificationsForUser retrieves the user's notifications, newest first
func (m *MongoDB) ListNotificationsForUser(ctx context.Context, userID uuid.UUID, limit int64) ([]*models.Notification, error) {
	filter := bson.M{"recipient": userID.String()}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := m.Notifications.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []*models.Notification
	for cursor.Next(ctx) {
		var doc NotificationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %v", err)
		}
		n, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, nil
}

// GetNotification retrieves a single notification by ID
func (m *MongoDB) GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var doc NotificationDocument
	err := m.Notifications.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("notification")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %v", err)
	}
	return doc.toModel()
}

// CountUnreadNotifications returns how many unread notifications the user has
func (m *MongoDB) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := m.Notifications.CountDocuments(ctx, bson.M{
		"recipient": userID.String(),
		"read":      false,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %v", err)
	}
	return count, nil
}

// MarkNotificationRead idempotently sets read=true on one notification
func (m *MongoDB) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	result, err := m.Notifications.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("notification")
	}
	return nil
}

// MarkAllNotificationsRead sets read=true on every unread notification owned
// by the user
func (m *MongoDB) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := m.Notifications.UpdateMany(ctx,
		bson.M{"recipient": userID.String(), "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %v", err)
	}
	return result.ModifiedCount, nil
}

// ClearNotifications deletes every notification owned by the user
func (m *MongoDB) ClearNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := m.Notifications.DeleteMany(ctx, bson.M{"recipient": userID.String()})
	if err != nil {
		return 0, fmt.Errorf("failed to clear notifications: %v", err)
	}
	return result.DeletedCount, nil
}
