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

// MessageDocument represents the MongoDB document structure for messages
type MessageDocument struct {
	ID             string    `bson:"_id"`
	ConversationID string    `bson:"conversationId"`
	Sender         string    `bson:"sender"`
	Text           string    `bson:"text"`
	Img            string    `bson:"img"`
	SharedPostID   string    `bson:"sharedPostId"`
	Seen           bool      `bson:"seen"`
	Deleted        bool      `bson:"deleted"`
	CreatedAt      time.Time `bson:"createdAt"`
}

func (doc *MessageDocument) toModel() (*models.Message, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid message ID in database: %v", err)
	}
	conversationID, err := uuid.Parse(doc.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation ID in database: %v", err)
	}
	sender, err := uuid.Parse(doc.Sender)
	if err != nil {
		return nil, fmt.Errorf("invalid sender ID in database: %v", err)
	}

	var sharedPostID *uuid.UUID
	if doc.SharedPostID != "" {
		parsed, err := uuid.Parse(doc.SharedPostID)
		if err != nil {
			return nil, fmt.Errorf("invalid shared post ID in database: %v", err)
		}
		sharedPostID = &parsed
	}

	return &models.Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       sender,
		Text:           doc.Text,
		Img:            doc.Img,
		SharedPostID:   sharedPostID,
		Seen:           doc.Seen,
		Deleted:        doc.Deleted,
		CreatedAt:      doc.CreatedAt,
	}, nil
}

// InsertMessage persists a new message
func (m *MongoDB) InsertMessage(ctx context.Context, message *models.Message) error {
	sharedPostID := ""
	if message.SharedPostID != nil {
		sharedPostID = message.SharedPostID.String()
	}

	doc := MessageDocument{
		ID:             message.ID.String(),
		ConversationID: message.ConversationID.String(),
		Sender:         message.SenderID.String(),
		Text:           message.Text,
		Img:            message.Img,
		SharedPostID:   sharedPostID,
		Seen:           message.Seen,
		Deleted:        message.Deleted,
		CreatedAt:      message.CreatedAt,
	}

	if _, err := m.Messages.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert message: %v", err)
	}
	return nil
}

// ListConversationMessages retrieves all messages in a conversation, oldest
// first. Tombstoned messages are included; they keep their slot in history.
func (m *MongoDB) ListConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]*models.Message, error) {
	filter := bson.M{"conversationId": conversationID.String()}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := m.Messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %v", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	for cursor.Next(ctx) {
		var doc MessageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode message: %v", err)
		}
		message, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, nil
}

// GetMessage retrieves a single message by ID
func (m *MongoDB) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var doc MessageDocument
	err := m.Messages.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("message")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %v", err)
	}
	return doc.toModel()
}

// MarkConversationSeen flips seen=true on every not-yet-seen message in the
// conversation. Returns how many messages were flipped; calling it again is
// a harmless no-op that returns zero.
func (m *MongoDB) MarkConversationSeen(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	result, err := m.Messages.UpdateMany(ctx,
		bson.M{"conversationId": conversationID.String(), "seen": false},
		bson.M{"$set": bson.M{"seen": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages seen: %v", err)
	}
	return result.ModifiedCount, nil
}

// TombstoneMessage soft-deletes a message: the text is replaced with the
// tombstone marker, attachments are cleared and deleted is set. The row is
// never removed; conversation-level clear is the only hard-delete path.
func (m *MongoDB) TombstoneMessage(ctx context.Context, id uuid.UUID) error {
	result, err := m.Messages.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{
			"text":         models.DeletedMessageText,
			"img":          "",
			"sharedPostId": "",
			"deleted":      true,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to tombstone message: %v", err)
	}
	if result.MatchedCount == 0 {
		// Covers the clear-vs-delete race: the conversation was wiped
		// between the caller's read and this write.
		return utils.NewNotFoundError("message")
	}
	return nil
}

// DeleteConversationMessages hard-deletes every message in a conversation.
// Irreversible; only reachable through the explicit clear operation.
func (m *MongoDB) DeleteConversationMessages(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	result, err := m.Messages.DeleteMany(ctx, bson.M{"conversationId": conversationID.String()})
	if err != nil {
		return 0, fmt.Errorf("failed to delete conversation messages: %v", err)
	}
	return result.DeletedCount, nil
}

// ListConversationImages returns the asset URIs of every message in the
// conversation that carries an image attachment.
func (m *MongoDB) ListConversationImages(ctx context.Context, conversationID uuid.UUID) ([]string, error) {
	filter := bson.M{
		"conversationId": conversationID.String(),
		"img":            bson.M{"$ne": ""},
	}
	opts := options.Find().SetProjection(bson.M{"img": 1})

	cursor, err := m.Messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation images: %v", err)
	}
	defer cursor.Close(ctx)

	var uris []string
	for cursor.Next(ctx) {
		var doc struct {
			Img string `bson:"img"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode image URI: %v", err)
		}
		if doc.Img != "" {
			uris = append(uris, doc.Img)
		}
	}

	return uris, nil
}
