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

// LastMessageDocument is the embedded last-message summary
type LastMessageDocument struct {
	Text   string `bson:"text"`
	Sender string `bson:"sender"`
	Seen   bool   `bson:"seen"`
}

// ConversationDocument represents the MongoDB document structure for conversations
type ConversationDocument struct {
	ID            string              `bson:"_id"`
	ParticipantLo string              `bson:"participantLo"`
	ParticipantHi string              `bson:"participantHi"`
	LastMessage   LastMessageDocument `bson:"lastMessage"`
	CreatedAt     time.Time           `bson:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt"`
}

func lastMessageToDocument(lm models.LastMessage) LastMessageDocument {
	sender := ""
	if lm.SenderID != uuid.Nil {
		sender = lm.SenderID.String()
	}
	return LastMessageDocument{
		Text:   lm.Text,
		Sender: sender,
		Seen:   lm.Seen,
	}
}

func (doc *ConversationDocument) toModel() (*models.Conversation, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation ID in database: %v", err)
	}
	lo, err := uuid.Parse(doc.ParticipantLo)
	if err != nil {
		return nil, fmt.Errorf("invalid participant ID in database: %v", err)
	}
	hi, err := uuid.Parse(doc.ParticipantHi)
	if err != nil {
		return nil, fmt.Errorf("invalid participant ID in database: %v", err)
	}

	sender := uuid.Nil
	if doc.LastMessage.Sender != "" {
		sender, _ = uuid.Parse(doc.LastMessage.Sender)
	}

	return &models.Conversation{
		ID:            id,
		ParticipantLo: lo,
		ParticipantHi: hi,
		LastMessage: models.LastMessage{
			Text:     doc.LastMessage.Text,
			SenderID: sender,
			Seen:     doc.LastMessage.Seen,
		},
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// FindOrCreateConversation looks a conversation up by unordered participant
// pair, creating it with the given last-message summary when absent. The
// upsert plus the unique pair index make this safe under concurrent calls
// for the same pair: exactly one document can ever exist per pair.
func (m *MongoDB) FindOrCreateConversation(ctx context.Context, userA, userB uuid.UUID, last models.LastMessage) (*models.Conversation, error) {
	lo, hi := models.OrderPair(userA, userB)
	now := time.Now().UTC()

	filter := bson.M{
		"participantLo": lo.String(),
		"participantHi": hi.String(),
	}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":           uuid.New().String(),
			"participantLo": lo.String(),
			"participantHi": hi.String(),
			"lastMessage":   lastMessageToDocument(last),
			"createdAt":     now,
			"updatedAt":     now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc ConversationDocument
	if err := m.Conversations.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to find or create conversation: %v", err)
	}

	return doc.toModel()
}

// GetConversation retrieves a conversation by its ID
func (m *MongoDB) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var doc ConversationDocument
	err := m.Conversations.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("conversation")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %v", err)
	}
	return doc.toModel()
}

// GetConversationByParticipants retrieves the conversation for an unordered
// user pair, if one exists
func (m *MongoDB) GetConversationByParticipants(ctx context.Context, userA, userB uuid.UUID) (*models.Conversation, error) {
	lo, hi := models.OrderPair(userA, userB)

	var doc ConversationDocument
	err := m.Conversations.FindOne(ctx, bson.M{
		"participantLo": lo.String(),
		"participantHi": hi.String(),
	}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("conversation")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %v", err)
	}
	return doc.toModel()
}

// ListConversationsForUser retrieves all conversations the user participates
// in, most recently updated first
func (m *MongoDB) ListConversationsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	userIDStr := userID.String()

	filter := bson.M{
		"$or": []bson.M{
			{"participantLo": userIDStr},
			{"participantHi": userIDStr},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	cursor, err := m.Conversations.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %v", err)
	}
	defer cursor.Close(ctx)

	var conversations []*models.Conversation
	for cursor.Next(ctx) {
		var doc ConversationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode conversation: %v", err)
		}
		conv, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conv)
	}

	return conversations, nil
}

// UpdateLastMessage overwrites the embedded last-message snapshot. Used
// after every send and, with the zero value, after a bulk clear.
func (m *MongoDB) UpdateLastMessage(ctx context.Context, conversationID uuid.UUID, last models.LastMessage) error {
	result, err := m.Conversations.UpdateOne(ctx,
		bson.M{"_id": conversationID.String()},
		bson.M{"$set": bson.M{
			"lastMessage": lastMessageToDocument(last),
			"updatedAt":   time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update last message: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("conversation")
	}
	return nil
}

// SetLastMessageSeen flips the embedded last-message seen flag
func (m *MongoDB) SetLastMessageSeen(ctx context.Context, conversationID uuid.UUID) error {
	result, err := m.Conversations.UpdateOne(ctx,
		bson.M{"_id": conversationID.String()},
		bson.M{"$set": bson.M{"lastMessage.seen": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to set last message seen: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("conversation")
	}
	return nil
}
