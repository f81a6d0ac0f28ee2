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

// PostSummaryDocument is the read-only projection of a post record. Posts
// are owned by the external feed service; the messaging core only resolves
// the summary embedded in shared-post messages.
type PostSummaryDocument struct {
	ID        string    `bson:"_id"`
	Text      string    `bson:"text"`
	Img       string    `bson:"img"`
	PostedBy  string    `bson:"postedBy"`
	CreatedAt time.Time `bson:"createdAt"`
}

// GetPostSummary retrieves the lightweight summary of a post, with the
// author's public profile resolved.
func (m *MongoDB) GetPostSummary(ctx context.Context, postID uuid.UUID) (*models.PostSummary, error) {
	var doc PostSummaryDocument
	err := m.Posts.FindOne(ctx,
		bson.M{"_id": postID.String()},
		options.FindOne().SetProjection(bson.M{
			"text":      1,
			"img":       1,
			"postedBy":  1,
			"createdAt": 1,
		}),
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("post")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post summary: %v", err)
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID in database: %v", err)
	}

	summary := &models.PostSummary{
		ID:        id,
		Text:      doc.Text,
		Img:       doc.Img,
		CreatedAt: doc.CreatedAt,
	}

	if doc.PostedBy != "" {
		authorID, err := uuid.Parse(doc.PostedBy)
		if err != nil {
			return nil, fmt.Errorf("invalid post author ID in database: %v", err)
		}
		profile, err := m.GetPublicProfile(ctx, authorID)
		if err != nil && !utils.IsErrorCode(err, utils.ErrNotFound) {
			return nil, err
		}
		summary.PostedBy = profile
	}

	return summary, nil
}
