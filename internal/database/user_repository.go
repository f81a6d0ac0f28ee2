// internal/database/user_repository.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"driftchat/internal/models"
	"driftchat/internal/utils"
)

// UserProfileDocument is the read-only projection of a user record. The
// users collection is owned by the external account service; the messaging
// core only reads the public fields from it.
type UserProfileDocument struct {
	ID         string `bson:"_id"`
	Username   string `bson:"username"`
	ProfilePic string `bson:"profilePic"`
	Name       string `bson:"name"`
}

var publicProfileProjection = bson.M{
	"username":   1,
	"profilePic": 1,
	"name":       1,
}

func (doc *UserProfileDocument) toModel() (models.PublicProfile, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return models.PublicProfile{}, fmt.Errorf("invalid user ID in database: %v", err)
	}
	return models.PublicProfile{
		ID:         id,
		Username:   doc.Username,
		ProfilePic: doc.ProfilePic,
		Name:       doc.Name,
	}, nil
}

// GetPublicProfile retrieves one user's public profile fields
func (m *MongoDB) GetPublicProfile(ctx context.Context, userID uuid.UUID) (models.PublicProfile, error) {
	var doc UserProfileDocument
	err := m.Users.FindOne(ctx,
		bson.M{"_id": userID.String()},
		options.FindOne().SetProjection(publicProfileProjection),
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return models.PublicProfile{}, utils.NewNotFoundError("user")
	}
	if err != nil {
		return models.PublicProfile{}, fmt.Errorf("failed to get user profile: %v", err)
	}
	return doc.toModel()
}

// GetPublicProfiles retrieves public profiles for a batch of user IDs.
// Missing users are simply absent from the result map.
func (m *MongoDB) GetPublicProfiles(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]models.PublicProfile, error) {
	profiles := make(map[uuid.UUID]models.PublicProfile, len(userIDs))
	if len(userIDs) == 0 {
		return profiles, nil
	}

	idStrs := make([]string, len(userIDs))
	for i, id := range userIDs {
		idStrs[i] = id.String()
	}

	cursor, err := m.Users.Find(ctx,
		bson.M{"_id": bson.M{"$in": idStrs}},
		options.Find().SetProjection(publicProfileProjection),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profiles: %v", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc UserProfileDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user profile: %v", err)
		}
		profile, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		profiles[profile.ID] = profile
	}

	return profiles, nil
}
