package models

import (
	"time"

	"github.com/google/uuid"
)

// PublicProfile is the subset of a user record that other users may see.
// User accounts themselves are owned by an external service; this core only
// reads the public fields.
type PublicProfile struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	ProfilePic string    `json:"profilePic"`
	Name       string    `json:"name"`
}

// PostSummary is the lightweight external-post reference embedded in shared
// messages. Posts are owned by an external service.
type PostSummary struct {
	ID        uuid.UUID     `json:"id"`
	Text      string        `json:"text"`
	Img       string        `json:"img"`
	PostedBy  PublicProfile `json:"postedBy"`
	CreatedAt time.Time     `json:"createdAt"`
}
