package actors

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"driftchat/internal/models"
	"driftchat/internal/utils"
)

// In-memory store fakes backing the actor tests. All of them guard their
// maps since actor handlers and test assertions run on different goroutines.

type fakeConversationStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Conversation
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{items: make(map[uuid.UUID]*models.Conversation)}
}

func (s *fakeConversationStore) FindOrCreateConversation(ctx context.Context, userA, userB uuid.UUID, last models.LastMessage) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lo, hi := models.OrderPair(userA, userB)
	for _, conv := range s.items {
		if conv.ParticipantLo == lo && conv.ParticipantHi == hi {
			copied := *conv
			return &copied, nil
		}
	}

	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:            uuid.New(),
		ParticipantLo: lo,
		ParticipantHi: hi,
		LastMessage:   last,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.items[conv.ID] = conv
	copied := *conv
	return &copied, nil
}

func (s *fakeConversationStore) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.items[id]
	if !ok {
		return nil, utils.NewNotFoundError("conversation")
	}
	copied := *conv
	return &copied, nil
}

func (s *fakeConversationStore) GetConversationByParticipants(ctx context.Context, userA, userB uuid.UUID) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lo, hi := models.OrderPair(userA, userB)
	for _, conv := range s.items {
		if conv.ParticipantLo == lo && conv.ParticipantHi == hi {
			copied := *conv
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("conversation")
}

func (s *fakeConversationStore) ListConversationsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Conversation
	for _, conv := range s.items {
		if conv.HasParticipant(userID) {
			copied := *conv
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.After(result[j].UpdatedAt) })
	return result, nil
}

func (s *fakeConversationStore) UpdateLastMessage(ctx context.Context, conversationID uuid.UUID, last models.LastMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.items[conversationID]
	if !ok {
		return utils.NewNotFoundError("conversation")
	}
	conv.LastMessage = last
	conv.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *fakeConversationStore) SetLastMessageSeen(ctx context.Context, conversationID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.items[conversationID]
	if !ok {
		return utils.NewNotFoundError("conversation")
	}
	conv.LastMessage.Seen = true
	return nil
}

func (s *fakeConversationStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

type fakeMessageStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{items: make(map[uuid.UUID]*models.Message)}
}

func (s *fakeMessageStore) InsertMessage(ctx context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *message
	s.items[message.ID] = &copied
	return nil
}

func (s *fakeMessageStore) ListConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Message
	for _, m := range s.items {
		if m.ConversationID == conversationID {
			copied := *m
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *fakeMessageStore) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[id]
	if !ok {
		return nil, utils.NewNotFoundError("message")
	}
	copied := *m
	return &copied, nil
}

func (s *fakeMessageStore) MarkConversationSeen(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var flipped int64
	for _, m := range s.items {
		if m.ConversationID == conversationID && !m.Seen {
			m.Seen = true
			flipped++
		}
	}
	return flipped, nil
}

func (s *fakeMessageStore) TombstoneMessage(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[id]
	if !ok {
		return utils.NewNotFoundError("message")
	}
	m.Tombstone()
	return nil
}

func (s *fakeMessageStore) DeleteConversationMessages(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, m := range s.items {
		if m.ConversationID == conversationID {
			delete(s.items, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *fakeMessageStore) ListConversationImages(ctx context.Context, conversationID uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var uris []string
	for _, m := range s.items {
		if m.ConversationID == conversationID && m.Img != "" {
			uris = append(uris, m.Img)
		}
	}
	return uris, nil
}

type fakeNotificationStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Notification
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{items: make(map[uuid.UUID]*models.Notification)}
}

func (s *fakeNotificationStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *n
	s.items[n.ID] = &copied
	return nil
}

func (s *fakeNotificationStore) ListNotificationsForUser(ctx context.Context, userID uuid.UUID, limit int64) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Notification
	for _, n := range s.items {
		if n.RecipientID == userID {
			copied := *n
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if int64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *fakeNotificationStore) GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return nil, utils.NewNotFoundError("notification")
	}
	copied := *n
	return &copied, nil
}

func (s *fakeNotificationStore) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.items {
		if n.RecipientID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *fakeNotificationStore) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return utils.NewNotFoundError("notification")
	}
	n.Read = true
	return nil
}

func (s *fakeNotificationStore) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var flipped int64
	for _, n := range s.items {
		if n.RecipientID == userID && !n.Read {
			n.Read = true
			flipped++
		}
	}
	return flipped, nil
}

func (s *fakeNotificationStore) ClearNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, n := range s.items {
		if n.RecipientID == userID {
			delete(s.items, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *fakeNotificationStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

type fakeProfileStore struct {
	profiles map[uuid.UUID]models.PublicProfile
}

func (s *fakeProfileStore) GetPublicProfile(ctx context.Context, userID uuid.UUID) (models.PublicProfile, error) {
	profile, ok := s.profiles[userID]
	if !ok {
		return models.PublicProfile{}, utils.NewNotFoundError("user")
	}
	return profile, nil
}

func (s *fakeProfileStore) GetPublicProfiles(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]models.PublicProfile, error) {
	result := make(map[uuid.UUID]models.PublicProfile)
	for _, id := range userIDs {
		if profile, ok := s.profiles[id]; ok {
			result[id] = profile
		}
	}
	return result, nil
}

type fakePostStore struct {
	posts map[uuid.UUID]*models.PostSummary
}

func (s *fakePostStore) GetPostSummary(ctx context.Context, postID uuid.UUID) (*models.PostSummary, error) {
	post, ok := s.posts[postID]
	if !ok {
		return nil, utils.NewNotFoundError("post")
	}
	return post, nil
}

type fakeAssetStore struct {
	mu      sync.Mutex
	deleted []string
}

func (s *fakeAssetStore) DeleteAsset(ctx context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, uri)
	return nil
}

func (s *fakeAssetStore) deletedURIs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// failingAssetStore refuses every destroy call.
type failingAssetStore struct {
	mu    sync.Mutex
	calls int
}

func (s *failingAssetStore) DeleteAsset(ctx context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return errors.New("destroy endpoint unavailable")
}

func (s *failingAssetStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// captureConn records pushed event payloads for assertion.
type captureConn struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (c *captureConn) Push(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
	return true
}

// eventsNamed returns the decoded data payloads of every captured event
// with the given name.
func (c *captureConn) eventsNamed(t *testing.T, name string) []json.RawMessage {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []json.RawMessage
	for _, payload := range c.payloads {
		var envelope struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(payload, &envelope))
		if envelope.Event == name {
			matched = append(matched, envelope.Data)
		}
	}
	return matched
}
