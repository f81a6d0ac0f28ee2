// Package presence maps user identity to a live connection handle. Entries
// are ephemeral: they exist only for the lifetime of a connection and are
// never persisted.
package presence

import (
	"sync"

	"github.com/google/uuid"
)

// Conn is a live client connection capable of receiving a push payload.
// Push must not block; it reports false when the payload could not be
// queued (slow or closing connection).
type Conn interface {
	Push(payload []byte) bool
}

// Registry is the shared mapping from user ID to active connection. It is
// read and written from concurrently running request handlers; a plain
// RWMutex suffices since each key has single-writer (last-connect-wins)
// semantics.
type Registry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]Conn
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[uuid.UUID]Conn),
	}
}

// Register binds a user to a connection, overwriting any prior binding.
// One active connection per user: a second device or tab replaces the first.
func (r *Registry) Register(userID uuid.UUID, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = conn
}

// Unregister removes the binding for userID. Idempotent. When conn is
// non-nil the binding is only removed if it still points at that connection,
// so the deferred cleanup of an overwritten connection cannot evict the
// replacement that registered after it.
func (r *Registry) Unregister(userID uuid.UUID, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conn != nil {
		if current, ok := r.conns[userID]; !ok || current != conn {
			return
		}
	}
	delete(r.conns, userID)
}

// Lookup returns the live connection for userID, if any. Pure read.
func (r *Registry) Lookup(userID uuid.UUID) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[userID]
	return conn, ok
}

// OnlineUserIDs returns the set of currently connected user IDs.
func (r *Registry) OnlineUserIDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}
