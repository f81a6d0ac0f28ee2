// Package assets wraps the external media asset store. Uploads happen
// outside this core; the messaging subsystem only releases assets when
// messages are deleted or a conversation is cleared.
package assets

import "context"

// Store releases externally hosted media assets by their resolved URI.
type Store interface {
	DeleteAsset(ctx context.Context, uri string) error
}

// NoopStore is used when no asset store credentials are configured, and by
// tests. Deletions succeed without doing anything.
type NoopStore struct{}

func (NoopStore) DeleteAsset(ctx context.Context, uri string) error {
	return nil
}
