// Package store defines the persistence contracts for conversation history
// and synthesized audio artifacts.
//
// Persistence is best-effort from the pipeline's point of view: callers log
// and swallow store errors rather than failing the request.
package store

import (
	"context"

	"github.com/nihao-labs/yuban/internal/conversation"
)

// Store persists the single shared conversation, append-only.
type Store interface {
	// Append adds one turn. Turns are immutable once appended.
	Append(ctx context.Context, turn conversation.Turn) error

	// ListAll returns every retained turn in ascending creation order.
	ListAll(ctx context.Context) ([]conversation.Turn, error)

	// Clear removes all turns unconditionally.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// BlobStore uploads audio artifacts and returns publicly resolvable URLs.
// Callers always upload under a fresh unique name; blobs are never
// overwritten.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}
