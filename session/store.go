// Package session provides per-chat-and-user state for update handlers,
// backed by pluggable stores (in-memory, filesystem, Redis).
package session

import (
	"context"
	"time"
)

// Store is a flat namespace of binary values with optional per-key
// lifetimes. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key. The boolean reports whether the key
	// exists and has not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes the value for key, replacing any previous value and
	// clearing any previously set lifetime.
	Set(ctx context.Context, key string, value []byte) error

	// Expire sets the remaining lifetime for key. Expiring a missing key
	// is a no-op.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Remove deletes key. Removing a missing key is a no-op.
	Remove(ctx context.Context, key string) error
}
