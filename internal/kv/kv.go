// Package kv defines the pluggable key-value persistence medium the history
// store writes through. Every medium stores whole documents under fixed keys,
// replaced wholesale on each write — there are no partial or append writes.
package kv

import "context"

// Store is a minimal durable key-value medium.
//
// Read returns the stored bytes and true, or (nil, false, nil) when the key
// has never been written. Implementations return an error only for medium
// failures (unreadable file, unreachable server); callers are expected to
// degrade gracefully rather than propagate.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, bool, error)
	Write(ctx context.Context, key string, value []byte) error
}
