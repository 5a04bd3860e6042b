// Package kvstore provides the string key-value primitive the flashcard
// repository persists into. Values are opaque to the store; the repository
// keeps JSON-serialized collections in them.
package kvstore

import "context"

// Store is an asynchronous get/set-by-key string store. Get reports whether
// the key was present; a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
