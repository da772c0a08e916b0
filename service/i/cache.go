package i

import "context"

// TokenCache is a best-effort store of the last token issued per principal key.
// Implementations never report backend failures as anything but a miss or a
// failed put; callers treat both as advisory.
type TokenCache interface {
	// Get returns the cached token for key. A miss and a backend error both
	// return ok == false.
	Get(ctx context.Context, key string) (token string, ok bool)

	// Put stores token under key. A returned error only means the entry was not
	// written.
	Put(ctx context.Context, key, token string) error

	// Close releases the connection pool.
	Close() error
}
