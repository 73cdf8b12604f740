package port

import (
	"context"
	"time"
)

// BlacklistStore is the storage contract every revocation backend must satisfy.
// Implementations store the token string as the lookup key together with the
// token's own expiry, taken from its exp claim at revocation time.
//
// Backends with native expiry (such as Redis) must arrange for an entry to
// become unreadable once its expiry passes and may implement Cleanup as a
// no-op returning 0.
type BlacklistStore interface {
	// Set stores or overwrites the entry for token.
	Set(ctx context.Context, token string, expiresAt time.Time) error

	// Get returns the stored expiry for token. found is false when the
	// entry was never set, was removed, or was expired by the backend.
	Get(ctx context.Context, token string) (expiresAt time.Time, found bool, err error)

	// Delete removes the entry and reports whether one existed.
	Delete(ctx context.Context, token string) (bool, error)

	// Cleanup purges entries whose expiry is at or before now and returns
	// the number of entries removed.
	Cleanup(ctx context.Context, now time.Time) (int, error)

	// Count returns the number of stored entries. For backends without
	// native expiry this may include logically-expired entries that have
	// not been purged yet.
	Count(ctx context.Context) (int, error)
}
