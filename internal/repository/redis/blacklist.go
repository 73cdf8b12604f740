package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/aritranodejs/jwt-token-revoke/internal/core/port"
)

const defaultKeyPrefix = "jwt_blacklist:"

// BlacklistStore is the network-backed revocation backend. Keys are the
// configured prefix concatenated with the raw token string; values hold the
// token expiry as epoch milliseconds in decimal form. Expiry is enforced
// natively through a relative TTL, so Cleanup is a no-op.
type BlacklistStore struct {
	client *red.Client
	prefix string
}

// NewBlacklistStore wires a Redis client into a blacklist store.
func NewBlacklistStore(client *red.Client, keyPrefix string) *BlacklistStore {
	prefix := keyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &BlacklistStore{client: client, prefix: prefix}
}

// Set stores the entry with a TTL matching the token's remaining lifetime,
// rounded up to whole seconds. Entries whose expiry already passed are not
// stored at all.
func (s *BlacklistStore) Set(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := ttlUntil(expiresAt, time.Now())
	if ttl <= 0 {
		return nil
	}

	value := strconv.FormatInt(expiresAt.UnixMilli(), 10)
	if err := s.client.Set(ctx, s.key(token), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set blacklisted token: %w", err)
	}
	return nil
}

// Get returns the stored expiry; Redis-expired and never-set keys both
// report found=false.
func (s *BlacklistStore) Get(ctx context.Context, token string) (time.Time, bool, error) {
	value, err := s.client.Get(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("redis get blacklisted token: %w", err)
	}

	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis parse blacklist expiry %q: %w", value, err)
	}
	return time.UnixMilli(millis), true, nil
}

// Delete removes the entry and reports whether one existed.
func (s *BlacklistStore) Delete(ctx context.Context, token string) (bool, error) {
	removed, err := s.client.Del(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis delete blacklisted token: %w", err)
	}
	return removed > 0, nil
}

// Cleanup is a no-op: Redis evicts expired keys on its own.
func (s *BlacklistStore) Cleanup(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

// Count scans the keyspace under the configured prefix.
func (s *BlacklistStore) Count(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("redis scan blacklist keys: %w", err)
		}
		total += len(keys)
		cursor = next
		if cursor == 0 {
			return total, nil
		}
	}
}

func (s *BlacklistStore) key(token string) string {
	return s.prefix + token
}

// ttlUntil computes the relative expiry rounded up to whole seconds, since
// second granularity is the finest TTL Redis SET supports portably.
func ttlUntil(expiresAt, now time.Time) time.Duration {
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	ttl := remaining.Truncate(time.Second)
	if ttl < remaining {
		ttl += time.Second
	}
	return ttl
}

var _ port.BlacklistStore = (*BlacklistStore)(nil)
