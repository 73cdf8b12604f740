package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aritranodejs/jwt-token-revoke/internal/core/port"
)

// BlacklistOptions controls the in-memory blacklist behaviour.
type BlacklistOptions struct {
	// MaxEntries bounds the number of stored entries; 0 means unbounded.
	// When the bound is hit, entries closest to expiry are evicted first.
	MaxEntries int
}

// Blacklist is the default in-process revocation backend: a token→expiry
// mapping held for the process lifetime. Expiry is not enforced here; the
// engine decides liveness and prunes lazily, and Cleanup performs the
// periodic full scan.
type Blacklist struct {
	mu         sync.RWMutex
	entries    map[string]time.Time
	maxEntries int
}

// NewBlacklist constructs an empty in-memory blacklist.
func NewBlacklist(opts BlacklistOptions) *Blacklist {
	return &Blacklist{
		entries:    make(map[string]time.Time),
		maxEntries: opts.MaxEntries,
	}
}

// Set stores or overwrites the entry for token.
func (b *Blacklist) Set(_ context.Context, token string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.entries[token]; !exists && b.maxEntries > 0 && len(b.entries) >= b.maxEntries {
		b.evictSoonestLocked(len(b.entries) - b.maxEntries + 1)
	}

	b.entries[token] = expiresAt
	return nil
}

// Get returns the stored expiry for token, found=false when absent.
func (b *Blacklist) Get(_ context.Context, token string) (time.Time, bool, error) {
	b.mu.RLock()
	expiresAt, ok := b.entries[token]
	b.mu.RUnlock()
	return expiresAt, ok, nil
}

// Delete removes the entry and reports whether one existed.
func (b *Blacklist) Delete(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.entries[token]
	if ok {
		delete(b.entries, token)
	}
	return ok, nil
}

// Cleanup removes every entry whose expiry is at or before now and returns
// the removal count. Safe to run concurrently with itself; a redundant pass
// simply finds nothing left to purge.
func (b *Blacklist) Cleanup(_ context.Context, now time.Time) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for token, expiresAt := range b.entries {
		if !expiresAt.After(now) {
			delete(b.entries, token)
			removed++
		}
	}
	return removed, nil
}

// Count returns the current mapping size. This may overcount relative to
// logically-blacklisted tokens until the next cleanup or lazy read.
func (b *Blacklist) Count(_ context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries), nil
}

func (b *Blacklist) evictSoonestLocked(count int) {
	if count <= 0 || len(b.entries) == 0 {
		return
	}

	type item struct {
		token string
		exp   time.Time
	}
	values := make([]item, 0, len(b.entries))
	for token, exp := range b.entries {
		values = append(values, item{token: token, exp: exp})
	}
	sort.Slice(values, func(i, j int) bool { return values[i].exp.Before(values[j].exp) })

	if count > len(values) {
		count = len(values)
	}
	for i := 0; i < count; i++ {
		delete(b.entries, values[i].token)
	}
}

var _ port.BlacklistStore = (*Blacklist)(nil)
