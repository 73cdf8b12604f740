package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestBlacklistStoreSetAndGet(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewBlacklistStore(client, "jwt_blacklist:")

	ctx := context.Background()
	expiresAt := time.Now().Add(2 * time.Minute).Truncate(time.Millisecond)

	if err := store.Set(ctx, "token-123", expiresAt); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, found, err := store.Get(ctx, "token-123")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !found {
		t.Fatalf("expected token to be stored")
	}
	if got.UnixMilli() != expiresAt.UnixMilli() {
		t.Fatalf("expected expiry %v, got %v", expiresAt, got)
	}

	value, err := server.Get("jwt_blacklist:token-123")
	if err != nil {
		t.Fatalf("miniredis get failed: %v", err)
	}
	if value != strconv.FormatInt(expiresAt.UnixMilli(), 10) {
		t.Fatalf("expected decimal epoch-millis value, got %q", value)
	}

	remaining := server.TTL("jwt_blacklist:token-123")
	if remaining <= 0 || remaining > 2*time.Minute+time.Second {
		t.Fatalf("expected ttl within (0, 2m1s], got %v", remaining)
	}
}

func TestBlacklistStoreSetSkipsPastExpiry(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewBlacklistStore(client, "jwt_blacklist:")

	if err := store.Set(context.Background(), "stale", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	if server.Exists("jwt_blacklist:stale") {
		t.Fatalf("expected no key for already-expired token")
	}
}

func TestBlacklistStoreGetMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewBlacklistStore(client, "jwt_blacklist:")

	_, found, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if found {
		t.Fatalf("expected miss for unknown token")
	}
}

func TestBlacklistStoreEntryExpiresNatively(t *testing.T) {
	client, server := newTestRedis(t)
	store := NewBlacklistStore(client, "jwt_blacklist:")

	ctx := context.Background()
	if err := store.Set(ctx, "short", time.Now().Add(2*time.Second)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	server.FastForward(3 * time.Second)

	_, found, err := store.Get(ctx, "short")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if found {
		t.Fatalf("expected entry to be expired by backend")
	}
}

func TestBlacklistStoreDeleteAndCount(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewBlacklistStore(client, "jwt_blacklist:")

	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour)

	for _, token := range []string{"one", "two", "three"} {
		if err := store.Set(ctx, token, expiresAt); err != nil {
			t.Fatalf("Set returned error: %v", err)
		}
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 entries, got %d", count)
	}

	removed, err := store.Delete(ctx, "two")
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if !removed {
		t.Fatalf("expected delete of existing entry to report true")
	}

	removed, err = store.Delete(ctx, "two")
	if err != nil {
		t.Fatalf("second Delete returned error: %v", err)
	}
	if removed {
		t.Fatalf("expected second delete to report false")
	}

	count, _ = store.Count(ctx)
	if count != 2 {
		t.Fatalf("expected 2 entries after delete, got %d", count)
	}
}

func TestBlacklistStoreCleanupIsNoOp(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewBlacklistStore(client, "jwt_blacklist:")

	ctx := context.Background()
	if err := store.Set(ctx, "live", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	removed, err := store.Cleanup(ctx, time.Now())
	if err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected native-expiry cleanup to report 0, got %d", removed)
	}

	count, _ := store.Count(ctx)
	if count != 1 {
		t.Fatalf("expected live entry to survive cleanup, got %d entries", count)
	}
}

func TestTTLUntilRoundsUpToWholeSeconds(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		expiresAt time.Time
		want      time.Duration
	}{
		{"exact seconds", now.Add(90 * time.Second), 90 * time.Second},
		{"fractional rounds up", now.Add(1500 * time.Millisecond), 2 * time.Second},
		{"sub-second rounds up", now.Add(10 * time.Millisecond), time.Second},
		{"already expired", now.Add(-time.Second), 0},
		{"boundary", now, 0},
	}

	for _, tc := range cases {
		if got := ttlUntil(tc.expiresAt, now); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
