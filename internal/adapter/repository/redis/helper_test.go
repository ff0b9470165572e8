package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// newTestRedisClient starts an in-memory Redis and returns a client bound
// to it. Both are closed when the test ends.
func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// requireKeyTTL fails unless key exists and expires within max.
func requireKeyTTL(t *testing.T, mr *miniredis.Miniredis, key string, max time.Duration) {
	t.Helper()

	if !mr.Exists(key) {
		t.Fatalf("expected key %q to exist", key)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > max {
		t.Fatalf("expected %q to expire within %s, got ttl %s", key, max, ttl)
	}
}
