package whatsapp

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) *RedisLimitStore {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisLimitStore(rdb, time.Hour)
}

func TestRedisLimitStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestRedisStore(t)

	t.Run("missing key loads as nil without error", func(t *testing.T) {
		raw, err := store.Load(ctx, "rate_limit:missing")
		if err != nil {
			t.Fatal(err)
		}
		if raw != nil {
			t.Errorf("Load = %q, want nil", raw)
		}
	})

	t.Run("roundtrip", func(t *testing.T) {
		key := "rate_limit:client-1"
		blob := []byte(`{"bulk":{"count":2}}`)
		if err := store.Save(ctx, key, blob); err != nil {
			t.Fatal(err)
		}
		raw, err := store.Load(ctx, key)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(raw, blob) {
			t.Errorf("Load = %q, want %q", raw, blob)
		}
	})

	t.Run("delete removes the key", func(t *testing.T) {
		key := "rate_limit:client-2"
		if err := store.Save(ctx, key, []byte("x")); err != nil {
			t.Fatal(err)
		}
		if err := store.Delete(ctx, key); err != nil {
			t.Fatal(err)
		}
		raw, err := store.Load(ctx, key)
		if err != nil || raw != nil {
			t.Errorf("Load after Delete = (%q, %v), want (nil, nil)", raw, err)
		}
	})

	t.Run("save applies the ttl", func(t *testing.T) {
		key := "rate_limit:client-3"
		if err := store.Save(ctx, key, []byte("x")); err != nil {
			t.Fatal(err)
		}
		ttl, err := store.rdb.TTL(ctx, key).Result()
		if err != nil {
			t.Fatal(err)
		}
		if ttl <= 0 || ttl > time.Hour {
			t.Errorf("TTL = %v, want within (0, 1h]", ttl)
		}
	})
}

func TestLimiterWithRedisStore(t *testing.T) {
	t.Parallel()

	store := newTestRedisStore(t)
	key := "rate_limit:redis-client"

	first := NewLimiter(context.Background(), testSettings(), store, key)
	first.RecordBulkSend(30)

	second := NewLimiter(context.Background(), testSettings(), store, key)
	snap := second.Snapshot()
	if snap.Bulk.Count != 1 || snap.Bulk.TotalContacts != 30 {
		t.Errorf("bulk state lost across restart: %+v", snap.Bulk)
	}
}
