package snapshot

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"
)

func TestRedisRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewRedisRepository(client, zaptest.NewLogger(t))
	ctx := context.Background()

	if _, found, err := repo.Get(ctx, "cart"); err != nil || found {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}

	if err := repo.Set(ctx, "cart", `[{"id":1,"amount":1}]`); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, found, err := repo.Get(ctx, "cart")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if got != `[{"id":1,"amount":1}]` {
		t.Fatalf("got %q", got)
	}
	if ttl := mr.TTL("cart"); ttl != 0 {
		t.Fatalf("snapshot should not expire, ttl=%v", ttl)
	}
}

func TestRedisRepositoryPropagatesErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewRedisRepository(client, zaptest.NewLogger(t))
	mr.Close()

	if err := repo.Set(context.Background(), "cart", "[]"); err == nil {
		t.Fatal("expected error from closed server")
	}
	if _, _, err := repo.Get(context.Background(), "cart"); err == nil {
		t.Fatal("expected error from closed server")
	}
}
