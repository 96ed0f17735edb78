package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "vonage_relay/internal/adapters/redis"
	"vonage_relay/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var miss domain.RoomsPage
	ok, err := c.Get(ctx, "rooms:10::", &miss)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	page := domain.RoomsPage{Items: []map[string]any{{"id": "r1"}}, Total: 1}
	if err := c.Set(ctx, "rooms:10::", page, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("relay:rooms:10::") {
		t.Fatalf("expected prefixed key in redis")
	}
	if ttl := mr.TTL("relay:rooms:10::"); ttl != 60*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	var got domain.RoomsPage
	ok, err = c.Get(ctx, "rooms:10::", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got.Items) != 1 || got.Items[0]["id"] != "r1" {
		t.Fatalf("unexpected page: %+v", got)
	}

	if err := c.Del(ctx, "rooms:10::"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, _ = c.Get(ctx, "rooms:10::", &got)
	if ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestCache_Expiry(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "room:r1", map[string]any{"id": "r1"}, 5); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(6 * time.Second)

	var got map[string]any
	if ok, _ := c.Get(ctx, "room:r1", &got); ok {
		t.Fatalf("expected entry to expire")
	}
}
