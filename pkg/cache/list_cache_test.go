package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"bookstack/pkg/domain"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, *RedisListCache) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	c, err := NewRedisListCache(client, "test:books:list", time.Minute)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	return srv, c
}

func TestListCacheRoundTrip(t *testing.T) {
	_, c := newTestCache(t)
	ctx := context.Background()

	if _, hit, err := c.Get(ctx); err != nil || hit {
		t.Fatalf("expected clean miss, hit=%v err=%v", hit, err)
	}

	books := []domain.Book{{ID: "5f3a9c1b2d4e6f7a8b9c0d1e", Title: "Dune", Category: domain.CategoryFantasy}}
	if err := c.Set(ctx, books); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, hit, err := c.Get(ctx)
	if err != nil || !hit {
		t.Fatalf("expected hit, hit=%v err=%v", hit, err)
	}
	if len(got) != 1 || got[0].Title != "Dune" {
		t.Fatalf("unexpected cached payload: %+v", got)
	}
}

func TestListCacheInvalidate(t *testing.T) {
	_, c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, []domain.Book{{ID: "5f3a9c1b2d4e6f7a8b9c0d1e"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, hit, _ := c.Get(ctx); hit {
		t.Fatalf("snapshot survived invalidation")
	}
}

func TestListCacheExpires(t *testing.T) {
	srv, c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, []domain.Book{{ID: "5f3a9c1b2d4e6f7a8b9c0d1e"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	srv.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx); hit {
		t.Fatalf("snapshot survived TTL")
	}
}

func TestListCacheCorruptEntryBehavesAsMiss(t *testing.T) {
	srv, c := newTestCache(t)
	if err := srv.Set("test:books:list", "{not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}
	if _, hit, err := c.Get(context.Background()); err != nil || hit {
		t.Fatalf("corrupt entry should be a miss, hit=%v err=%v", hit, err)
	}
}
