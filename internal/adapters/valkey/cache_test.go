package valkey_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	vk "github.com/valkey-io/valkey-go"

	"github.com/samirrijal/tourguide/internal/adapters/valkey"
)

func newTestCache(t *testing.T) (*valkey.Cache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	c, err := valkey.New(valkey.Options{Addr: srv.Addr(), DisableCache: true})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(c.Close)
	return c, srv
}

func TestCache_SetGetDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "attractions:nearest:1", []byte(`[1,2,3]`), 300); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get(ctx, "attractions:nearest:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[1,2,3]` {
		t.Errorf("got %q", got)
	}

	if err := c.Delete(ctx, "attractions:nearest:1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get(ctx, "attractions:nearest:1"); !vk.IsValkeyNil(err) {
		t.Errorf("expected nil reply after delete, got %v", err)
	}
}

func TestCache_TTL(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 5); err != nil {
		t.Fatal(err)
	}
	if ttl := srv.TTL("k"); ttl != 5*time.Second {
		t.Errorf("expected 5s ttl, got %v", ttl)
	}

	srv.FastForward(6 * time.Second)
	if _, err := c.Get(ctx, "k"); !vk.IsValkeyNil(err) {
		t.Errorf("expected expired key to miss, got %v", err)
	}
}

func TestCache_Ping(t *testing.T) {
	c, _ := newTestCache(t)
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}
