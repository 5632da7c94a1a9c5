package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client, "test:")
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	if _, hit, err := c.Get(ctx, "artifact:1"); hit || err != nil {
		t.Fatalf("empty Get = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "artifact:1", []byte("digraph {}"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if !mr.Exists("test:artifact:1") {
		t.Error("key should be stored with the prefix")
	}

	data, hit, err := c.Get(ctx, "artifact:1")
	if err != nil || !hit || string(data) != "digraph {}" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "artifact:1"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "artifact:1"); hit {
		t.Error("entry should be gone after Delete")
	}
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should expire after its ttl")
	}
}

func TestNewRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	defer mr.Close()

	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()
	if c.prefix != DefaultRedisPrefix {
		t.Errorf("prefix = %q", c.prefix)
	}

	if _, err := NewRedisCache(context.Background(), "not a url"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("bad url err = %v, want INVALID_INPUT", err)
	}
}

func TestRedisCacheUnavailable(t *testing.T) {
	mr, _ := miniredis.Run()
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), "redis://"+addr)
	if !errs.Is(err, errs.ErrCodeNetwork) {
		t.Errorf("err = %v, want NETWORK_ERROR", err)
	}
}
