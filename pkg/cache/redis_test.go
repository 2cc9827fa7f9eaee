package cache

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "http://localhost:6379", "buildsync:"); err == nil {
		t.Fatal("expected an error for a non-redis URL")
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	// Reserve a port, then close it so nothing is listening.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = NewRedisCache(ctx, "redis://"+addr+"/0", "buildsync:")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("NewRedisCache() error = %v, want ErrNetwork", err)
	}
}

func TestRedisCacheKeyPrefix(t *testing.T) {
	c := &RedisCache{prefix: "buildsync:"}
	if got := c.key("npm:lodash"); got != "buildsync:npm:lodash" {
		t.Errorf("key() = %q", got)
	}
}
