package engine

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		k1 := CacheKey("transcript", "dQw4w9WgXcQ", "ja")
		k2 := CacheKey("transcript", "dQw4w9WgXcQ", "ja")
		if k1 != k2 {
			t.Errorf("CacheKey not deterministic: %q != %q", k1, k2)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		k1 := CacheKey("transcript", "dQw4w9WgXcQ", "ja")
		k2 := CacheKey("transcript", "dQw4w9WgXcQ", "en")
		if k1 == k2 {
			t.Errorf("different inputs produced same key: %q", k1)
		}
	})

	t.Run("has prefix", func(t *testing.T) {
		k := CacheKey("test")
		if k[:4] != "yts:" {
			t.Errorf("expected yts: prefix, got %q", k[:4])
		}
	})
}

func TestCacheGetSet(t *testing.T) {
	c := NewCache("", time.Minute, 100, 5*time.Minute)
	defer c.Close()

	ctx := context.Background()
	key := CacheKey("test", "round-trip")

	// Miss
	if _, ok := CacheLoadJSON[Transcript](ctx, c, key); ok {
		t.Error("expected cache miss on empty cache")
	}

	CacheStoreJSON(ctx, c, key, Transcript{{Text: "こんにちは", Start: 1.5, Duration: 2}})

	got, ok := CacheLoadJSON[Transcript](ctx, c, key)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if len(got) != 1 || got[0].Text != "こんにちは" || got[0].Start != 1.5 {
		t.Errorf("got %+v, want one segment with text こんにちは at 1.5", got)
	}
}

func TestCacheNil(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"))
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("nil cache should always miss")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil cache = %v", err)
	}
}

func TestCacheExpiration(t *testing.T) {
	c := NewCache("", time.Millisecond, 100, 5*time.Minute)
	defer c.Close()

	ctx := context.Background()
	key := CacheKey("test", "expiry")

	c.Set(ctx, key, []byte("temp"))
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get(ctx, key); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestCacheEviction(t *testing.T) {
	c := NewCache("", time.Minute, 3, 5*time.Minute)
	defer c.Close()

	ctx := context.Background()
	for i := range 5 {
		c.Set(ctx, CacheKey("evict", fmt.Sprint(i)), []byte(fmt.Sprint(i)))
		time.Sleep(time.Millisecond)
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count > 3 {
		t.Errorf("L1 holds %d entries, want at most 3", count)
	}
	if _, ok := c.Get(ctx, CacheKey("evict", "4")); !ok {
		t.Error("most recent entry should survive eviction")
	}
}

func TestCacheStatsCount(t *testing.T) {
	c := NewCache("", time.Minute, 10, 5*time.Minute)
	defer c.Close()

	ctx := context.Background()
	h0, m0 := CacheStats()
	c.Get(ctx, "missing")
	c.Set(ctx, "present", []byte("x"))
	c.Get(ctx, "present")
	h1, m1 := CacheStats()
	if h1-h0 != 1 || m1-m0 != 1 {
		t.Errorf("hits +%d misses +%d, want +1 +1", h1-h0, m1-m0)
	}
}
