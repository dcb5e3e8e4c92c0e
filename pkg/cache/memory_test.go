package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "missions", []string{"HST", "JWST"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got []string
	if err := mc.Get(ctx, "missions", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got[0] != "HST" || got[1] != "JWST" {
		t.Fatalf("unexpected value %v", got)
	}
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	var v int
	if err := mc.Get(ctx, "absent", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}

	_ = mc.Set(ctx, "short", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if err := mc.Get(ctx, "short", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", 1, time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", 2, time.Minute)
	time.Sleep(time.Millisecond)

	var v int
	if err := mc.Get(ctx, "a", &v); err != nil {
		t.Fatalf("get a: %v", err)
	}
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "c", 3, time.Minute)

	if mc.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", mc.Len())
	}
	if err := mc.Get(ctx, "b", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected b evicted, got %v", err)
	}
	if err := mc.Get(ctx, "a", &v); err != nil || v != 1 {
		t.Fatalf("expected a kept, got %d %v", v, err)
	}
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "figure:JWST:instruments:a", 1, time.Minute)
	_ = mc.Set(ctx, "figure:JWST:exposure:a", 2, time.Minute)
	_ = mc.Set(ctx, "figure:HST:instruments:a", 3, time.Minute)

	if err := mc.DeleteByPattern(ctx, BuildPattern("figure:JWST:")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mc.Len() != 1 {
		t.Fatalf("expected 1 entry left, got %d", mc.Len())
	}
	var v int
	if err := mc.Get(ctx, "figure:HST:instruments:a", &v); err != nil || v != 3 {
		t.Fatalf("HST entry should survive, got %d %v", v, err)
	}
}

func TestGetOrLoad(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (string, error) {
		calls++
		return "value", nil
	}

	v, hit, err := GetOrLoad(ctx, mc, "k", time.Minute, load)
	if err != nil || hit || v != "value" {
		t.Fatalf("first call: v=%q hit=%v err=%v", v, hit, err)
	}
	v, hit, err = GetOrLoad(ctx, mc, "k", time.Minute, load)
	if err != nil || !hit || v != "value" {
		t.Fatalf("second call: v=%q hit=%v err=%v", v, hit, err)
	}
	if calls != 1 {
		t.Fatalf("expected one load, got %d", calls)
	}

	boom := errors.New("boom")
	_, _, err = GetOrLoad(ctx, mc, "other", time.Minute, func(context.Context) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestHashKeyStable(t *testing.T) {
	key := GenerateKeyWithParams("JWST", "2024-01-01", "2025-01-01", 0)
	if key != "JWST:2024-01-01:2025-01-01:0" {
		t.Fatalf("unexpected key %q", key)
	}
	if HashKey(key) != HashKey(key) || len(HashKey(key)) != 32 {
		t.Fatalf("hash should be a stable md5 hex digest")
	}
}

func TestBuildPatternMatchesPrefixLiterally(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "figure:K2*:a", 1, time.Minute)
	_ = mc.Set(ctx, "figure:K2X:a", 2, time.Minute)

	if err := mc.DeleteByPattern(ctx, BuildPattern("figure:K2*:")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var v int
	if err := mc.Get(ctx, "figure:K2*:a", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("literal key should be deleted, got %v", err)
	}
	if err := mc.Get(ctx, "figure:K2X:a", &v); err != nil || v != 2 {
		t.Fatalf("wildcard must not widen the match, got %d %v", v, err)
	}
}
