// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New(time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should miss")
	}

	c.Set("k", 42)
	v, ok := c.Get("k")
	if !ok {
		t.Fatal("Get after Set should hit")
	}
	if v.(int) != 42 {
		t.Errorf("Get = %v, want 42", v)
	}
}

func TestExpiry(t *testing.T) {
	c := New(10 * time.Millisecond)
	c.Set("k", "v")

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be evicted on Get, Len = %d", c.Len())
	}
}

func TestZeroTTLStoresNothing(t *testing.T) {
	c := New(0)
	c.Set("k", "v")
	if _, ok := c.Get("k"); ok {
		t.Error("zero-TTL cache should not store")
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Cache
	c.Set("k", "v")
	if _, ok := c.Get("k"); ok {
		t.Error("nil cache should always miss")
	}
	if c.Len() != 0 {
		t.Error("nil cache Len should be 0")
	}
}

func TestKeyStability(t *testing.T) {
	a := Key("aspirin", "10", "status=recruiting")
	b := Key("aspirin", "10", "status=recruiting")
	if a != b {
		t.Errorf("Key not stable: %q != %q", a, b)
	}

	c := Key("aspirin", "10", "status=completed")
	if a == c {
		t.Error("different inputs should produce different keys")
	}

	// Joined parts must not collide with differently-split parts.
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("part boundaries should affect the key")
	}
}
