package cache

import (
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Expected no error on Set, got %v", err)
	}

	val, found := c.Get("k")
	if !found {
		t.Fatal("Expected key to be found")
	}
	if string(val) != "value" {
		t.Errorf("Expected 'value', got %q", val)
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss for absent key")
	}
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_ = c.Set("a", []byte("1"), time.Minute)
	_ = c.Set("b", []byte("2"), time.Minute)

	if err := c.Delete("a"); err != nil {
		t.Fatalf("Expected no error on Delete, got %v", err)
	}
	if _, found := c.Get("a"); found {
		t.Error("Expected 'a' to be deleted")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Expected no error on Clear, got %v", err)
	}
	if _, found := c.Get("b"); found {
		t.Error("Expected 'b' to be cleared")
	}
}

func TestKey_Deterministic(t *testing.T) {
	k1 := Key("/path/to/project", "fingerprint")
	k2 := Key("/path/to/project", "fingerprint")
	if k1 != k2 {
		t.Error("Expected identical inputs to produce identical keys")
	}

	if Key("/path/a", "fp") == Key("/path/b", "fp") {
		t.Error("Expected different paths to produce different keys")
	}
	if Key("/path/a", "fp1") == Key("/path/a", "fp2") {
		t.Error("Expected different fingerprints to produce different keys")
	}
}
