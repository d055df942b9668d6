package ingest

import (
	"context"
	"testing"
	"time"
)

func TestTTLMapDedupCacheRemembersWithinWindow(t *testing.T) {
	c := NewTTLMapDedupCache()
	if c.Contains("fp1") {
		t.Fatal("Contains() before Remember() = true, want false")
	}
	c.Remember("fp1")
	if !c.Contains("fp1") {
		t.Error("Contains() after Remember() = false, want true")
	}
}

func TestTTLMapDedupCacheDistinguishesFingerprints(t *testing.T) {
	c := NewTTLMapDedupCache()
	c.Remember("fp1")
	if c.Contains("fp2") {
		t.Error("Contains(\"fp2\") = true after only Remember(\"fp1\"), want false")
	}
}

func TestTTLMapDedupCacheExpiresAfterTTL(t *testing.T) {
	c := &ttlMapDedupCache{entries: map[string]time.Time{
		"fp1": time.Now().Add(-1 * time.Second), // already expired
	}}
	if c.Contains("fp1") {
		t.Error("Contains() for an expired entry = true, want false")
	}
}

func TestTTLMapDedupCachePing(t *testing.T) {
	c := NewTTLMapDedupCache()
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v, want nil", err)
	}
}

func TestTTLMapDedupCacheEvictsExpiredLocked(t *testing.T) {
	c := &ttlMapDedupCache{entries: map[string]time.Time{
		"expired": time.Now().Add(-time.Minute),
		"fresh":   time.Now().Add(time.Minute),
	}}
	c.evictExpiredLocked(time.Now())
	if _, ok := c.entries["expired"]; ok {
		t.Error("evictExpiredLocked() left an expired entry in place")
	}
	if _, ok := c.entries["fresh"]; !ok {
		t.Error("evictExpiredLocked() removed a non-expired entry")
	}
}
