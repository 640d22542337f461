package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMemorySetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := m.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := m.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(got, []byte("v")) {
		t.Fatalf("get: got=%q ok=%v err=%v", got, ok, err)
	}
	exists, err := m.Exists(ctx, "k")
	if err != nil || !exists {
		t.Fatalf("exists: %v %v", exists, err)
	}

	if err := m.Delete(ctx, "k", "missing"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatalf("key survived delete")
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	if err := m.Set(ctx, "k", []byte("v"), 5*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Fatalf("entry missing before expiry")
	}

	now = now.Add(4 * time.Second)
	if exists, _ := m.Exists(ctx, "k"); !exists {
		t.Fatalf("entry expired early")
	}

	now = now.Add(2 * time.Second)
	if exists, _ := m.Exists(ctx, "k"); exists {
		t.Fatalf("entry alive past its ttl")
	}
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatalf("expired entry still readable")
	}
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	if err := m.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	now = now.Add(1000 * time.Hour)
	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Fatalf("zero-ttl entry expired")
	}
}
