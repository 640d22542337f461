package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"lifepath/internal/cache"
)

// failingCache fails every operation, standing in for a Redis outage.
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}
func (failingCache) Delete(context.Context, ...string) error { return errors.New("cache down") }
func (failingCache) Exists(context.Context, string) (bool, error) {
	return false, errors.New("cache down")
}

func TestCooldownGateBlocksAfterStart(t *testing.T) {
	ctx := context.Background()
	gate := NewCooldownGate(cache.NewMemory(), time.Minute, nil)

	if gate.OnCooldown(ctx, 1) {
		t.Fatalf("fresh state reported on cooldown")
	}
	gate.Start(ctx, 1)
	if !gate.OnCooldown(ctx, 1) {
		t.Fatalf("state not on cooldown after Start")
	}
	if gate.OnCooldown(ctx, 2) {
		t.Fatalf("cooldown leaked to another state")
	}
}

func TestCooldownGateFailsOpen(t *testing.T) {
	ctx := context.Background()
	gate := NewCooldownGate(failingCache{}, time.Minute, nil)

	if gate.OnCooldown(ctx, 1) {
		t.Fatalf("cache failure should fail open")
	}
	// Start must not panic or propagate the error.
	gate.Start(ctx, 1)
	if gate.OnCooldown(ctx, 1) {
		t.Fatalf("cache failure should keep failing open")
	}
}
