package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lifepath/internal/cache"
)

// CooldownGate rate-limits event generation per game session. The gate is
// a cache entry whose presence means "cooling down"; a cache failure fails
// open, so an outage degrades to more frequent events rather than a stuck
// game loop.
type CooldownGate struct {
	cache cache.Cache
	ttl   time.Duration
	log   *slog.Logger
}

func NewCooldownGate(c cache.Cache, ttl time.Duration, logger *slog.Logger) *CooldownGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &CooldownGate{cache: c, ttl: ttl, log: logger}
}

func cooldownKey(stateID int64) string {
	return fmt.Sprintf("cooldown:event:%d", stateID)
}

func (g *CooldownGate) OnCooldown(ctx context.Context, stateID int64) bool {
	if g.cache == nil {
		return false
	}
	ok, err := g.cache.Exists(ctx, cooldownKey(stateID))
	if err != nil {
		g.log.Warn("cooldown check failed, failing open", "state_id", stateID, "err", err)
		return false
	}
	return ok
}

func (g *CooldownGate) Start(ctx context.Context, stateID int64) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Set(ctx, cooldownKey(stateID), []byte("1"), g.ttl); err != nil {
		g.log.Warn("cooldown set failed", "state_id", stateID, "err", err)
	}
}
