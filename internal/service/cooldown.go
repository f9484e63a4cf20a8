package service

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// AuditCooldown is the fixed per-session wait between two audits.
const AuditCooldown = 10 * time.Second

// Cooldown admits at most one call per key per window.
// Keys are kept in an in-process go-cache store and expire on their own, so a
// restarted process starts with every key admitted.
type Cooldown struct {
	window time.Duration
	seen   *cache.Cache
}

// NewCooldown constructs a Cooldown with the given window.
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window: window,
		seen:   cache.New(window, 2*window),
	}
}

// Allow reports whether key may proceed and, if so, starts its window.
// cache.Add fails while an unexpired item exists, which makes the
// check-and-set atomic.
func (c *Cooldown) Allow(key string) bool {
	return c.seen.Add(key, struct{}{}, c.window) == nil
}
