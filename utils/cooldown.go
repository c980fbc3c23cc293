package utils

import (
	"context"
	"sync"
	"time"
)

type cooldownEntry struct {
	expiresAt time.Time
}

var (
	cooldowns   = map[string]cooldownEntry{}
	cooldownsMu sync.Mutex
)

// CooldownTrySet sets a cooldown key, returning true when the action is
// allowed and false while a previous cooldown is still active. Redis SetNX
// gives cross-instance behavior; memory is the fallback.
func CooldownTrySet(key string, cooldown time.Duration) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		ok, err := rc.SetNX(ctx, "cooldown:"+key, "1", cooldown).Result()
		if err == nil {
			return ok
		}
	}
	cooldownsMu.Lock()
	defer cooldownsMu.Unlock()
	if entry, ok := cooldowns[key]; ok && time.Now().Before(entry.expiresAt) {
		return false
	}
	cooldowns[key] = cooldownEntry{expiresAt: time.Now().Add(cooldown)}
	return true
}
