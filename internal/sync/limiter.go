package sync

import (
	gosync "sync"
	"time"
)

// RefreshLimiter bounds how often broadcast-triggered refetches may
// fire per trigger kind. A burst of refresh_participants messages after
// a role change would otherwise hammer the directory; the periodic poll
// covers anything the limiter drops.
type RefreshLimiter struct {
	mu       gosync.Mutex
	history  map[string][]time.Time
	limit    int
	interval time.Duration

	now func() time.Time
}

func NewRefreshLimiter(limit int, interval time.Duration) *RefreshLimiter {
	return &RefreshLimiter{
		history:  make(map[string][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *RefreshLimiter) Allow(kind string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[kind]

	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[kind] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[kind] = fresh
	return true
}
