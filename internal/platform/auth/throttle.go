package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// Throttle limits login attempts per username with a token bucket. Idle
// buckets are dropped on access, there is no background sweeper.
type Throttle struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	r       rate.Limit
	burst   int
	now     func() time.Time
}

// NewThrottle allows perMinute attempts per username on average, with bursts
// of up to burst attempts.
func NewThrottle(perMinute, burst int) *Throttle {
	return &Throttle{
		buckets: make(map[string]*bucket),
		r:       rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow consumes one attempt for key and reports whether it was available.
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for k, b := range t.buckets {
		if now.Sub(b.seen) > 10*time.Minute {
			delete(t.buckets, k)
		}
	}

	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(t.r, t.burst)}
		t.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}
