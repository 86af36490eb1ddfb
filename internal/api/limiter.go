package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"rentease/internal/config"

	"golang.org/x/time/rate"
)

const (
	clientKeyUnknown = "unknown"
	defaultBurst     = 5
	limiterIdleTTL   = 10 * time.Minute
)

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client address and forgets
// clients idle for longer than limiterIdleTTL.
type rateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*clientBucket
	cfg       config.RateLimitConfig
	now       func() time.Time
	lastSweep time.Time
}

func newRateLimiter(cfg config.RateLimitConfig) *rateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	return &rateLimiter{
		buckets: make(map[string]*clientBucket),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (l *rateLimiter) enabled() bool { return l != nil && l.cfg.RPS > 0 }

func (l *rateLimiter) allow(key string) bool {
	if !l.enabled() {
		return true
	}

	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) > limiterIdleTTL {
		l.sweep(now)
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rate.Limit(l.cfg.RPS), l.cfg.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	return b.limiter.AllowN(now, 1)
}

// sweep drops idle buckets. Callers hold l.mu.
func (l *rateLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > limiterIdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

func (l *rateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}
