package ratelimit

import (
	"sync"
	"time"
)

// LocalBucket is the in-process fallback used when no redis address is
// configured. Same refill math as the redis script, scoped to one
// process.
type LocalBucket struct {
	mu      sync.Mutex
	buckets map[string]*localEntry
}

type localEntry struct {
	tokens float64
	ts     time.Time
}

func NewLocalBucket() *LocalBucket {
	return &LocalBucket{buckets: map[string]*localEntry{}}
}

func (l *LocalBucket) Allow(key string, rate float64, burst int) *Result {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.buckets[key]
	if !ok {
		entry = &localEntry{tokens: float64(burst), ts: now}
		l.buckets[key] = entry
	} else {
		delta := now.Sub(entry.ts).Seconds()
		if delta < 0 {
			delta = 0
		}
		entry.tokens = minFloat(float64(burst), entry.tokens+delta*rate)
		entry.ts = now
	}

	if len(l.buckets) > 10000 {
		l.prune(now, rate, burst)
	}

	if entry.tokens >= 1 {
		entry.tokens--
		return &Result{Allowed: true, Remaining: int(entry.tokens)}
	}

	retryAfter := time.Duration((1.0 - entry.tokens) / rate * float64(time.Second))
	return &Result{Allowed: false, RetryAfter: retryAfter}
}

// prune drops buckets that have fully refilled; they behave identically
// to absent keys.
func (l *LocalBucket) prune(now time.Time, rate float64, burst int) {
	horizon := time.Duration(float64(burst)/rate*2) * time.Second
	for key, entry := range l.buckets {
		if now.Sub(entry.ts) > horizon {
			delete(l.buckets, key)
		}
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
