package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is the process-local limiter. State lives in a single mutex
// guarded map, so a restart clears all limits; multi-instance deployments
// should use the Redis limiter instead. Stale records are purged lazily on
// every call rather than by a background goroutine.
type MemoryLimiter struct {
	mu   sync.Mutex
	data map[string]*attemptRecord
	cfg  Config
}

type attemptRecord struct {
	attempts     int
	firstAttempt time.Time
}

func (r *attemptRecord) stale(now time.Time, window time.Duration) bool {
	return now.Sub(r.firstAttempt) >= window
}

// NewMemoryLimiter builds an in-memory limiter with the supplied tunables.
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		data: make(map[string]*attemptRecord),
		cfg:  cfg.withDefaults(),
	}
}

// IsLimited implements Limiter. Looking up a stale record removes it.
func (l *MemoryLimiter) IsLimited(_ context.Context, key string) (bool, error) {
	now := l.cfg.Clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.purgeStale(now)

	record, ok := l.data[key]
	if !ok {
		return false, nil
	}
	if record.stale(now, l.cfg.Window) {
		delete(l.data, key)
		return false, nil
	}

	return record.attempts >= l.cfg.MaxAttempts, nil
}

// RecordAttempt implements Limiter.
func (l *MemoryLimiter) RecordAttempt(_ context.Context, key string) error {
	now := l.cfg.Clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.purgeStale(now)

	record, ok := l.data[key]
	if !ok || record.stale(now, l.cfg.Window) {
		l.data[key] = &attemptRecord{attempts: 1, firstAttempt: now}
		return nil
	}

	record.attempts++
	return nil
}

// Reset implements Limiter.
func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.data, key)
	return nil
}

// purgeStale drops every expired record. Callers hold the mutex. The table
// only ever contains keys that failed a login inside the window, so a full
// sweep per call stays cheap.
func (l *MemoryLimiter) purgeStale(now time.Time) {
	for key, record := range l.data {
		if record.stale(now, l.cfg.Window) {
			delete(l.data, key)
		}
	}
}
