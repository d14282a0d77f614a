package ratelimit

import (
	"context"
	"time"
)

const (
	// DefaultMaxAttempts is the fallback failure budget per identity key.
	DefaultMaxAttempts = 5
	// DefaultWindow is the fallback sliding-window duration.
	DefaultWindow = 15 * time.Minute
)

// Limiter tracks failed login attempts per identity key inside a sliding
// window. The window starts at the first counted failure; once it elapses the
// key's record is treated as absent. Implementations must be linearizable per
// key: concurrent RecordAttempt calls never lose an increment.
type Limiter interface {
	// IsLimited reports whether the key has exhausted its attempt budget
	// within the current window. Stale records count as absent.
	IsLimited(ctx context.Context, key string) (bool, error)

	// RecordAttempt increments the key's counter, starting a fresh window
	// when no live record exists.
	RecordAttempt(ctx context.Context, key string) error

	// Reset forgets the key entirely, typically after a successful login.
	Reset(ctx context.Context, key string) error
}

// Config carries the tunables shared by all limiter implementations.
type Config struct {
	MaxAttempts int
	Window      time.Duration
	Clock       func() time.Time
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}
