package cache

import (
	"context"
	"time"
)

// Counter is a shared fixed-window counter used for rate limiting.
type Counter interface {
	// IncrementWithTTL increments key and returns the new count and the time left
	// in the window. The window starts with the first increment.
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
