package ratelimit

import (
	"context"
	"time"
)

// Limiter is a fixed-window counter keyed by an identifier string such as
// "login:<ip>". Allow must count atomically so concurrent bursts are not
// undercounted. Implementations fail open: a backend error allows the request.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	CleanupExpired(ctx context.Context) (int64, error)
}
