package internal

import (
	"context"
	"time"
)

// SleepWithContext blocks for d or until ctx is cancelled, returning
// the context error in the latter case. Used for the 2FA backoff and
// the media processing poll so neither can outlive its caller.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
