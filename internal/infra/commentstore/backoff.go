package commentstore

import (
	"context"
	"time"
)

const (
	connectAttempts  = 4
	connectBaseDelay = 250 * time.Millisecond
	connectMaxDelay  = 2 * time.Second
)

type backoff struct {
	base    time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff(base, maxDelay time.Duration) *backoff {
	if base <= 0 {
		base = time.Second
	}
	if maxDelay < base {
		maxDelay = base
	}
	return &backoff{base: base, max: maxDelay, current: base}
}

// Sleep waits for the current delay, then doubles it up to the maximum.
// It returns false when ctx is done first.
func (b *backoff) Sleep(ctx context.Context) bool {
	timer := time.NewTimer(b.current)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}

	b.current = min(b.current*2, b.max)
	return true
}

// retry calls fn until it succeeds, attempts run out or ctx is done, and
// returns the last error.
func retry(ctx context.Context, attempts int, b *backoff, fn func(context.Context) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= attempts || !b.Sleep(ctx) {
			return err
		}
	}
}
