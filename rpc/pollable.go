package rpc

import (
	"context"
	"time"

	"go.uber.org/atomic"
)

// pollInterval is how often a monotonicFlag.Wait rechecks its condition.
// Every signal this module waits on during signalling (remote-description-set,
// ice-done, data-channel-open) is a plain atomic flag polled on an interval,
// not an event object.
const pollInterval = 20 * time.Millisecond

// monotonicFlag is a boolean that only ever transitions false->true, with a
// bounded-wait primitive for code that needs to block until it flips.
type monotonicFlag struct {
	set atomic.Bool
}

// Set flips the flag to true. Idempotent.
func (f *monotonicFlag) Set() {
	f.set.Store(true)
}

// IsSet reports the flag's current value.
func (f *monotonicFlag) IsSet() bool {
	return f.set.Load()
}

// Wait blocks, polling every pollInterval, until the flag is set or ctx is
// done, whichever comes first.
func (f *monotonicFlag) Wait(ctx context.Context) error {
	if f.IsSet() {
		return nil
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if f.IsSet() {
				return nil
			}
		}
	}
}

// waitWithTimeout is a convenience wrapper for the common case of bounding a
// Wait call with a fixed duration relative to now.
func waitWithTimeout(ctx context.Context, f *monotonicFlag, d time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return f.Wait(ctx)
}
