// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the time operations the driver schedules against.
// Production code injects Real(); tests inject Fake() and advance
// time explicitly.
//
// The driver uses exactly four operations: Now for timestamps, After
// for bounded quiesce waits, NewTicker for the sampler period, and
// Sleep for the daemon's reattach backoff. Anything that needs one of
// these takes a Clock parameter or carries a Clock field instead of
// calling the time package directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once
	// duration d has elapsed. If d <= 0 the channel receives
	// immediately.
	After(d time.Duration) <-chan time.Time

	// NewTicker returns a Ticker delivering ticks on its C channel
	// every d. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker

	// Sleep pauses the calling goroutine for at least d.
	Sleep(d time.Duration)
}

// Ticker wraps a periodic timer. Read ticks from C; call Stop to
// release it. C has capacity 1, matching time.Ticker: ticks that
// arrive while the consumer is busy are dropped, not queued.
type Ticker struct {
	// C delivers ticks.
	C <-chan time.Time

	stop func()
}

// Stop turns off the ticker. No ticks are delivered after Stop
// returns. Stop does not close C.
func (t *Ticker) Stop() { t.stop() }
