// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction so the
// sampler period, quiesce timeouts, and reattach backoff can be
// driven deterministically in tests.
//
// Production code takes a Clock parameter and uses Real(). Tests use
// Fake(), which advances only on Advance:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	panel, _ := frontpanel.Attach(dev, frontpanel.Options{Clock: c, ...})
//	c.WaitForTimers(1)              // sampler ticker registered
//	c.Advance(250 * time.Millisecond) // fire one sampling cycle
//
// WaitForTimers closes the race between a goroutine registering its
// ticker and the test advancing the clock.
package clock
