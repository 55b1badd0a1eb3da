// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package frontpanel

import (
	"fmt"
	"sync"

	"github.com/frontpanel-project/frontpanel/lib/usb"
)

// errorLatch records the most recent failed completion status.
// Completions write it last-write-wins; the next Write call consumes
// it. Its lock is private so completions never contend with the I/O
// or tracker locks.
type errorLatch struct {
	mu     sync.Mutex
	status usb.Status
	set    bool
}

// record latches a failed completion status, replacing any earlier one.
func (l *errorLatch) record(status usb.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = status
	l.set = true
}

// consume clears the latch and translates the latched status into a
// Write error: a stall passes through as ErrStall so callers can
// react to the reset condition, every other status is generalized to
// ErrTransfer. Returns nil when nothing is latched.
func (l *errorLatch) consume() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.set {
		return nil
	}
	status := l.status
	l.set = false
	if status == usb.StatusStall {
		return ErrStall
	}
	return fmt.Errorf("%w: completion status %v", ErrTransfer, status)
}
