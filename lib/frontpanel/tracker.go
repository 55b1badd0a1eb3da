// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package frontpanel

import (
	"sync"
	"time"

	"github.com/frontpanel-project/frontpanel/lib/clock"
	"github.com/frontpanel-project/frontpanel/lib/usb"
)

// tracker is the set of submitted-but-not-completed transfers, kept
// so teardown paths can cancel and drain them in bulk. Membership is
// exact: add happens before submission under the I/O lock, remove
// happens in the completion callback (and on synchronous submission
// failure).
type tracker struct {
	mu       sync.Mutex
	inflight map[*usb.Transfer]struct{}

	// empty is closed whenever the in-flight set is empty, and
	// replaced when it becomes non-empty again. Waiters select on a
	// snapshot of it.
	empty chan struct{}
}

func newTracker() *tracker {
	empty := make(chan struct{})
	close(empty)
	return &tracker{
		inflight: make(map[*usb.Transfer]struct{}),
		empty:    empty,
	}
}

func (tr *tracker) add(t *usb.Transfer) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.inflight) == 0 {
		tr.empty = make(chan struct{})
	}
	tr.inflight[t] = struct{}{}
}

// remove is idempotent: a transfer cancelled between snapshot and
// completion delivery is removed once.
func (tr *tracker) remove(t *usb.Transfer) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if _, ok := tr.inflight[t]; !ok {
		return
	}
	delete(tr.inflight, t)
	if len(tr.inflight) == 0 {
		close(tr.empty)
	}
}

func (tr *tracker) len() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.inflight)
}

// snapshot returns the current in-flight transfers for bulk
// cancellation.
func (tr *tracker) snapshot() []*usb.Transfer {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	transfers := make([]*usb.Transfer, 0, len(tr.inflight))
	for t := range tr.inflight {
		transfers = append(transfers, t)
	}
	return transfers
}

// waitEmpty blocks until the set drains or the timeout elapses.
// Returns true when the set is empty.
func (tr *tracker) waitEmpty(c clock.Clock, timeout time.Duration) bool {
	tr.mu.Lock()
	empty := tr.empty
	tr.mu.Unlock()

	select {
	case <-empty:
		return true
	case <-c.After(timeout):
		return false
	}
}

// wait blocks until the set drains. Callers must guarantee every
// member will complete (cancellation forces completion delivery).
func (tr *tracker) wait() {
	tr.mu.Lock()
	empty := tr.empty
	tr.mu.Unlock()
	<-empty
}
