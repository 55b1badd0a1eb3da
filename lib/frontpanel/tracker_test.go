// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package frontpanel

import (
	"testing"
	"time"

	"github.com/frontpanel-project/frontpanel/lib/clock"
	"github.com/frontpanel-project/frontpanel/lib/testutil"
	"github.com/frontpanel-project/frontpanel/lib/usb"
)

func TestTrackerMembership(t *testing.T) {
	tr := newTracker()
	first := &usb.Transfer{}
	second := &usb.Transfer{}

	tr.add(first)
	tr.add(second)
	if got := tr.len(); got != 2 {
		t.Fatalf("len = %d, want 2", got)
	}

	tr.remove(first)
	if got := tr.len(); got != 1 {
		t.Fatalf("len after remove = %d, want 1", got)
	}

	// remove is idempotent for already-departed transfers.
	tr.remove(first)
	if got := tr.len(); got != 1 {
		t.Fatalf("len after duplicate remove = %d, want 1", got)
	}

	snapshot := tr.snapshot()
	if len(snapshot) != 1 || snapshot[0] != second {
		t.Fatalf("snapshot = %v, want only the second transfer", snapshot)
	}
}

func TestTrackerWaitEmptyImmediateWhenEmpty(t *testing.T) {
	tr := newTracker()
	fakeClock := clock.Fake(time.Unix(0, 0))

	if !tr.waitEmpty(fakeClock, time.Second) {
		t.Fatal("waitEmpty on an empty tracker reported timeout")
	}
}

func TestTrackerWaitEmptyTimesOut(t *testing.T) {
	tr := newTracker()
	tr.add(&usb.Transfer{})
	fakeClock := clock.Fake(time.Unix(0, 0))

	result := make(chan bool, 1)
	go func() {
		result <- tr.waitEmpty(fakeClock, time.Second)
	}()

	fakeClock.WaitForTimers(1)
	fakeClock.Advance(time.Second)

	if drained := testutil.Receive(t, result, 5*time.Second, "waitEmpty result"); drained {
		t.Fatal("waitEmpty reported drained while a transfer was in flight")
	}
}

func TestTrackerWaitEmptyWakesOnDrain(t *testing.T) {
	tr := newTracker()
	transfer := &usb.Transfer{}
	tr.add(transfer)
	fakeClock := clock.Fake(time.Unix(0, 0))

	result := make(chan bool, 1)
	go func() {
		result <- tr.waitEmpty(fakeClock, time.Second)
	}()

	fakeClock.WaitForTimers(1)
	tr.remove(transfer)

	if drained := testutil.Receive(t, result, 5*time.Second, "waitEmpty result"); !drained {
		t.Fatal("waitEmpty reported timeout after the tracker drained")
	}
}
