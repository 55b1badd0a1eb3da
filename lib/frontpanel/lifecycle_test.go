// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package frontpanel

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/frontpanel-project/frontpanel/lib/clock"
	"github.com/frontpanel-project/frontpanel/lib/testutil"
	"github.com/frontpanel-project/frontpanel/lib/usb"
)

func TestAttachEndpointFailureReleasesDevice(t *testing.T) {
	dev := usb.NewFakeDevice()
	dev.SetEndpoint(0)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := Attach(dev, Options{
		Clock:  clock.Fake(time.Unix(0, 0)),
		Logger: logger,
	})
	if !errors.Is(err, usb.ErrNoEndpoint) {
		t.Fatalf("Attach = %v, want wrapped ErrNoEndpoint", err)
	}
	if got := dev.Closes(); got != 1 {
		t.Fatalf("device closed %d times after failed attach, want 1", got)
	}
}

func TestDetachDrainsAndClosesOnce(t *testing.T) {
	panel, dev, _, _ := newTestPanel(t)

	for i := 0; i < 3; i++ {
		if _, err := panel.Write(make([]byte, PayloadSize)); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}

	panel.Detach()

	if got := panel.tracker.len(); got != 0 {
		t.Fatalf("tracker has %d entries after Detach, want 0", got)
	}
	if got := dev.InFlight(); got != 0 {
		t.Fatalf("%d transfers still in flight after Detach", got)
	}
	if got := dev.Closes(); got != 1 {
		t.Fatalf("device closed %d times, want exactly 1", got)
	}

	status := panel.Status()
	if !status.Disconnected {
		t.Fatal("Status does not report disconnected after Detach")
	}
}

func TestDetachCancellationsAreNotLatchedAsErrors(t *testing.T) {
	panel, _, _, _ := newTestPanel(t)

	if _, err := panel.Write(make([]byte, PayloadSize)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	panel.Detach()

	// The cancelled transfer's completion ran during Detach. The
	// rejection below must come from the disconnect flag, not from a
	// spuriously latched cancellation.
	_, err := panel.Write(make([]byte, PayloadSize))
	if !errors.Is(err, ErrDeviceGone) {
		t.Fatalf("Write after Detach = %v, want ErrDeviceGone", err)
	}
}

func TestSuspendReturnsWhenTransfersDrain(t *testing.T) {
	panel, dev, fakeClock, _ := newTestPanel(t)
	defer panel.Detach()

	for i := 0; i < 2; i++ {
		if _, err := panel.Write(make([]byte, PayloadSize)); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}

	done := make(chan struct{})
	go func() {
		panel.Suspend()
		close(done)
	}()

	// Sampler ticker + Suspend's quiesce timer.
	fakeClock.WaitForTimers(2)

	dev.CompleteAll(usb.StatusSuccess)
	testutil.Closed(t, done, 5*time.Second, "Suspend after transfers drained")

	if got := dev.InFlight(); got != 0 {
		t.Fatalf("%d transfers in flight after Suspend", got)
	}
}

func TestSuspendForceCancelsOnTimeout(t *testing.T) {
	panel, dev, fakeClock, _ := newTestPanel(t)
	defer panel.Detach()

	for i := 0; i < 2; i++ {
		if _, err := panel.Write(make([]byte, PayloadSize)); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}

	done := make(chan struct{})
	go func() {
		panel.Suspend()
		close(done)
	}()

	fakeClock.WaitForTimers(2)
	fakeClock.Advance(quiesceTimeout)

	testutil.Closed(t, done, 5*time.Second, "Suspend after quiesce timeout")
	if got := dev.InFlight(); got != 0 {
		t.Fatalf("%d transfers survived the forced cancel", got)
	}

	// Forced cancellation is benign: writes keep working.
	if _, err := panel.Write(make([]byte, PayloadSize)); err != nil {
		t.Fatalf("Write after forced quiesce: %v", err)
	}
	dev.CompleteOldest(usb.StatusSuccess)
}

func TestSuspendWithEmptyPipelineReturnsImmediately(t *testing.T) {
	panel, _, _, _ := newTestPanel(t)
	defer panel.Detach()

	done := make(chan struct{})
	go func() {
		panel.Suspend()
		close(done)
	}()
	testutil.Closed(t, done, 5*time.Second, "Suspend with nothing in flight")
}

func TestResetLatchesStallForNextWrite(t *testing.T) {
	panel, dev, _, _ := newTestPanel(t)
	defer panel.Detach()

	panel.PreReset()
	panel.PostReset()

	_, err := panel.Write(make([]byte, PayloadSize))
	if !errors.Is(err, ErrStall) {
		t.Fatalf("first Write after reset = %v, want ErrStall", err)
	}

	// The stall is consumed; normal operation resumes.
	if _, err := panel.Write(make([]byte, PayloadSize)); err != nil {
		t.Fatalf("second Write after reset: %v", err)
	}
	dev.CompleteOldest(usb.StatusSuccess)
}

func TestPreResetBlocksSubmissionUntilPostReset(t *testing.T) {
	panel, dev, _, _ := newTestPanel(t)
	defer panel.Detach()

	panel.PreReset()

	started := make(chan struct{})
	finished := make(chan error, 1)
	go func() {
		close(started)
		_, err := panel.Write(make([]byte, PayloadSize))
		finished <- err
	}()

	<-started
	testutil.NoReceive(t, finished, 50*time.Millisecond,
		"Write completed while the reset window held the I/O lock")

	panel.PostReset()

	// The blocked writer passed the latch check before the reset, so
	// it proceeds with its submission once the lock is free.
	if err := testutil.Receive(t, finished, 5*time.Second, "Write after PostReset"); err != nil {
		t.Fatalf("blocked Write = %v, want success", err)
	}
	dev.CompleteOldest(usb.StatusSuccess)

	// The next fresh write observes the latched stall.
	if _, err := panel.Write(make([]byte, PayloadSize)); !errors.Is(err, ErrStall) {
		t.Fatalf("Write after reset = %v, want ErrStall", err)
	}
}

func TestResumeIsANoop(t *testing.T) {
	panel, dev, _, _ := newTestPanel(t)
	defer panel.Detach()

	panel.Suspend()
	panel.Resume()

	if _, err := panel.Write(make([]byte, PayloadSize)); err != nil {
		t.Fatalf("Write after Resume: %v", err)
	}
	dev.CompleteOldest(usb.StatusSuccess)
}
