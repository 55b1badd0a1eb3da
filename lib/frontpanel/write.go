// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package frontpanel

import (
	"fmt"

	"github.com/frontpanel-project/frontpanel/lib/usb"
)

// Write pushes up to PayloadSize bytes of data to the panel as one
// asynchronous bulk transfer and returns the number of bytes accepted
// for transfer (not yet confirmed delivered).
//
// Write never blocks on contention: when all write slots are in
// flight it fails immediately with ErrBusy. A failure recorded by an
// earlier completion is surfaced here — ErrStall verbatim, anything
// else as ErrTransfer — without submitting new work. After Detach,
// Write fails with ErrDeviceGone.
func (p *Panel) Write(data []byte) (int, error) {
	size := min(len(data), PayloadSize)

	// Bound the number of transfers in flight. Fail fast: this is a
	// backpressure signal, not a queue.
	if !p.limiter.TryAcquire(1) {
		return 0, ErrBusy
	}

	// A failed completion is reported exactly once, on the write
	// attempt that follows it.
	if err := p.latch.consume(); err != nil {
		p.limiter.Release(1)
		return 0, err
	}

	// The transfer owns its own copy of the payload; the caller may
	// reuse data as soon as Write returns.
	payload := make([]byte, size)
	copy(payload, data[:size])

	t := &usb.Transfer{Endpoint: p.endpoint, Data: payload}
	t.Complete = func(status usb.Status, _ int) {
		p.writeComplete(t, status)
	}

	// The I/O lock makes the disconnect flag and submission atomic:
	// once Detach has set the flag, no transfer reaches the device.
	p.ioMu.Lock()
	if p.disconnected {
		p.ioMu.Unlock()
		p.limiter.Release(1)
		return 0, ErrDeviceGone
	}
	p.tracker.add(t)
	p.hold() // the completion callback's reference
	err := p.dev.Submit(t)
	p.ioMu.Unlock()

	if err != nil {
		// Synchronous submission failure: the completion callback
		// will never run, so unwind everything it would have done.
		p.tracker.remove(t)
		p.limiter.Release(1)
		p.release()
		return 0, fmt.Errorf("submitting transfer: %w", err)
	}

	return size, nil
}

// writeComplete is the per-transfer completion callback, invoked by
// the bus backend concurrently with everything else. Benign
// cancellation and shutdown statuses are not errors; anything else
// non-zero is latched for the next Write to report. The slot and the
// handle reference are released regardless of status.
func (p *Panel) writeComplete(t *usb.Transfer, status usb.Status) {
	defer p.release()

	p.tracker.remove(t)

	if status != usb.StatusSuccess && !status.Benign() {
		p.logger.Error("bulk write completed with error", "status", status.String())
		p.latch.record(status)
	}

	p.limiter.Release(1)
}
