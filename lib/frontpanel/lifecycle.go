// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package frontpanel

import "github.com/frontpanel-project/frontpanel/lib/usb"

// Detach tears the panel down: the sampler is stopped synchronously,
// the disconnect flag is raised under the I/O lock so no further
// submission can start, every in-flight transfer is cancelled and
// drained, and the attach holder's reference is released. Call
// exactly once; Write fails with ErrDeviceGone from the moment the
// flag is set.
//
// Completions that were already scheduled keep the handle alive via
// their own references; the device closes when the last of them
// finishes.
func (p *Panel) Detach() {
	p.stopSampler()

	p.ioMu.Lock()
	p.disconnected = true
	p.ioMu.Unlock()

	p.killTransfers()

	p.release()
}

// Suspend quiesces the write pipeline for a power transition: wait up
// to quiesceTimeout for in-flight transfers to drain, then cancel
// whatever remains. The sampler keeps its schedule; its next write
// simply observes whatever state the device is in after resume.
func (p *Panel) Suspend() {
	p.drawDown()
}

// Resume completes a power transition. No action required: the
// device retains its output state across suspend.
func (p *Panel) Resume() {}

// PreReset prepares for a bus reset: the I/O lock is taken and HELD
// so no submission can overlap the reset window, then the pipeline is
// quiesced. Must be paired with PostReset, which releases the lock.
func (p *Panel) PreReset() {
	p.ioMu.Lock()
	p.drawDown()
}

// PostReset finishes a bus reset: a stall is latched so the next
// Write reports ErrStall to its caller, and the I/O lock taken by
// PreReset is released.
func (p *Panel) PostReset() {
	// No transfer is in flight between PreReset and here, so the
	// latch cannot be racing a completion.
	p.latch.record(usb.StatusStall)
	p.ioMu.Unlock()
}

// drawDown waits out the in-flight transfers, cancelling them if the
// bounded wait expires.
func (p *Panel) drawDown() {
	if p.tracker.waitEmpty(p.clock, quiesceTimeout) {
		return
	}
	p.killTransfers()
}

// killTransfers cancels every tracked transfer and waits for their
// completions to drain the tracker. Cancellation forces completion
// delivery, so the wait is bounded by the bus backend.
func (p *Panel) killTransfers() {
	for _, t := range p.tracker.snapshot() {
		p.dev.Cancel(t)
	}
	p.tracker.wait()
}
