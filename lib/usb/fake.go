// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package usb

import (
	"fmt"
	"sync"
)

// FakeDevice is an in-memory Device for tests. Submitted transfers
// stay in flight until the test completes them with CompleteOldest or
// cancels them; completions run synchronously in the calling
// goroutine, which keeps test ordering deterministic.
//
// FakeDevice is safe for concurrent use.
type FakeDevice struct {
	mu        sync.Mutex
	endpoint  uint8
	submitErr error
	inflight  []*Transfer
	submitted int
	closes    int
	resets    int
}

// NewFakeDevice returns a fake device exposing bulk OUT endpoint 0x02.
func NewFakeDevice() *FakeDevice {
	return &FakeDevice{endpoint: 0x02}
}

// BulkOutEndpoint implements Device.
func (d *FakeDevice) BulkOutEndpoint() (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.endpoint == 0 {
		return 0, ErrNoEndpoint
	}
	return d.endpoint, nil
}

// SetEndpoint overrides the reported endpoint. Zero makes
// BulkOutEndpoint fail with ErrNoEndpoint.
func (d *FakeDevice) SetEndpoint(address uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.endpoint = address
}

// FailSubmits makes every subsequent Submit return err synchronously.
// Pass nil to restore normal behavior.
func (d *FakeDevice) FailSubmits(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.submitErr = err
}

// Submit implements Device. The transfer stays in flight until the
// test resolves it.
func (d *FakeDevice) Submit(t *Transfer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitErr != nil {
		return d.submitErr
	}
	d.submitted++
	d.inflight = append(d.inflight, t)
	return nil
}

// Cancel implements Device: the transfer's completion is delivered
// synchronously with StatusCancelled.
func (d *FakeDevice) Cancel(t *Transfer) {
	d.complete(t, StatusCancelled, 0)
}

// Reset implements Device.
func (d *FakeDevice) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resets++
	return nil
}

// Close implements Device. In-flight transfers receive StatusShutdown.
func (d *FakeDevice) Close() error {
	d.mu.Lock()
	pending := d.inflight
	d.inflight = nil
	d.closes++
	d.mu.Unlock()

	for _, t := range pending {
		t.Complete(StatusShutdown, 0)
	}
	return nil
}

// CompleteOldest resolves the oldest in-flight transfer with the
// given status. On StatusSuccess the full payload length is reported
// as written. Panics if nothing is in flight (a test logic error).
func (d *FakeDevice) CompleteOldest(status Status) {
	d.mu.Lock()
	if len(d.inflight) == 0 {
		d.mu.Unlock()
		panic("usb: CompleteOldest with no transfer in flight")
	}
	t := d.inflight[0]
	d.inflight = d.inflight[1:]
	d.mu.Unlock()

	written := 0
	if status == StatusSuccess {
		written = len(t.Data)
	}
	t.Complete(status, written)
}

// CompleteAll resolves every in-flight transfer with the given status.
func (d *FakeDevice) CompleteAll(status Status) {
	d.mu.Lock()
	pending := d.inflight
	d.inflight = nil
	d.mu.Unlock()

	for _, t := range pending {
		written := 0
		if status == StatusSuccess {
			written = len(t.Data)
		}
		t.Complete(status, written)
	}
}

// complete removes t from the in-flight set and invokes its callback.
// Unknown transfers are ignored, matching Device.Cancel semantics.
func (d *FakeDevice) complete(t *Transfer, status Status, written int) {
	d.mu.Lock()
	found := false
	for i, pending := range d.inflight {
		if pending == t {
			d.inflight = append(d.inflight[:i], d.inflight[i+1:]...)
			found = true
			break
		}
	}
	d.mu.Unlock()

	if found {
		t.Complete(status, written)
	}
}

// InFlight returns the number of unresolved transfers.
func (d *FakeDevice) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}

// Submitted returns the total number of accepted Submit calls.
func (d *FakeDevice) Submitted() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitted
}

// LastData returns a copy of the most recently submitted payload, or
// an error when nothing is in flight.
func (d *FakeDevice) LastData() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.inflight) == 0 {
		return nil, fmt.Errorf("no transfer in flight")
	}
	data := d.inflight[len(d.inflight)-1].Data
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Closes returns how many times Close has been called.
func (d *FakeDevice) Closes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}

// Resets returns how many times Reset has been called.
func (d *FakeDevice) Resets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resets
}
