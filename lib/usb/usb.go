// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package usb

import "errors"

// Status is the completion status of an asynchronous transfer,
// delivered to the transfer's Complete callback by the bus backend.
type Status int

const (
	// StatusSuccess: the transfer completed and all bytes were accepted.
	StatusSuccess Status = iota

	// StatusCancelled: the transfer was discarded by an explicit
	// cancellation. Benign; never a device fault.
	StatusCancelled

	// StatusShutdown: the transfer was flushed because the device or
	// bus is shutting down. Benign.
	StatusShutdown

	// StatusStall: the endpoint stalled. The device wants a protocol
	// reset before it accepts further transfers.
	StatusStall

	// StatusNoDevice: the device disappeared mid-transfer.
	StatusNoDevice

	// StatusError: any other transfer failure.
	StatusError
)

// String returns a short name for the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusCancelled:
		return "cancelled"
	case StatusShutdown:
		return "shutdown"
	case StatusStall:
		return "stall"
	case StatusNoDevice:
		return "no-device"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Benign reports whether the status is an expected consequence of
// cancellation or teardown rather than a device fault. Benign
// completions must not be recorded as errors by callers.
func (s Status) Benign() bool {
	return s == StatusCancelled || s == StatusShutdown
}

// ErrNoMemory indicates the bus layer could not acquire resources
// for the transfer.
var ErrNoMemory = errors.New("transfer resources exhausted")

// ErrNoEndpoint indicates the interface exposes no bulk OUT endpoint.
var ErrNoEndpoint = errors.New("no bulk OUT endpoint")

// Transfer is a single asynchronous bulk OUT submission. The caller
// fills Endpoint, Data, and Complete, then hands the transfer to
// Device.Submit. The backend owns the transfer until its completion
// callback has been invoked.
type Transfer struct {
	// Endpoint is the bulk OUT endpoint address.
	Endpoint uint8

	// Data is the payload. The backend reads it until completion;
	// the submitter must not reuse the slice before then.
	Data []byte

	// Complete is invoked exactly once from the backend's completion
	// context, concurrently with everything else the caller does.
	// written is the number of bytes the device accepted.
	Complete func(status Status, written int)
}

// Device is an open USB device. Implementations deliver completion
// callbacks from their own goroutine; callers must treat completion
// as concurrent with submission, cancellation, and Close.
type Device interface {
	// BulkOutEndpoint returns the address of the claimed interface's
	// first bulk OUT endpoint, or ErrNoEndpoint.
	BulkOutEndpoint() (uint8, error)

	// Submit queues t for asynchronous completion. On a nil return
	// the Complete callback will be invoked exactly once; on error
	// it is never invoked.
	Submit(t *Transfer) error

	// Cancel requests cancellation of an in-flight transfer. The
	// transfer's completion is then delivered with StatusCancelled.
	// Unknown or already-completed transfers are ignored.
	Cancel(t *Transfer)

	// Reset performs a bus-level reset of the device.
	Reset() error

	// Close releases the interface claim and the device. In-flight
	// transfers receive StatusShutdown completions first.
	Close() error
}
