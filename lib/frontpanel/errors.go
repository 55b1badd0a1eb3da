// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package frontpanel

import "errors"

// Write failure taxonomy. Submission-time failures are returned
// directly from Write; completion-time failures are latched and
// surfaced on the next Write call.
var (
	// ErrBusy: all write slots are in flight. Transient; retry after
	// a completion frees a slot.
	ErrBusy = errors.New("panel busy: all write slots in flight")

	// ErrDeviceGone: the device has been detached. Permanent.
	ErrDeviceGone = errors.New("panel device is gone")

	// ErrTransfer: a prior asynchronous write failed. Generic I/O
	// fault; the failing status has already been logged.
	ErrTransfer = errors.New("panel transfer failed")

	// ErrStall: the endpoint stalled or the stream was reset. Kept
	// distinct from ErrTransfer so callers can trigger protocol
	// recovery.
	ErrStall = errors.New("panel endpoint stalled")
)
