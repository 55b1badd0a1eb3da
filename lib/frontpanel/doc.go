// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

// Package frontpanel drives the Apple Xserve USB front panel: a
// fixed-period sampler converts per-CPU time deltas into a 32-byte
// meter buffer and pushes it to the device through a bounded
// asynchronous bulk-write pipeline.
//
// Attach builds the reference-counted device handle and starts the
// sampler; Detach, Suspend/Resume, and PreReset/PostReset implement
// the lifecycle transitions the hosting environment triggers. Write
// is safe for concurrent use and never blocks: saturation, detach,
// and latched completion failures are reported as ErrBusy,
// ErrDeviceGone, and ErrTransfer/ErrStall respectively.
package frontpanel
