// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

// Package usb defines the bus subsystem interface the front-panel
// driver submits transfers to: an open device with endpoint
// discovery, asynchronous bulk submission with per-transfer
// completion callbacks, cancellation, and reset.
//
// The production backend is usbfs (Linux usbdevfs); tests use
// FakeDevice. The driver core depends only on this package, never on
// a concrete backend.
package usb
