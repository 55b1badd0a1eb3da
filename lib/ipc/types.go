// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import "github.com/frontpanel-project/frontpanel/lib/codec"

// Control socket action names.
const (
	// ActionStatus returns a StatusInfo describing the attached panel.
	ActionStatus = "status"

	// ActionSuspend quiesces outstanding transfers, as on a system
	// suspend. The sampler keeps running; its writes resume flowing
	// immediately.
	ActionSuspend = "suspend"

	// ActionResume is the counterpart of suspend. The panel needs no
	// restoration work, so this is an acknowledged no-op.
	ActionResume = "resume"

	// ActionReset performs a bus-level reset of the panel: quiesce,
	// usbdevfs reset, then a latched stall so the next writer
	// observes the reset.
	ActionReset = "reset"

	// ActionDisplay writes a raw payload to the panel's LED
	// controller, bypassing the load sampler for one frame.
	ActionDisplay = "display"
)

// Request is a CBOR-encoded request from frontpanelctl (or any other
// local client) to the daemon's control socket.
type Request struct {
	// Action is the request type: one of the Action constants.
	Action string `cbor:"action"`

	// Payload is the raw panel payload for ActionDisplay. Longer
	// payloads are truncated to the panel's frame size; shorter ones
	// are sent as-is.
	Payload []byte `cbor:"payload,omitempty"`
}

// Response is the envelope for all control socket responses.
type Response struct {
	OK    bool             `cbor:"ok"`
	Error string           `cbor:"error,omitempty"`
	Data  codec.RawMessage `cbor:"data,omitempty"`
}

// DisplayResult is the data payload of an ActionDisplay response.
type DisplayResult struct {
	// Written is the number of payload bytes handed to the panel.
	Written int `cbor:"written"`
}

// StatusInfo is the data payload of an ActionStatus response.
type StatusInfo struct {
	// Attached reports whether a panel is currently attached. The
	// remaining fields are meaningful only when true.
	Attached bool `cbor:"attached"`

	// DevicePath is the usbdevfs node of the attached panel.
	DevicePath string `cbor:"device_path,omitempty"`

	// Disconnected reports that the attached panel has been torn
	// down and is awaiting reattach.
	Disconnected bool `cbor:"disconnected,omitempty"`

	// InFlight is the number of transfers currently on the bus.
	InFlight int `cbor:"in_flight"`

	// Buffer is the most recent payload published by the sampler.
	Buffer []byte `cbor:"buffer,omitempty"`

	// Version identifies the daemon build.
	Version string `cbor:"version,omitempty"`

	// UptimeSeconds counts from daemon start, not from attach.
	UptimeSeconds int64 `cbor:"uptime_seconds"`
}
