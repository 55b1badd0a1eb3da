// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package usbfs

import (
	"golang.org/x/sys/unix"

	"github.com/frontpanel-project/frontpanel/lib/usb"
)

// statusFromURB translates a completed URB's status field into a
// usb.Status. The kernel reports URB status as a negated errno:
// -ENOENT and -ECONNRESET are the two faces of cancellation
// (synchronous discard versus async unlink), -ESHUTDOWN is delivered
// when the endpoint or host controller is being torn down, and
// -EPIPE is an endpoint stall.
func statusFromURB(status int32) usb.Status {
	if status == 0 {
		return usb.StatusSuccess
	}
	switch unix.Errno(-status) {
	case unix.ENOENT, unix.ECONNRESET:
		return usb.StatusCancelled
	case unix.ESHUTDOWN:
		return usb.StatusShutdown
	case unix.EPIPE:
		return usb.StatusStall
	case unix.ENODEV:
		return usb.StatusNoDevice
	default:
		return usb.StatusError
	}
}

// submitError translates a failed USBDEVFS_SUBMITURB errno into the
// package error vocabulary where one exists, passing the raw errno
// through otherwise.
func submitError(errno unix.Errno) error {
	switch errno {
	case unix.ENOMEM:
		return usb.ErrNoMemory
	default:
		return errno
	}
}
